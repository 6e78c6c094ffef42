package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Logger writes operator-facing log lines to stderr. It is deliberately
// small: kstack output is read by humans running CLI commands or tailing
// pod logs, not by log pipelines.
type Logger struct {
	debug   bool
	noColor bool
	out     io.Writer
}

type level struct {
	glyph string
	color string
}

var (
	levelInfo  = level{glyph: "✓", color: "\033[32m"}
	levelWarn  = level{glyph: "⚠", color: "\033[33m"}
	levelError = level{glyph: "✗", color: "\033[31m"}
	levelDebug = level{glyph: "[DEBUG]", color: "\033[36m"}
)

// New creates a logger. With debug false, Debug calls are dropped.
func New(debug, noColor bool) *Logger {
	return &Logger{debug: debug, noColor: noColor, out: os.Stderr}
}

func (l *Logger) log(lv level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.noColor {
		fmt.Fprintf(l.out, "%s %s\n", lv.glyph, msg)
		return
	}
	fmt.Fprintf(l.out, "%s%s\033[0m %s\n", lv.color, lv.glyph, msg)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(levelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(levelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(levelError, format, args...)
}

// Debug logs a debug message when debug mode is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.log(levelDebug, format, args...)
}

// Secret is a value that must never appear in log output. Both plain and
// Go-syntax formatting render it redacted.
type Secret string

func (s Secret) String() string {
	return "[REDACTED]"
}

func (s Secret) GoString() string {
	return "[REDACTED]"
}

// Redact replaces occurrences of the given secret values in s. Values of
// three characters or fewer are skipped to avoid shredding ordinary text.
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if len(secret) > 3 {
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}
