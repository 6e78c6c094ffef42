// Package execenv spawns child processes with resolved secrets injected
// into their environment. Values stay in secure buffers until the spawn
// itself, and the child's exit code surfaces as a CommandError instead of
// being swallowed.
package execenv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	kerrors "github.com/systmms/kstack/internal/errors"
	"github.com/systmms/kstack/internal/logging"
	"github.com/systmms/kstack/internal/secure"
)

// Executor handles running commands with ephemeral environment variables.
type Executor struct {
	logger *logging.Logger
}

// New creates a new executor. A nil logger means quiet.
func New(logger *logging.Logger) *Executor {
	if logger == nil {
		logger = logging.New(false, true)
	}
	return &Executor{logger: logger}
}

// Options configures command execution.
type Options struct {
	Command    []string                        // Command and arguments to run
	Secrets    map[string]*secure.SecureBuffer // Variable name → sealed value
	Override   bool                            // Sealed values replace pre-existing variables
	PrintVars  bool                            // Print variable names with masked values
	Output     io.Writer                       // Destination for PrintVars (default os.Stdout)
	WorkingDir string                          // Working directory for the command
	Timeout    time.Duration                   // Zero means no timeout
}

// Exec runs a command with the sealed secrets merged into the current
// environment. The child is wired to this process's stdio; a non-zero
// exit comes back as a CommandError carrying the exit code so the caller
// decides how the process ends.
func (e *Executor) Exec(ctx context.Context, options Options) error {
	if len(options.Command) == 0 {
		return kerrors.UserError{
			Message:    "No command specified",
			Suggestion: "Provide a command after -- (e.g., kstack exec --layer 0 -- npm start)",
		}
	}

	cmdName := options.Command[0]
	if _, err := exec.LookPath(cmdName); err != nil {
		return kerrors.WrapCommandNotFound(cmdName, err)
	}

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	values, err := revealAll(options.Secrets)
	if err != nil {
		return kerrors.UserError{
			Message:    "Failed to prepare the child environment",
			Details:    err.Error(),
			Suggestion: "A secret buffer was destroyed before use; re-run the resolution",
			Err:        err,
		}
	}

	if options.PrintVars {
		out := options.Output
		if out == nil {
			out = os.Stdout
		}
		printEnvironment(out, values)
	}

	cmd := exec.CommandContext(ctx, cmdName, options.Command[1:]...)
	cmd.Env = buildEnvironment(values, options.Override)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}

	e.logger.Debug("executing command: %s", strings.Join(options.Command, " "))
	e.logger.Debug("environment variables injected: %d", len(values))

	if err := cmd.Run(); err != nil {
		command := strings.Join(options.Command, " ")
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return kerrors.CommandError{
				Command: command,
				Message: fmt.Sprintf("timed out after %s", options.Timeout),
			}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return kerrors.CommandError{
				Command:  command,
				ExitCode: exitErr.ExitCode(),
			}
		}
		return kerrors.CommandError{
			Command:    command,
			Message:    err.Error(),
			Suggestion: "Check the command output above for details",
		}
	}

	return nil
}

// revealAll opens every sealed value. The plaintext lives only as long as
// the spawn that consumes it; the caller keeps ownership of the buffers.
func revealAll(secrets map[string]*secure.SecureBuffer) (map[string]string, error) {
	values := make(map[string]string, len(secrets))
	for name, buf := range secrets {
		if buf == nil {
			continue
		}
		value, err := buf.Reveal()
		if err != nil {
			return nil, fmt.Errorf("revealing %s: %w", name, err)
		}
		values[name] = value
	}
	return values, nil
}

// buildEnvironment merges the revealed values into the current environment
// under the export precedence rule: a pre-existing variable wins unless
// override is set.
func buildEnvironment(values map[string]string, override bool) []string {
	envMap := make(map[string]string)
	for _, entry := range os.Environ() {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}

	for name, value := range values {
		if _, exists := envMap[name]; exists && !override {
			continue
		}
		envMap[name] = value
	}

	// Sort for consistent ordering (helps with debugging)
	result := make([]string, 0, len(envMap))
	for name, value := range envMap {
		result = append(result, fmt.Sprintf("%s=%s", name, value))
	}
	sort.Strings(result)

	return result
}

// printEnvironment displays the resolved variables, values masked.
func printEnvironment(out io.Writer, values map[string]string) {
	if len(values) == 0 {
		fmt.Fprintln(out, "No environment variables resolved")
		return
	}

	fmt.Fprintf(out, "Resolved %d environment variables:\n", len(values))

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(out, "  %s=%s\n", name, MaskValue(values[name]))
	}
	fmt.Fprintln(out)
}

// MaskValue masks a secret value for display.
func MaskValue(value string) string {
	if len(value) == 0 {
		return "(empty)"
	}

	// Very short values are fully masked
	if len(value) <= 3 {
		return strings.Repeat("*", len(value))
	}

	// Show first and last characters for mid-length values
	if len(value) <= 8 {
		return value[:1] + strings.Repeat("*", len(value)-2) + value[len(value)-1:]
	}

	// For long values, show first 3 and last 2 with asterisks in between
	return value[:3] + strings.Repeat("*", 8) + value[len(value)-2:]
}

// ValidateCommand checks if a command is accessible and not on the
// dangerous list. Callers typically treat a dangerous-command result as a
// warning, not a hard failure.
func ValidateCommand(command []string) error {
	if len(command) == 0 {
		return kerrors.UserError{
			Message:    "No command specified",
			Suggestion: "Provide a command after -- (e.g., kstack exec --layer 0 -- npm start)",
		}
	}

	cmdName := command[0]

	if _, err := exec.LookPath(cmdName); err != nil {
		return kerrors.WrapCommandNotFound(cmdName, err)
	}

	// Not comprehensive security - just basic safety
	dangerousCommands := []string{
		"rm", "rmdir", "del", "format", "fdisk",
		"dd", "mkfs", "parted", "shutdown", "reboot",
	}

	for _, dangerous := range dangerousCommands {
		if cmdName == dangerous || strings.HasSuffix(cmdName, "/"+dangerous) {
			return kerrors.UserError{
				Message:    fmt.Sprintf("Potentially dangerous command '%s'", cmdName),
				Suggestion: "Use this command with extreme caution or consider safer alternatives",
			}
		}
	}

	return nil
}
