package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/systmms/kstack/pkg/provider"
)

// UserError is an error rendered for a human running the CLI, with
// optional detail and a suggested next step.
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// CommandError reports a child command that failed to run or exited
// non-zero.
type CommandError struct {
	Command    string
	ExitCode   int
	Message    string
	Suggestion string
}

func (e CommandError) Error() string {
	msg := fmt.Sprintf("Command '%s' failed", e.Command)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code: %d)", e.ExitCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// WrapCommandNotFound wraps command lookup failures with an install hint
// for common tools.
func WrapCommandNotFound(command string, err error) error {
	suggestions := map[string]string{
		"npm":    "Install Node.js from https://nodejs.org/",
		"yarn":   "Install Yarn from https://yarnpkg.com/",
		"python": "Install Python from https://python.org/",
		"go":     "Install Go from https://golang.org/",
		"docker": "Install Docker from https://docker.com/",
		"git":    "Install Git from https://git-scm.com/",
		"make":   "Install Make (usually comes with build tools)",
	}

	suggestion := suggestions[command]
	if suggestion == "" {
		suggestion = fmt.Sprintf("Make sure '%s' is installed and in your PATH", command)
	}

	return UserError{
		Message:    fmt.Sprintf("Command '%s' not found", command),
		Suggestion: suggestion,
		Err:        err,
	}
}

// Wrap turns domain errors into user-facing ones with actionable
// suggestions. Errors that are already user-facing pass through.
func Wrap(err error) error {
	if err == nil {
		return nil
	}

	var userErr UserError
	if errors.As(err, &userErr) {
		return err
	}
	var cmdErr CommandError
	if errors.As(err, &cmdErr) {
		return err
	}

	var wrongCtx provider.WrongContextError
	if errors.As(err, &wrongCtx) {
		return UserError{
			Message:    fmt.Sprintf("%s is only available in the %s execution context", wrongCtx.Component, wrongCtx.Required),
			Details:    fmt.Sprintf("this process is running in the %s context", wrongCtx.Actual),
			Suggestion: suggestionForContext(wrongCtx),
			Err:        err,
		}
	}

	var confErr provider.ConfigurationError
	if errors.As(err, &confErr) {
		return UserError{
			Message:    "Malformed configuration source",
			Details:    confErr.Error(),
			Suggestion: "Fix the source shown above, then run 'kstack doctor' to re-check",
			Err:        err,
		}
	}

	var notFound provider.ServiceNotFoundError
	if errors.As(err, &notFound) {
		return UserError{
			Message:    notFound.Error(),
			Suggestion: fmt.Sprintf("Add %q to the %s credentials for %s, or check the active environment with 'kstack env'", notFound.Service, notFound.Layer.Short(), notFound.Environment),
			Err:        err,
		}
	}

	return simplify(err)
}

func suggestionForContext(wrongCtx provider.WrongContextError) string {
	if wrongCtx.Required.String() == "local" {
		return "Vault directories exist only on workstations; inside the cluster secrets come from the Secret store"
	}
	return "Cluster providers need a pod service account; on a workstation use the vault-backed providers"
}

// simplify softens common technical errors for users; anything it does not
// recognize passes through unchanged.
func simplify(err error) error {
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return UserError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	return err
}
