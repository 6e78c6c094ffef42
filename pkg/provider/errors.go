package provider

import (
	"fmt"

	"github.com/systmms/kstack/pkg/stack"
)

// WrongContextError reports that a context-specific implementation was
// constructed in the wrong execution context. Constructors raise it before
// any I/O; it is fatal and never retried.
type WrongContextError struct {
	Component string
	Required  stack.ExecutionContext
	Actual    stack.ExecutionContext
}

func (e WrongContextError) Error() string {
	return fmt.Sprintf("%s requires the %s execution context (running in %s)", e.Component, e.Required, e.Actual)
}

// ConfigurationError reports a discovered source (file, cluster object)
// that exists but is malformed. Absence is never a ConfigurationError.
type ConfigurationError struct {
	Source  string
	Message string
	Err     error
}

func (e ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

func (e ConfigurationError) Unwrap() error {
	return e.Err
}

// ServiceNotFoundError reports that no credentials exist for a requested
// service/layer combination where the caller needs them to proceed.
type ServiceNotFoundError struct {
	Service     string
	Layer       stack.Layer
	Environment stack.Environment
	Hint        string
}

func (e ServiceNotFoundError) Error() string {
	msg := fmt.Sprintf("no credentials for service %q", e.Service)
	if e.Environment != "" {
		msg = fmt.Sprintf("%s in %s (environment %s)", msg, e.Layer, e.Environment)
	}
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	return msg
}

// EnsureContext returns WrongContextError unless the process context
// matches required. Constructors of context-specific implementations call
// it first, before touching any file or API. A nil predicate means the
// real stack.InCluster probe.
func EnsureContext(component string, required stack.ExecutionContext, inCluster func() bool) error {
	if inCluster == nil {
		inCluster = stack.InCluster
	}
	actual := stack.ContextLocal
	if inCluster() {
		actual = stack.ContextCluster
	}
	if actual != required {
		return WrongContextError{Component: component, Required: required, Actual: actual}
	}
	return nil
}
