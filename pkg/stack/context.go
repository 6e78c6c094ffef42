package stack

import "os"

// ExecutionContext says where the process runs. Context-specific providers
// refuse to construct in the wrong context.
type ExecutionContext int

const (
	ContextLocal ExecutionContext = iota
	ContextCluster
)

func (c ExecutionContext) String() string {
	if c == ContextCluster {
		return "cluster"
	}
	return "local"
}

// serviceAccountTokenPath is the credential mount every cluster-managed pod
// carries and no workstation does. Tests may repoint it.
var serviceAccountTokenPath = "/var/run/secrets/kubernetes.io/serviceaccount/token"

// InCluster reports whether the process runs inside a Kubernetes pod. It is
// a pure existence probe: absence of the token is a normal false, never an
// error, and the check is cheap enough to repeat.
func InCluster() bool {
	_, err := os.Stat(serviceAccountTokenPath)
	return err == nil
}

// DetectContext returns the current execution context.
func DetectContext() ExecutionContext {
	if InCluster() {
		return ContextCluster
	}
	return ContextLocal
}
