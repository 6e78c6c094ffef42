// Package detect resolves which deployment track a layer runs in. The two
// detectors share one override: the KSTACK_ENV process variable wins over
// every stored selection, so operators can repoint a shell or a pod
// without touching files or cluster state.
package detect

import (
	"os"
	"strings"

	"github.com/systmms/kstack/pkg/provider"
	"github.com/systmms/kstack/pkg/stack"
)

const (
	// EnvEnvironment overrides detection with an explicit track.
	EnvEnvironment = "KSTACK_ENV"
	// EnvRoute overrides the cluster's stored route selection.
	EnvRoute = "KSTACK_ROUTE"
)

// overrideEnvironment reads the KSTACK_ENV override. The boolean reports
// whether an override was present; a present-but-invalid value is a
// configuration error, not a fallthrough.
func overrideEnvironment() (stack.Environment, bool, error) {
	raw, ok := os.LookupEnv(EnvEnvironment)
	if !ok {
		return "", false, nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, nil
	}
	env, err := stack.ParseEnvironment(raw)
	if err != nil {
		return "", false, provider.ConfigurationError{Source: EnvEnvironment, Message: "invalid environment override", Err: err}
	}
	return env, true, nil
}
