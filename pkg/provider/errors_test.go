package provider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/kstack/pkg/stack"
)

func TestEnsureContext(t *testing.T) {
	t.Parallel()

	inCluster := func() bool { return true }
	onWorkstation := func() bool { return false }

	require.NoError(t, EnsureContext("cluster origin", stack.ContextCluster, inCluster))
	require.NoError(t, EnsureContext("vault origin", stack.ContextLocal, onWorkstation))

	err := EnsureContext("vault origin", stack.ContextLocal, inCluster)
	var wrongCtx WrongContextError
	require.ErrorAs(t, err, &wrongCtx)
	assert.Equal(t, stack.ContextLocal, wrongCtx.Required)
	assert.Equal(t, stack.ContextCluster, wrongCtx.Actual)
	assert.Contains(t, err.Error(), "requires the local execution context")

	err = EnsureContext("cluster origin", stack.ContextCluster, onWorkstation)
	require.ErrorAs(t, err, &wrongCtx)
	assert.Equal(t, stack.ContextCluster, wrongCtx.Required)
}

func TestConfigurationErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("yaml: line 3: mapping values are not allowed")
	err := ConfigurationError{Source: "/tmp/vault/dev/layer0/app.yaml", Message: "invalid YAML", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "app.yaml")
	assert.Contains(t, err.Error(), "invalid YAML")

	bare := ConfigurationError{Source: ".kstack.yaml", Message: "missing environment key"}
	assert.Equal(t, ".kstack.yaml: missing environment key", bare.Error())
}

func TestServiceNotFoundError(t *testing.T) {
	t.Parallel()

	err := ServiceNotFoundError{
		Service:     "s3",
		Layer:       stack.Layer3GlobalInfra,
		Environment: stack.EnvDevelopment,
		Hint:        "available services: sqs",
	}
	assert.Contains(t, err.Error(), `service "s3"`)
	assert.Contains(t, err.Error(), "layer-3-global-infra")
	assert.Contains(t, err.Error(), "available services: sqs")

	// Callers outside the resolution path have no layer/environment to report.
	bare := ServiceNotFoundError{Service: "redis-client", Hint: "resolved secrets lack redis-client-host"}
	assert.Equal(t, `no credentials for service "redis-client": resolved secrets lack redis-client-host`, bare.Error())
}
