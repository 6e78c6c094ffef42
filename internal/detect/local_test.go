package detect

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/kstack/pkg/provider"
	"github.com/systmms/kstack/pkg/stack"
)

func onWorkstation() bool { return false }
func inPod() bool         { return true }

func clearOverrides(t *testing.T) {
	t.Helper()
	t.Setenv(EnvEnvironment, "")
	t.Setenv(EnvRoute, "")
}

// nestedRoot builds a directory four levels below a fresh temp dir so the
// marker search never escapes the test tree.
func nestedRoot(t *testing.T) (base, nested string) {
	t.Helper()
	base = t.TempDir()
	nested = filepath.Join(base, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	return base, nested
}

func writeMarker(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewLocalDetectorWrongContext(t *testing.T) {
	_, err := NewLocalDetector(LocalOptions{InCluster: inPod})

	var wrongCtx provider.WrongContextError
	require.ErrorAs(t, err, &wrongCtx)
	assert.Equal(t, "local environment detector", wrongCtx.Component)
	assert.Equal(t, stack.ContextLocal, wrongCtx.Required)
}

func TestLocalEnvironmentDefault(t *testing.T) {
	clearOverrides(t)
	_, nested := nestedRoot(t)

	d, err := NewLocalDetector(LocalOptions{ProjectRoot: nested, InCluster: onWorkstation})
	require.NoError(t, err)

	env, err := d.Environment(context.Background(), stack.Layer0Applications)
	require.NoError(t, err)
	assert.Equal(t, stack.DefaultEnvironment, env)
}

func TestLocalEnvironmentFromMarker(t *testing.T) {
	clearOverrides(t)
	_, nested := nestedRoot(t)
	writeMarker(t, nested, "environment: staging\n")

	d, err := NewLocalDetector(LocalOptions{ProjectRoot: nested, InCluster: onWorkstation})
	require.NoError(t, err)

	env, err := d.Environment(context.Background(), stack.Layer0Applications)
	require.NoError(t, err)
	assert.Equal(t, stack.EnvStaging, env)
}

func TestLocalEnvironmentMarkerAlias(t *testing.T) {
	clearOverrides(t)
	_, nested := nestedRoot(t)
	writeMarker(t, nested, "environment: production\n")

	d, err := NewLocalDetector(LocalOptions{ProjectRoot: nested, InCluster: onWorkstation})
	require.NoError(t, err)

	env, err := d.Environment(context.Background(), stack.Layer2GlobalServices)
	require.NoError(t, err)
	assert.Equal(t, stack.EnvProduction, env)
}

func TestLocalEnvironmentWalksParents(t *testing.T) {
	clearOverrides(t)
	base, nested := nestedRoot(t)
	writeMarker(t, filepath.Join(base, "a"), "environment: test\n")

	d, err := NewLocalDetector(LocalOptions{ProjectRoot: nested, InCluster: onWorkstation})
	require.NoError(t, err)

	env, err := d.Environment(context.Background(), stack.Layer0Applications)
	require.NoError(t, err)
	assert.Equal(t, stack.EnvTesting, env)
}

func TestLocalEnvironmentOverride(t *testing.T) {
	clearOverrides(t)
	_, nested := nestedRoot(t)
	writeMarker(t, nested, "environment: staging\n")
	t.Setenv(EnvEnvironment, "production")

	d, err := NewLocalDetector(LocalOptions{ProjectRoot: nested, InCluster: onWorkstation})
	require.NoError(t, err)

	env, err := d.Environment(context.Background(), stack.Layer0Applications)
	require.NoError(t, err)
	assert.Equal(t, stack.EnvProduction, env)
}

func TestLocalEnvironmentInvalidOverride(t *testing.T) {
	clearOverrides(t)
	_, nested := nestedRoot(t)
	t.Setenv(EnvEnvironment, "galaxy")

	d, err := NewLocalDetector(LocalOptions{ProjectRoot: nested, InCluster: onWorkstation})
	require.NoError(t, err)

	_, err = d.Environment(context.Background(), stack.Layer0Applications)
	var cfgErr provider.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, EnvEnvironment, cfgErr.Source)
}

func TestLocalEnvironmentMalformedMarker(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"invalid yaml", "environment: [unclosed\n", "invalid YAML"},
		{"not a mapping", "- dev\n", "invalid YAML"},
		{"missing key", "name: kstack\n", "missing environment key"},
		{"non-string value", "environment: 3\n", "environment must be a string"},
		{"unknown value", "environment: galaxy\n", "invalid environment"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearOverrides(t)
			_, nested := nestedRoot(t)
			path := writeMarker(t, nested, tc.content)

			d, err := NewLocalDetector(LocalOptions{ProjectRoot: nested, InCluster: onWorkstation})
			require.NoError(t, err)

			_, err = d.Environment(context.Background(), stack.Layer0Applications)
			var cfgErr provider.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, path, cfgErr.Source)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}
