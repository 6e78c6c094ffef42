package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/kstack/pkg/provider"
	"github.com/systmms/kstack/pkg/stack"
)

func TestDoctorCommandAllHealthy(t *testing.T) {
	origin := &provider.MockOrigin{Bundles: map[stack.Layer]provider.SecretBundle{
		stack.Layer0Applications: bundleWith(t, map[string]any{
			"db-host":     "localhost",
			"db-password": "s3cr3t",
		}),
	}}
	opts := testOptions(t, &provider.MockDetector{Env: stack.EnvDevelopment}, origin)
	vaultDir := t.TempDir()

	cmd := NewDoctorCommand(opts)
	output := captureStdout(t, cmd, []string{"--layer", "0", "--vault-dir", vaultDir})

	assert.Contains(t, output, "execution context")
	assert.Contains(t, output, "local")
	assert.Contains(t, output, "layer0 environment")
	assert.Contains(t, output, "dev")
	assert.Contains(t, output, "layer0 secrets")
	assert.Contains(t, output, "2 keys")
	assert.Contains(t, output, vaultDir)
	assert.Contains(t, output, "Summary: 5/5 checks passed")
	assert.NotContains(t, output, "✗")
}

func TestDoctorCommandChecksEveryLayerByDefault(t *testing.T) {
	opts := testOptions(t, &provider.MockDetector{Env: stack.EnvDevelopment}, &provider.MockOrigin{})
	vaultDir := t.TempDir()

	cmd := NewDoctorCommand(opts)
	output := captureStdout(t, cmd, []string{"--vault-dir", vaultDir})

	for _, layer := range stack.Layers() {
		assert.Contains(t, output, layer.Short()+" environment")
		assert.Contains(t, output, layer.Short()+" secrets")
	}
	assert.Contains(t, output, "Summary: 11/11 checks passed")
}

func TestDoctorCommandMissingVault(t *testing.T) {
	opts := testOptions(t, &provider.MockDetector{Env: stack.EnvDevelopment}, &provider.MockOrigin{})

	cmd := NewDoctorCommand(opts)
	output, err := runCapturing(t, cmd, []string{
		"--layer", "0",
		"--vault-dir", filepath.Join(t.TempDir(), "does-not-exist"),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "some checks failed")
	assert.Contains(t, output, "✗ failed")
	assert.Contains(t, output, "no vault directory found")
	assert.Contains(t, output, "Summary: 3/4 checks passed")
}

func TestDoctorCommandUnreadableSecrets(t *testing.T) {
	origin := &provider.MockOrigin{Err: provider.ConfigurationError{
		Source:  "vault/dev/layer0/app.yaml",
		Message: "invalid secret bundle",
	}}
	opts := testOptions(t, &provider.MockDetector{Env: stack.EnvDevelopment}, origin)
	vaultDir := t.TempDir()

	cmd := NewDoctorCommand(opts)
	output, err := runCapturing(t, cmd, []string{"--layer", "0", "--vault-dir", vaultDir})

	require.Error(t, err)
	assert.Contains(t, output, "layer0 secrets")
	assert.Contains(t, output, "✗ failed")
	assert.Contains(t, output, "invalid secret bundle")
}

func TestDoctorCommandDetectorFailure(t *testing.T) {
	detector := &provider.MockDetector{Err: provider.ConfigurationError{
		Source:  ".kstack.yaml",
		Message: "missing environment key",
	}}
	opts := testOptions(t, detector, &provider.MockOrigin{})
	vaultDir := t.TempDir()

	cmd := NewDoctorCommand(opts)
	output, err := runCapturing(t, cmd, []string{"--layer", "1", "--vault-dir", vaultDir})

	require.Error(t, err)
	assert.Contains(t, output, "layer1 environment")
	assert.Contains(t, output, "missing environment key")
}
