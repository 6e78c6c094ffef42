package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/kstack/pkg/provider"
	"github.com/systmms/kstack/pkg/stack"
)

func exportOptions(t *testing.T, values map[string]any) *Options {
	t.Helper()

	origin := &provider.MockOrigin{Bundles: map[stack.Layer]provider.SecretBundle{
		stack.Layer0Applications: bundleWith(t, values),
	}}
	return testOptions(t, &provider.MockDetector{Env: stack.EnvDevelopment}, origin)
}

func TestSecretsExportShellFormat(t *testing.T) {
	opts := exportOptions(t, map[string]any{
		"db-host":     "localhost",
		"db-password": "s3cr3t pass",
	})

	cmd := NewSecretsCommand(opts)
	output := captureStdout(t, cmd, []string{"export", "--layer", "0"})

	assert.Contains(t, output, "export DB_HOST='localhost'\n")
	assert.Contains(t, output, "export DB_PASSWORD='s3cr3t pass'\n")
}

func TestSecretsExportSkipsExistingVariables(t *testing.T) {
	t.Setenv("DB_HOST", "explicitly-set")

	opts := exportOptions(t, map[string]any{
		"db-host":     "localhost",
		"db-password": "s3cr3t",
	})

	cmd := NewSecretsCommand(opts)
	output := captureStdout(t, cmd, []string{"export", "--layer", "0"})

	assert.NotContains(t, output, "DB_HOST")
	assert.Contains(t, output, "export DB_PASSWORD='s3cr3t'\n")
}

func TestSecretsExportOverrideEmitsExisting(t *testing.T) {
	t.Setenv("DB_HOST", "explicitly-set")

	opts := exportOptions(t, map[string]any{"db-host": "localhost"})

	cmd := NewSecretsCommand(opts)
	output := captureStdout(t, cmd, []string{"export", "--layer", "0", "--override"})

	assert.Contains(t, output, "export DB_HOST='localhost'\n")
}

func TestSecretsExportDotenvFormat(t *testing.T) {
	opts := exportOptions(t, map[string]any{"db-host": "localhost"})

	cmd := NewSecretsCommand(opts)
	output := captureStdout(t, cmd, []string{"export", "--layer", "0", "--format", "dotenv"})

	assert.Contains(t, output, "DB_HOST=localhost\n")
	assert.NotContains(t, output, "export ")
}

func TestSecretsExportUnknownFormat(t *testing.T) {
	opts := exportOptions(t, map[string]any{"db-host": "localhost"})

	cmd := NewSecretsCommand(opts)
	_, err := runCapturing(t, cmd, []string{"export", "--layer", "0", "--format", "json"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown format")
}

func TestSecretsExportSortsOutput(t *testing.T) {
	opts := exportOptions(t, map[string]any{
		"zeta-key":  "z",
		"alpha-key": "a",
		"mid-key":   "m",
	})

	cmd := NewSecretsCommand(opts)
	output := captureStdout(t, cmd, []string{"export", "--layer", "0"})

	require.Contains(t, output, "ALPHA_KEY")
	require.Contains(t, output, "ZETA_KEY")
	assert.Less(t, strings.Index(output, "ALPHA_KEY"), strings.Index(output, "MID_KEY"))
	assert.Less(t, strings.Index(output, "MID_KEY"), strings.Index(output, "ZETA_KEY"))
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "value", "'value'"},
		{"spaces", "two words", "'two words'"},
		{"double quotes", `say "hi"`, `'say "hi"'`},
		{"single quote", "it's", `'it'\''s'`},
		{"dollar", "$HOME", "'$HOME'"},
		{"empty", "", "''"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shellQuote(tt.input))
		})
	}
}
