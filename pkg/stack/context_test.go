package stack

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// swapTokenPath points the context probe at a test-controlled location.
func swapTokenPath(t *testing.T, path string) {
	t.Helper()

	old := serviceAccountTokenPath
	serviceAccountTokenPath = path
	t.Cleanup(func() { serviceAccountTokenPath = old })
}

func TestInClusterWithToken(t *testing.T) {
	token := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(token, []byte("eyJhbGciOi"), 0o600))
	swapTokenPath(t, token)

	assert.True(t, InCluster())
	assert.Equal(t, ContextCluster, DetectContext())
}

func TestInClusterWithoutToken(t *testing.T) {
	swapTokenPath(t, filepath.Join(t.TempDir(), "missing"))

	assert.False(t, InCluster())
	assert.Equal(t, ContextLocal, DetectContext())

	// Repeat calls are side-effect free.
	assert.False(t, InCluster())
}

func TestExecutionContextString(t *testing.T) {
	assert.Equal(t, "local", ContextLocal.String())
	assert.Equal(t, "cluster", ContextCluster.String())
}
