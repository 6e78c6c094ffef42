package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/kstack/pkg/stack"
)

func TestNewBundle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		raw        map[string]any
		wantValues map[string]string
		wantShared []stack.Layer
		wantMeta   map[string]string
		wantErr    string
	}{
		{
			name: "plain values",
			raw:  map[string]any{"redis-password": "x", "redis-port": 6379},
			wantValues: map[string]string{
				"redis-password": "x",
				"redis-port":     "6379",
			},
		},
		{
			name:       "shared_with list",
			raw:        map[string]any{"key": "v", "shared_with": []any{"layer0", "layer2"}},
			wantValues: map[string]string{"key": "v"},
			wantShared: []stack.Layer{stack.Layer0Applications, stack.Layer2GlobalServices},
		},
		{
			name:       "shared_with scalar",
			raw:        map[string]any{"key": "v", "shared_with": "layer1"},
			wantValues: map[string]string{"key": "v"},
			wantShared: []stack.Layer{stack.Layer1TenantInfra},
		},
		{
			name:       "shared_with comma string",
			raw:        map[string]any{"key": "v", "shared_with": "layer2, layer0"},
			wantValues: map[string]string{"key": "v"},
			wantShared: []stack.Layer{stack.Layer0Applications, stack.Layer2GlobalServices},
		},
		{
			name:       "metadata segregated",
			raw:        map[string]any{"api-key": "y", "description": "app creds", "created": "2026-01-10", "status": "active"},
			wantValues: map[string]string{"api-key": "y"},
			wantMeta:   map[string]string{"description": "app creds", "created": "2026-01-10", "status": "active"},
		},
		{
			name:       "scalar forms",
			raw:        map[string]any{"enabled": true, "ratio": 0.25, "count": int64(12)},
			wantValues: map[string]string{"enabled": "true", "ratio": "0.25", "count": "12"},
		},
		{
			name:    "nested value rejected",
			raw:     map[string]any{"db": map[string]any{"host": "x"}},
			wantErr: "must be a scalar",
		},
		{
			name:    "unknown layer in shared_with",
			raw:     map[string]any{"shared_with": []any{"layer9"}},
			wantErr: "invalid layer",
		},
		{
			name:    "non-string shared_with entry",
			raw:     map[string]any{"shared_with": []any{3.5}},
			wantErr: "layer names",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bundle, err := NewBundle(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValues, bundle.Values)
			assert.Equal(t, tt.wantShared, bundle.SharedWith)
			if tt.wantMeta != nil {
				assert.Equal(t, tt.wantMeta, bundle.Meta)
			}
		})
	}
}

func TestBundleIsSharedWith(t *testing.T) {
	t.Parallel()

	bundle, err := NewBundle(map[string]any{"k": "v", "shared_with": []any{"layer0"}})
	require.NoError(t, err)

	assert.True(t, bundle.IsSharedWith(stack.Layer0Applications))
	assert.False(t, bundle.IsSharedWith(stack.Layer2GlobalServices))
	assert.False(t, SecretBundle{}.IsSharedWith(stack.Layer0Applications))
}

func TestBundleMerge(t *testing.T) {
	t.Parallel()

	var merged SecretBundle
	first, err := NewBundle(map[string]any{"a": "1", "b": "old", "shared_with": "layer1"})
	require.NoError(t, err)
	second, err := NewBundle(map[string]any{"b": "new", "c": "3", "shared_with": []any{"layer0", "layer1"}})
	require.NoError(t, err)

	merged.Merge(first)
	merged.Merge(second)

	assert.Equal(t, map[string]string{"a": "1", "b": "new", "c": "3"}, merged.Values)
	assert.Equal(t, []stack.Layer{stack.Layer0Applications, stack.Layer1TenantInfra}, merged.SharedWith)
}

func TestBundleEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, SecretBundle{}.Empty())

	withShare, err := NewBundle(map[string]any{"shared_with": "layer0"})
	require.NoError(t, err)
	assert.False(t, withShare.Empty())

	onlyMeta, err := NewBundle(map[string]any{"description": "placeholder"})
	require.NoError(t, err)
	assert.True(t, onlyMeta.Empty())
}

func TestIsMetadataKey(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"shared_with", "description", "created", "status", "migration"} {
		assert.True(t, IsMetadataKey(key), key)
	}
	assert.False(t, IsMetadataKey("redis-password"))
}
