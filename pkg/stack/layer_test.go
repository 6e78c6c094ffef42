package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLayer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Layer
		wantErr bool
	}{
		{name: "short alias", input: "layer0", want: Layer0Applications},
		{name: "short alias upper", input: "LAYER3", want: Layer3GlobalInfra},
		{name: "bare number", input: "2", want: Layer2GlobalServices},
		{name: "full name", input: "layer-1-tenant-infra", want: Layer1TenantInfra},
		{name: "full name mixed case", input: "Layer-2-Global-Services", want: Layer2GlobalServices},
		{name: "surrounding space", input: "  layer1  ", want: Layer1TenantInfra},
		{name: "out of range number", input: "4", wantErr: true},
		{name: "unknown name", input: "layer-9-nonsense", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLayer(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid layer")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLayerAccessors(t *testing.T) {
	t.Parallel()

	l := Layer2GlobalServices
	assert.Equal(t, 2, l.Number())
	assert.Equal(t, "layer2", l.Short())
	assert.Equal(t, "layer-2-global-services", l.String())
	assert.Equal(t, "layer-2-global-services", l.Namespace())
	assert.Equal(t, "Layer 2: Global Services", l.DisplayName())
}

func TestLayersOrdering(t *testing.T) {
	t.Parallel()

	layers := Layers()
	require.Len(t, layers, 4)
	for i, l := range layers {
		assert.Equal(t, i, l.Number())
		assert.True(t, l.Valid())
	}
}

func TestLayerInvalid(t *testing.T) {
	t.Parallel()

	bad := Layer(7)
	assert.False(t, bad.Valid())
	assert.Equal(t, "layer(7)", bad.String())
}
