package secure

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureBufferRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
	}{
		{"plain value", "super-secret-data"},
		{"binary-ish value", "\x00\xff\x10 with text"},
		{"empty value", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			buf, err := NewSecureBufferFromString(tc.value)
			require.NoError(t, err)
			defer buf.Destroy()

			got, err := buf.Reveal()
			require.NoError(t, err)
			assert.Equal(t, tc.value, got)

			// Revealing is repeatable until Destroy.
			got, err = buf.Reveal()
			require.NoError(t, err)
			assert.Equal(t, tc.value, got)
		})
	}
}

func TestSecureBufferDestroy(t *testing.T) {
	t.Parallel()

	buf, err := NewSecureBufferFromString("secret-to-destroy")
	require.NoError(t, err)
	assert.False(t, buf.Destroyed())

	buf.Destroy()
	buf.Destroy() // idempotent
	assert.True(t, buf.Destroyed())

	_, err = buf.Reveal()
	assert.ErrorIs(t, err, ErrDestroyed)
}

func TestSecureBufferConcurrentReveal(t *testing.T) {
	t.Parallel()

	buf, err := NewSecureBufferFromString("concurrent-secret")
	require.NoError(t, err)
	defer buf.Destroy()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := buf.Reveal()
			assert.NoError(t, err)
			assert.Equal(t, "concurrent-secret", got)
		}()
	}
	wg.Wait()
}
