package secure

import (
	"errors"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrDestroyed is returned when a buffer is used after Destroy.
var ErrDestroyed = errors.New("secure buffer already destroyed")

// SecureBuffer stores one secret value encrypted in memory. The zero value
// is unusable; construct with NewSecureBuffer or NewSecureBufferFromString.
// memguard cannot seal zero-length payloads, so empty values are carried
// without an enclave and reveal as "".
type SecureBuffer struct {
	mu        sync.RWMutex
	enclave   *memguard.Enclave
	destroyed bool
}

// NewSecureBuffer seals secret bytes into a protected buffer. The input
// slice is copied; callers holding sensitive bytes should wipe their copy.
func NewSecureBuffer(data []byte) (*SecureBuffer, error) {
	if len(data) == 0 {
		return &SecureBuffer{}, nil
	}
	return &SecureBuffer{enclave: memguard.NewEnclave(data)}, nil
}

// NewSecureBufferFromString seals a secret string. Strings are immutable,
// so the original cannot be wiped; call this at the boundary where decoded
// values first appear and let the string copy fall out of scope.
func NewSecureBufferFromString(value string) (*SecureBuffer, error) {
	return NewSecureBuffer([]byte(value))
}

// Reveal copies the plaintext out as a string for boundaries that need
// one: a child process environment, an SDK credential field. The copy
// escapes protected memory, so keep its lifetime short.
func (s *SecureBuffer) Reveal() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return "", ErrDestroyed
	}
	if s.enclave == nil {
		return "", nil
	}

	locked, err := s.enclave.Open()
	if err != nil {
		return "", fmt.Errorf("opening enclave: %w", err)
	}
	value := string(locked.Bytes())
	locked.Destroy()
	return value, nil
}

// Destroy drops the enclave and marks the buffer unusable. Idempotent.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		return
	}
	s.enclave = nil
	s.destroyed = true
}

// Destroyed reports whether the buffer has been dropped.
func (s *SecureBuffer) Destroyed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyed
}
