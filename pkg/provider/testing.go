package provider

import (
	"context"

	"github.com/systmms/kstack/pkg/stack"
)

// Test doubles for the provider contracts. They live in the package proper
// so registry, resolver, and command tests can share them.

// MockDetector reports a fixed environment and counts calls.
type MockDetector struct {
	Env   stack.Environment
	Err   error
	Calls int
}

func (m *MockDetector) Environment(ctx context.Context, layer stack.Layer) (stack.Environment, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	if m.Env == "" {
		return stack.DefaultEnvironment, nil
	}
	return m.Env, nil
}

// MockOrigin serves bundles from a per-layer map and records reads.
type MockOrigin struct {
	Bundles map[stack.Layer]SecretBundle
	Err     error
	Reads   []stack.Layer
}

func (m *MockOrigin) Read(ctx context.Context, env stack.Environment, layer stack.Layer) (SecretBundle, error) {
	m.Reads = append(m.Reads, layer)
	if m.Err != nil {
		return SecretBundle{}, m.Err
	}
	return m.Bundles[layer], nil
}

// MockCredentialSource issues credentials from a per-service map. Unknown
// services fail the way real sources do.
type MockCredentialSource struct {
	Creds map[string]Credentials
	Err   error
}

func (m *MockCredentialSource) Credentials(ctx context.Context, service string, layer stack.Layer, env stack.Environment) (Credentials, error) {
	if m.Err != nil {
		return Credentials{}, m.Err
	}
	creds, ok := m.Creds[service]
	if !ok {
		return Credentials{}, ServiceNotFoundError{Service: service, Layer: layer, Environment: env}
	}
	return creds, nil
}
