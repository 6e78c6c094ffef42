package secrets

import (
	"context"

	"github.com/systmms/kstack/pkg/registry"
	"github.com/systmms/kstack/pkg/stack"
)

// Load is the application entry point: build a resolver from the registry,
// resolve the layer's secrets, and optionally export them into the process
// environment (pre-existing variables winning).
func Load(ctx context.Context, reg *registry.Registry, layer stack.Layer, autoExport bool) (Resolved, error) {
	resolver, err := FromRegistry(reg)
	if err != nil {
		return nil, err
	}
	resolved, err := resolver.Resolve(ctx, layer)
	if err != nil {
		return nil, err
	}
	if autoExport {
		if _, err := Export(resolved, false); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}
