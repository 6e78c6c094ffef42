// Package secrets resolves a layer's effective configuration from stored
// bundles and exports it into the process environment. Resolution is the
// access-control step: a layer sees its own bundle plus whatever other
// layers have explicitly shared with it.
package secrets

import (
	"context"

	"github.com/systmms/kstack/internal/logging"
	"github.com/systmms/kstack/pkg/provider"
	"github.com/systmms/kstack/pkg/registry"
	"github.com/systmms/kstack/pkg/stack"
)

// Resolved is a layer's effective secret map after access filtering and
// merging. Keys are the stored spelling; EnvName gives the exported form.
type Resolved map[string]string

// Resolver folds stored bundles into one layer's effective secrets.
type Resolver struct {
	detector provider.EnvironmentDetector
	origin   provider.SecretOrigin
	logger   *logging.Logger
}

// New builds a resolver from explicit collaborators. A nil logger means
// quiet.
func New(detector provider.EnvironmentDetector, origin provider.SecretOrigin, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.New(false, true)
	}
	return &Resolver{detector: detector, origin: origin, logger: logger}
}

// FromRegistry builds a resolver from the registry's detector and origin
// capabilities.
func FromRegistry(reg *registry.Registry) (*Resolver, error) {
	detector, err := reg.EnvironmentDetector()
	if err != nil {
		return nil, err
	}
	origin, err := reg.SecretOrigin()
	if err != nil {
		return nil, err
	}
	return New(detector, origin, reg.Logger()), nil
}

// Resolve computes the requesting layer's effective secrets: shared
// bundles merge first in increasing layer order, the layer's own bundle
// overlays last and wins every collision. Metadata never appears; absent
// bundles contribute nothing.
func (r *Resolver) Resolve(ctx context.Context, layer stack.Layer) (Resolved, error) {
	env, err := r.detector.Environment(ctx, layer)
	if err != nil {
		return nil, err
	}

	own, err := r.origin.Read(ctx, env, layer)
	if err != nil {
		return nil, err
	}

	resolved := make(Resolved)
	sharedBundles := 0
	for _, other := range stack.Layers() {
		if other == layer {
			continue
		}
		bundle, err := r.origin.Read(ctx, env, other)
		if err != nil {
			return nil, err
		}
		if bundle.Empty() || !bundle.IsSharedWith(layer) {
			continue
		}
		for key, value := range bundle.Values {
			resolved[key] = value
		}
		sharedBundles++
		r.logger.Debug("merged %d shared keys from %s", len(bundle.Values), other.Short())
	}
	for key, value := range own.Values {
		resolved[key] = value
	}

	observeResolution(layer, env, len(resolved))
	r.logger.Debug("resolved %d keys for %s in %s (%d shared bundles)", len(resolved), layer.Short(), env, sharedBundles)
	return resolved, nil
}
