// Package origins implements bundle storage reads for both execution
// contexts: the workstation vault tree and the cluster's Secret objects.
// Origins read exactly what is stored; access control and merging across
// layers belong to the resolver.
package origins

import (
	"context"

	"github.com/systmms/kstack/internal/logging"
	"github.com/systmms/kstack/internal/vault"
	"github.com/systmms/kstack/pkg/provider"
	"github.com/systmms/kstack/pkg/stack"
)

// VaultOrigin reads bundles from the on-disk vault. Every secret file in
// one (environment, layer) directory folds into a single bundle; later
// files win key collisions and sharing grants are unioned.
type VaultOrigin struct {
	vault  vault.Vault
	logger *logging.Logger
}

// VaultOptions configure construction. The zero value discovers the vault
// from the working directory and uses the real context probe.
type VaultOptions struct {
	Dir         string
	ProjectRoot string
	InCluster   func() bool
	Logger      *logging.Logger
}

// NewVaultOrigin guards the execution context before touching the disk.
func NewVaultOrigin(opts VaultOptions) (*VaultOrigin, error) {
	if err := provider.EnsureContext("vault secret origin", stack.ContextLocal, opts.InCluster); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.New(false, true)
	}
	return &VaultOrigin{vault: vault.Discover(opts.Dir, opts.ProjectRoot), logger: logger}, nil
}

// Vault exposes the resolved location for diagnostics.
func (o *VaultOrigin) Vault() vault.Vault {
	return o.vault
}

// Read loads the bundle stored for one (environment, layer) pair. A
// missing vault or layer directory yields an empty bundle; a present but
// malformed file is an error.
func (o *VaultOrigin) Read(ctx context.Context, env stack.Environment, layer stack.Layer) (provider.SecretBundle, error) {
	files, err := o.vault.SecretFiles(env, layer)
	if err != nil {
		return provider.SecretBundle{}, provider.ConfigurationError{
			Source:  o.vault.LayerDir(env, layer),
			Message: "listing secret files",
			Err:     err,
		}
	}

	var bundle provider.SecretBundle
	for _, path := range files {
		doc, err := vault.LoadDocument(path)
		if err != nil {
			return provider.SecretBundle{}, provider.ConfigurationError{Source: path, Message: "loading secret file", Err: err}
		}
		if err := vault.ValidateBundle(doc); err != nil {
			return provider.SecretBundle{}, provider.ConfigurationError{Source: path, Message: "invalid secret bundle", Err: err}
		}
		part, err := provider.NewBundle(doc)
		if err != nil {
			return provider.SecretBundle{}, provider.ConfigurationError{Source: path, Message: "invalid secret bundle", Err: err}
		}
		bundle.Merge(part)
		o.logger.Debug("loaded %d keys from %s", len(part.Values), path)
	}
	return bundle, nil
}
