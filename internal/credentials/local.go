// Package credentials issues per-service cloud credentials from the
// context's store and turns them into ready AWS SDK configuration.
// Credentials are mandatory where asked for: a missing service is an
// error, never an empty fallback.
package credentials

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/systmms/kstack/internal/vault"
	"github.com/systmms/kstack/pkg/provider"
	"github.com/systmms/kstack/pkg/stack"
)

// Credential field names, shared by the on-disk file and Secret data keys.
const (
	keyAccessKeyID     = "aws_access_key_id"
	keySecretAccessKey = "aws_secret_access_key"
	keySessionToken    = "aws_session_token"
	keyRegion          = "aws_region"
	keyEndpointURL     = "endpoint_url"
)

// LocalSource issues credentials from the vault's per-layer
// cloud-credentials file.
type LocalSource struct {
	vault vault.Vault
}

// LocalOptions configure construction. The zero value discovers the vault
// from the working directory and uses the real context probe.
type LocalOptions struct {
	Dir         string
	ProjectRoot string
	InCluster   func() bool
}

// NewLocalSource guards the execution context before touching the disk.
func NewLocalSource(opts LocalOptions) (*LocalSource, error) {
	if err := provider.EnsureContext("local credential source", stack.ContextLocal, opts.InCluster); err != nil {
		return nil, err
	}
	return &LocalSource{vault: vault.Discover(opts.Dir, opts.ProjectRoot)}, nil
}

// Credentials reads the service's entry from
// <vault>/<environment>/<layerN>/cloud-credentials.yaml.
func (s *LocalSource) Credentials(ctx context.Context, service string, layer stack.Layer, env stack.Environment) (provider.Credentials, error) {
	path := s.vault.CredentialsPath(env, layer)

	doc, err := vault.LoadDocument(path)
	if os.IsNotExist(err) {
		return provider.Credentials{}, provider.ServiceNotFoundError{
			Service:     service,
			Layer:       layer,
			Environment: env,
			Hint:        "expected file: " + path,
		}
	}
	if err != nil {
		return provider.Credentials{}, provider.ConfigurationError{Source: path, Message: "loading credentials file", Err: err}
	}
	if err := vault.ValidateCredentials(doc); err != nil {
		return provider.Credentials{}, provider.ConfigurationError{Source: path, Message: "invalid credentials file", Err: err}
	}

	raw, ok := doc[service]
	if !ok {
		return provider.Credentials{}, provider.ServiceNotFoundError{
			Service:     service,
			Layer:       layer,
			Environment: env,
			Hint:        availableServices(doc),
		}
	}
	fields, ok := raw.(map[string]any)
	if !ok {
		return provider.Credentials{}, provider.ConfigurationError{Source: path, Message: "service entry is not a mapping"}
	}
	return credentialsFromFields(fields), nil
}

func availableServices(doc map[string]any) string {
	if len(doc) == 0 {
		return "the credentials file declares no services"
	}
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)
	return "available services: " + strings.Join(names, ", ")
}

func credentialsFromFields(fields map[string]any) provider.Credentials {
	str := func(key string) string {
		if v, ok := fields[key].(string); ok {
			return v
		}
		return ""
	}
	return provider.Credentials{
		AccessKeyID:     str(keyAccessKeyID),
		SecretAccessKey: str(keySecretAccessKey),
		SessionToken:    str(keySessionToken),
		Region:          str(keyRegion),
		EndpointURL:     str(keyEndpointURL),
	}
}
