// Package provider defines the capability contracts the kstack registry
// wires together, the value types those capabilities exchange, and the
// domain error taxonomy.
//
// Concrete implementations live under internal/detect, internal/origins,
// and internal/credentials; applications and tests may substitute anything
// that satisfies these interfaces via registry overrides.
//
// # Error Handling
//
// Capabilities use the error types defined in this package:
//   - WrongContextError when a context-specific implementation is
//     constructed in the wrong execution context
//   - ConfigurationError when a discovered source exists but is malformed
//   - ServiceNotFoundError when mandatory credentials are absent
//
// Absence of optional material (no vault directory, no shared bundle, no
// declared environment) is never an error.
package provider

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/systmms/kstack/pkg/stack"
)

// EnvironmentDetector reports the active deployment track for a layer.
//
// Detection never fails on absence: when no source declares a track the
// detector returns stack.DefaultEnvironment. A source that exists but is
// malformed surfaces as ConfigurationError.
type EnvironmentDetector interface {
	Environment(ctx context.Context, layer stack.Layer) (stack.Environment, error)
}

// SecretOrigin reads the raw secret bundle stored for one (environment,
// layer) pair. A missing bundle is the empty bundle, not an error; origins
// report ConfigurationError only for sources that exist and are malformed.
type SecretOrigin interface {
	Read(ctx context.Context, env stack.Environment, layer stack.Layer) (SecretBundle, error)
}

// CredentialSource issues per-service credentials for a layer. Unlike
// secret bundles, credentials are mandatory once requested: an absent
// service surfaces as ServiceNotFoundError.
type CredentialSource interface {
	Credentials(ctx context.Context, service string, layer stack.Layer, env stack.Environment) (Credentials, error)
}

// SessionFactory turns issued credentials into ready cloud SDK
// configuration. It layers on top of CredentialSource and carries no
// context-specific logic of its own.
type SessionFactory interface {
	Config(ctx context.Context, service string, layer stack.Layer, env stack.Environment) (aws.Config, error)
}

// Credentials is the credential material issued for one service. Field
// names follow the on-disk spelling in cloud-credentials files and the
// data keys of *-credentials Secrets.
type Credentials struct {
	AccessKeyID     string `yaml:"aws_access_key_id"`
	SecretAccessKey string `yaml:"aws_secret_access_key"`
	SessionToken    string `yaml:"aws_session_token"`
	Region          string `yaml:"aws_region"`
	EndpointURL     string `yaml:"endpoint_url"`
}

// Empty reports whether no usable key material was issued.
func (c Credentials) Empty() bool {
	return c.AccessKeyID == "" && c.SecretAccessKey == ""
}
