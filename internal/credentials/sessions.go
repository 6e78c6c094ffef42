package credentials

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/systmms/kstack/internal/logging"
	"github.com/systmms/kstack/internal/secure"
	"github.com/systmms/kstack/pkg/provider"
	"github.com/systmms/kstack/pkg/stack"
)

// DefaultRegion applies when issued credentials name none.
const DefaultRegion = "us-east-1"

// Sessions turns issued credentials into ready AWS SDK configuration. It
// is context-free: all context awareness lives in the credential source it
// wraps.
type Sessions struct {
	source provider.CredentialSource
	logger *logging.Logger
}

// NewSessions wraps a credential source. A nil logger means quiet.
func NewSessions(source provider.CredentialSource, logger *logging.Logger) *Sessions {
	if logger == nil {
		logger = logging.New(false, true)
	}
	return &Sessions{source: source, logger: logger}
}

// Config issues an aws.Config with static credentials for one service.
// The secret key transits a sealed buffer between the source read and
// provider construction; an endpoint_url (LocalStack and friends) becomes
// the config's base endpoint.
func (s *Sessions) Config(ctx context.Context, service string, layer stack.Layer, env stack.Environment) (aws.Config, error) {
	creds, err := s.source.Credentials(ctx, service, layer, env)
	if err != nil {
		return aws.Config{}, err
	}
	if creds.Empty() {
		return aws.Config{}, provider.ConfigurationError{
			Source:  fmt.Sprintf("credentials for %q", service),
			Message: "no usable key material",
		}
	}

	sealed, err := secure.NewSecureBufferFromString(creds.SecretAccessKey)
	if err != nil {
		return aws.Config{}, fmt.Errorf("sealing secret key: %w", err)
	}
	defer sealed.Destroy()
	creds.SecretAccessKey = ""

	region := creds.Region
	if region == "" {
		region = DefaultRegion
	}

	secretKey, err := sealed.Reveal()
	if err != nil {
		return aws.Config{}, fmt.Errorf("unsealing secret key: %w", err)
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(awscreds.NewStaticCredentialsProvider(creds.AccessKeyID, secretKey, creds.SessionToken)),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("building aws config for %q: %w", service, err)
	}
	if creds.EndpointURL != "" {
		cfg.BaseEndpoint = aws.String(creds.EndpointURL)
	}

	s.logger.Debug("issued %s session for %s/%s in region %s", service, layer.Short(), env, region)
	return cfg, nil
}
