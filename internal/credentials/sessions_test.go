package credentials

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/kstack/pkg/provider"
	"github.com/systmms/kstack/pkg/stack"
)

func TestSessionsConfig(t *testing.T) {
	source := &provider.MockCredentialSource{Creds: map[string]provider.Credentials{
		"s3": {
			AccessKeyID:     "AKIAEXAMPLE",
			SecretAccessKey: "shhh",
			Region:          "eu-central-1",
			EndpointURL:     "http://localhost:4566",
		},
	}}
	sessions := NewSessions(source, nil)

	cfg, err := sessions.Config(context.Background(), "s3", stack.Layer0Applications, stack.EnvDevelopment)
	require.NoError(t, err)

	assert.Equal(t, "eu-central-1", cfg.Region)
	require.NotNil(t, cfg.BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", aws.ToString(cfg.BaseEndpoint))

	retrieved, err := cfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIAEXAMPLE", retrieved.AccessKeyID)
	assert.Equal(t, "shhh", retrieved.SecretAccessKey)
}

func TestSessionsConfigDefaultRegion(t *testing.T) {
	source := &provider.MockCredentialSource{Creds: map[string]provider.Credentials{
		"sqs": {AccessKeyID: "a", SecretAccessKey: "b"},
	}}
	sessions := NewSessions(source, nil)

	cfg, err := sessions.Config(context.Background(), "sqs", stack.Layer0Applications, stack.EnvDevelopment)
	require.NoError(t, err)
	assert.Equal(t, DefaultRegion, cfg.Region)
	assert.Nil(t, cfg.BaseEndpoint)
}

func TestSessionsConfigEmptyCredentials(t *testing.T) {
	source := &provider.MockCredentialSource{Creds: map[string]provider.Credentials{
		"s3": {Region: "us-east-1"},
	}}
	sessions := NewSessions(source, nil)

	_, err := sessions.Config(context.Background(), "s3", stack.Layer0Applications, stack.EnvDevelopment)
	var cfgErr provider.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "no usable key material")
}

func TestSessionsConfigSourceError(t *testing.T) {
	source := &provider.MockCredentialSource{Creds: map[string]provider.Credentials{}}
	sessions := NewSessions(source, nil)

	_, err := sessions.Config(context.Background(), "dynamodb", stack.Layer2GlobalServices, stack.EnvStaging)
	var notFound provider.ServiceNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "dynamodb", notFound.Service)
}
