package cloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// SecretsManagerAPI is the subset of the Secrets Manager client the
// adapter uses.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	DeleteSecret(ctx context.Context, params *secretsmanager.DeleteSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DeleteSecretOutput, error)
}

// SecretManager is an AWS Secrets Manager adapter for string secrets.
type SecretManager struct {
	client SecretsManagerAPI
}

// SecretManagerOption configures the adapter.
type SecretManagerOption func(*SecretManager)

// WithSecretsManagerClient sets a custom Secrets Manager client (for
// testing).
func WithSecretsManagerClient(client SecretsManagerAPI) SecretManagerOption {
	return func(m *SecretManager) {
		m.client = client
	}
}

// NewSecretManager builds the adapter from a session factory config.
func NewSecretManager(cfg aws.Config, opts ...SecretManagerOption) *SecretManager {
	m := &SecretManager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.client == nil {
		m.client = secretsmanager.NewFromConfig(cfg)
	}
	return m
}

// Get returns the secret's string value. Binary-only secrets come back as
// their raw bytes stringified.
func (m *SecretManager) Get(ctx context.Context, name string) (string, error) {
	out, err := m.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("getting secret %s: %w", name, err)
	}

	if out.SecretString != nil {
		return *out.SecretString, nil
	}
	if out.SecretBinary != nil {
		return string(out.SecretBinary), nil
	}
	return "", fmt.Errorf("secret %s has no value", name)
}

// Put creates the secret, or stores a new version when it already exists.
func (m *SecretManager) Put(ctx context.Context, name, value string) error {
	_, err := m.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		SecretString: aws.String(value),
	})
	if err == nil {
		return nil
	}

	var exists *smtypes.ResourceExistsException
	if !errors.As(err, &exists) {
		return fmt.Errorf("creating secret %s: %w", name, err)
	}

	_, err = m.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(value),
	})
	if err != nil {
		return fmt.Errorf("updating secret %s: %w", name, err)
	}
	return nil
}

// Delete removes the secret; force skips the recovery window.
func (m *SecretManager) Delete(ctx context.Context, name string, force bool) error {
	input := &secretsmanager.DeleteSecretInput{SecretId: aws.String(name)}
	if force {
		input.ForceDeleteWithoutRecovery = aws.Bool(true)
	}

	if _, err := m.client.DeleteSecret(ctx, input); err != nil {
		return fmt.Errorf("deleting secret %s: %w", name, err)
	}
	return nil
}
