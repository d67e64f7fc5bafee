package config

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// AWSConfigProvider implements Provider using AWS Secrets Manager first and
// the process environment for keys the secret does not define
type AWSConfigProvider struct {
	secretsProvider Provider
	envProvider     Provider
}

// NewAWSConfigProvider creates a new AWS configuration provider
func NewAWSConfigProvider() (Provider, error) {
	secretName := os.Getenv("AWS_SECRET_NAME")
	if secretName == "" {
		return nil, fmt.Errorf("AWS_SECRET_NAME environment variable not set")
	}

	secretsProvider, err := NewAWSSecretsProvider(secretName)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS secrets provider: %w", err)
	}

	return NewLayeredProvider(secretsProvider, NewEnvProvider("")), nil
}

// NewLayeredProvider returns a provider consulting primary, then fallback
// when primary reports the key as not set
func NewLayeredProvider(primary, fallback Provider) *AWSConfigProvider {
	return &AWSConfigProvider{
		secretsProvider: primary,
		envProvider:     fallback,
	}
}

// NewProvider picks the AWS provider when AWS_SECRET_NAME is set, the environment otherwise
func NewProvider() (Provider, error) {
	if os.Getenv("AWS_SECRET_NAME") != "" {
		return NewAWSConfigProvider()
	}
	return NewEnvProvider(""), nil
}

// GetEnvironment returns the current environment
func (p *AWSConfigProvider) GetEnvironment() Environment {
	return p.secretsProvider.GetEnvironment()
}

// GetString retrieves a string configuration value
func (p *AWSConfigProvider) GetString(ctx context.Context, key string) (string, error) {
	value, err := p.secretsProvider.GetString(ctx, key)
	if errors.Is(err, ErrNotSet) {
		return p.envProvider.GetString(ctx, key)
	}
	return value, err
}

// GetInt retrieves an integer configuration value
func (p *AWSConfigProvider) GetInt(ctx context.Context, key string) (int, error) {
	value, err := p.secretsProvider.GetInt(ctx, key)
	if errors.Is(err, ErrNotSet) {
		return p.envProvider.GetInt(ctx, key)
	}
	return value, err
}

// GetBool retrieves a boolean configuration value
func (p *AWSConfigProvider) GetBool(ctx context.Context, key string) (bool, error) {
	value, err := p.secretsProvider.GetBool(ctx, key)
	if errors.Is(err, ErrNotSet) {
		return p.envProvider.GetBool(ctx, key)
	}
	return value, err
}

// GetSecret retrieves a secret value; secrets never fall back to the environment
func (p *AWSConfigProvider) GetSecret(ctx context.Context, key string) (string, error) {
	return p.secretsProvider.GetSecret(ctx, key)
}
