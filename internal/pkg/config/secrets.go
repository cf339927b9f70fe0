// internal/pkg/config/secrets.go
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManager abstracts secret retrieval so production can pull database
// and redis credentials from AWS while development reads the environment.
type SecretsManager interface {
	GetSecret(ctx context.Context, key string) (string, error)
	RefreshSecrets(ctx context.Context) error
}

// AWSSecretsManager loads a JSON secret blob from AWS Secrets Manager
type AWSSecretsManager struct {
	client     *secretsmanager.Client
	secretName string
	cache      map[string]string
	mu         sync.RWMutex
	logger     *slog.Logger
}

// NewAWSSecretsManager creates a secrets manager backed by AWS
func NewAWSSecretsManager(ctx context.Context, region, secretName string, logger *slog.Logger) (*AWSSecretsManager, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	sm := &AWSSecretsManager{
		client:     secretsmanager.NewFromConfig(awsCfg),
		secretName: secretName,
		cache:      make(map[string]string),
		logger:     logger.With(slog.String("component", "secrets")),
	}

	if err := sm.RefreshSecrets(ctx); err != nil {
		return nil, err
	}
	return sm, nil
}

// GetSecret returns a single key from the cached secret blob
func (sm *AWSSecretsManager) GetSecret(ctx context.Context, key string) (string, error) {
	sm.mu.RLock()
	value, ok := sm.cache[key]
	sm.mu.RUnlock()
	if ok {
		return value, nil
	}

	if err := sm.RefreshSecrets(ctx); err != nil {
		return "", err
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	value, ok = sm.cache[key]
	if !ok {
		return "", fmt.Errorf("secret key %q not found in %s", key, sm.secretName)
	}
	return value, nil
}

// RefreshSecrets re-reads the secret blob from AWS
func (sm *AWSSecretsManager) RefreshSecrets(ctx context.Context) error {
	out, err := sm.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: &sm.secretName,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch secret %s: %w", sm.secretName, err)
	}

	var values map[string]string
	if out.SecretString != nil {
		if err := json.Unmarshal([]byte(*out.SecretString), &values); err != nil {
			return fmt.Errorf("failed to parse secret %s: %w", sm.secretName, err)
		}
	}

	sm.mu.Lock()
	sm.cache = values
	sm.mu.Unlock()

	sm.logger.Info("secrets refreshed", slog.Int("count", len(values)))
	return nil
}

// EnvSecretsManager reads secrets from environment variables; used in
// development and tests.
type EnvSecretsManager struct{}

// NewEnvSecretsManager creates an environment-backed secrets manager
func NewEnvSecretsManager() *EnvSecretsManager {
	return &EnvSecretsManager{}
}

// GetSecret reads the key from the environment
func (em *EnvSecretsManager) GetSecret(_ context.Context, key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("environment variable %s not set", key)
	}
	return value, nil
}

// RefreshSecrets is a no-op for the environment source
func (em *EnvSecretsManager) RefreshSecrets(_ context.Context) error {
	return nil
}
