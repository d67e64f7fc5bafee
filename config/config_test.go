package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecretsClient struct {
	secret string
	calls  int
	err    error
}

func (f *fakeSecretsClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(f.secret)}, nil
}

func TestGetAppConfigDefaults(t *testing.T) {
	cfg, err := GetAppConfig(context.Background(), &MapProvider{})
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 0, cfg.MaxAssemblyPasses)
}

func TestGetAppConfigOverrides(t *testing.T) {
	provider := &MapProvider{Values: map[string]string{
		"STORAGE_DRIVER":      "memory",
		"HTTP_ADDR":           ":9090",
		"CACHE_TTL_SECONDS":   "30",
		"MAX_ASSEMBLY_PASSES": "7",
		"INITIAL_FEEDS_PATH":  "/etc/feeds/initial.opml",
	}}

	cfg, err := GetAppConfig(context.Background(), provider)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 7, cfg.MaxAssemblyPasses)
	assert.Equal(t, "/etc/feeds/initial.opml", cfg.InitialFeedsPath)
}

func TestGetAppConfigInvalid(t *testing.T) {
	testCases := []struct {
		name   string
		values map[string]string
	}{
		{"Unknown driver", map[string]string{"STORAGE_DRIVER": "mongo"}},
		{"Non numeric TTL", map[string]string{"CACHE_TTL_SECONDS": "soon"}},
		{"Zero TTL", map[string]string{"CACHE_TTL_SECONDS": "0"}},
		{"Negative passes", map[string]string{"MAX_ASSEMBLY_PASSES": "-1"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := GetAppConfig(context.Background(), &MapProvider{Values: tc.values})
			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfigValidate(t *testing.T) {
	valid := DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     5432,
		User:     "feeds",
		Password: "secret",
		DBName:   "feeds",
		SSLMode:  "disable",
	}
	assert.NoError(t, valid.Validate(Development))

	testCases := []struct {
		name   string
		mutate func(c *DatabaseConfig)
		env    Environment
		field  string
	}{
		{"Empty host", func(c *DatabaseConfig) { c.Host = "" }, Development, "Host"},
		{"Bad port", func(c *DatabaseConfig) { c.Port = 70000 }, Development, "Port"},
		{"Bad db name", func(c *DatabaseConfig) { c.DBName = "1feeds" }, Development, "DBName"},
		{"Bad ssl mode", func(c *DatabaseConfig) { c.SSLMode = "maybe" }, Development, "SSLMode"},
		{"Weak production password", func(c *DatabaseConfig) { c.SSLMode = "require" }, Production, "Password"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			err := cfg.Validate(tc.env)
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}
}

func TestAWSSecretsProviderCachesSecret(t *testing.T) {
	client := &fakeSecretsClient{secret: `{"STORAGE_DRIVER":"sqlite","SQLITE_PATH":"/data/feeds.db"}`}
	provider := NewAWSSecretsProviderWithClient(client, "feeds")

	value, err := provider.GetString(context.Background(), "SQLITE_PATH")
	require.NoError(t, err)
	assert.Equal(t, "/data/feeds.db", value)

	_, err = provider.GetString(context.Background(), "HTTP_ADDR")
	assert.ErrorIs(t, err, ErrNotSet)
	assert.Equal(t, 1, client.calls)
}

func TestAWSSecretsProviderRejectsIncompleteDatabaseSecret(t *testing.T) {
	client := &fakeSecretsClient{secret: `{"DB_HOST":"db"}`}
	provider := NewAWSSecretsProviderWithClient(client, "feeds")

	_, err := provider.GetString(context.Background(), "DB_HOST")
	assert.Error(t, err)
}

func TestLayeredProviderFallsBackToEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":7070")
	client := &fakeSecretsClient{secret: `{"STORAGE_DRIVER":"memory"}`}
	provider := NewLayeredProvider(NewAWSSecretsProviderWithClient(client, "feeds"), NewEnvProvider(""))

	driver, err := provider.GetString(context.Background(), "STORAGE_DRIVER")
	require.NoError(t, err)
	assert.Equal(t, "memory", driver)

	addr, err := provider.GetString(context.Background(), "HTTP_ADDR")
	require.NoError(t, err)
	assert.Equal(t, ":7070", addr)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FEED_SERVICE_TEST_KEY=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("FEED_SERVICE_TEST_KEY") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("FEED_SERVICE_TEST_KEY"))
}
