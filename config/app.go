package config

import (
	"context"
	"fmt"
	"time"
)

// Storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var validDrivers = map[string]struct{}{
	DriverSQLite:   {},
	DriverPostgres: {},
	DriverMemory:   {},
}

// AppConfig holds the service level settings
type AppConfig struct {
	StorageDriver     string
	SQLitePath        string
	HTTPAddr          string
	LogLevel          string
	CacheTTL          time.Duration
	InitialFeedsPath  string
	AMQPURL           string
	AMQPExchange      string
	MaxAssemblyPasses int
}

// DefaultAppConfig returns the settings used when nothing is configured
func DefaultAppConfig() AppConfig {
	return AppConfig{
		StorageDriver: DriverSQLite,
		HTTPAddr:      ":8080",
		LogLevel:      "info",
		CacheTTL:      5 * time.Minute,
		AMQPExchange:  "feeds",
	}
}

// GetAppConfig reads the service settings from provider, falling back to defaults
func GetAppConfig(ctx context.Context, provider Provider) (*AppConfig, error) {
	cfg := DefaultAppConfig()

	stringOr := func(key string, target *string) {
		if value, err := provider.GetString(ctx, key); err == nil {
			*target = value
		}
	}

	stringOr("STORAGE_DRIVER", &cfg.StorageDriver)
	stringOr("SQLITE_PATH", &cfg.SQLitePath)
	stringOr("HTTP_ADDR", &cfg.HTTPAddr)
	stringOr("LOG_LEVEL", &cfg.LogLevel)
	stringOr("INITIAL_FEEDS_PATH", &cfg.InitialFeedsPath)
	stringOr("AMQP_URL", &cfg.AMQPURL)
	stringOr("AMQP_EXCHANGE", &cfg.AMQPExchange)

	if _, err := provider.GetString(ctx, "CACHE_TTL_SECONDS"); err == nil {
		seconds, err := provider.GetInt(ctx, "CACHE_TTL_SECONDS")
		if err != nil {
			return nil, fmt.Errorf("failed to get CACHE_TTL_SECONDS: %w", err)
		}
		cfg.CacheTTL = time.Duration(seconds) * time.Second
	}

	if _, err := provider.GetString(ctx, "MAX_ASSEMBLY_PASSES"); err == nil {
		passes, err := provider.GetInt(ctx, "MAX_ASSEMBLY_PASSES")
		if err != nil {
			return nil, fmt.Errorf("failed to get MAX_ASSEMBLY_PASSES: %w", err)
		}
		cfg.MaxAssemblyPasses = passes
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid application configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks if the application configuration is valid
func (c *AppConfig) Validate() error {
	if _, ok := validDrivers[c.StorageDriver]; !ok {
		return &ValidationError{Field: "StorageDriver", Message: "must be one of sqlite, postgres, memory"}
	}
	if c.HTTPAddr == "" {
		return &ValidationError{Field: "HTTPAddr", Message: "listen address cannot be empty"}
	}
	if c.CacheTTL <= 0 {
		return &ValidationError{Field: "CacheTTL", Message: "cache TTL must be positive"}
	}
	if c.MaxAssemblyPasses < 0 {
		return &ValidationError{Field: "MaxAssemblyPasses", Message: "cannot be negative"}
	}
	return nil
}
