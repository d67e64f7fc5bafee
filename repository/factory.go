package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ammiranda/feed_service/config"
	"github.com/ammiranda/feed_service/migrations"
)

// SQLRepository is a Repository backed by a migrated SQL database
type SQLRepository interface {
	Repository
	DB() *sql.DB
	Dialect() migrations.Dialect
}

var (
	_ SQLRepository = (*SQLiteRepository)(nil)
	_ SQLRepository = (*PostgresRepository)(nil)
	_ Repository    = (*MockRepository)(nil)
)

// Open creates and initializes the repository selected by cfg.StorageDriver.
// Postgres settings are read from provider.
func Open(ctx context.Context, cfg *config.AppConfig, provider config.Provider) (Repository, error) {
	var repo Repository
	switch cfg.StorageDriver {
	case config.DriverMemory:
		repo = NewMockRepository()
	case config.DriverPostgres:
		pg, err := NewPostgresRepository(provider)
		if err != nil {
			return nil, err
		}
		repo = pg
	case config.DriverSQLite, "":
		repo = NewSQLiteRepository(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", ErrInvalidInput, cfg.StorageDriver)
	}

	if err := repo.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize %s repository: %w", cfg.StorageDriver, err)
	}
	return repo, nil
}
