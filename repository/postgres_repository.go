package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ammiranda/feed_service/config"
	"github.com/ammiranda/feed_service/migrations"
	"github.com/ammiranda/feed_service/models"

	"github.com/lib/pq"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation
const uniqueViolation = "23505"

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db     *sql.DB
	config *config.DatabaseConfig
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(cfgProvider config.Provider) (*PostgresRepository, error) {
	ctx := context.Background()
	cfg, err := config.GetDatabaseConfig(ctx, cfgProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to get database config: %w", err)
	}

	return &PostgresRepository{
		config: cfg,
	}, nil
}

// Initialize sets up the PostgreSQL database
func (r *PostgresRepository) Initialize(ctx context.Context) error {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		r.config.Host,
		r.config.Port,
		r.config.User,
		r.config.Password,
		r.config.DBName,
		r.config.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("error pinging database: %w", err)
	}

	if err := migrations.RunMigrations(db, migrations.Postgres); err != nil {
		db.Close()
		return err
	}

	r.db = db
	return nil
}

// DB exposes the underlying connection pool
func (r *PostgresRepository) DB() *sql.DB {
	return r.db
}

// Dialect returns the migration dialect of the database
func (r *PostgresRepository) Dialect() migrations.Dialect {
	return migrations.Postgres
}

// Cleanup closes the database connection
func (r *PostgresRepository) Cleanup(ctx context.Context) error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateCategory inserts a new category row
func (r *PostgresRepository) CreateCategory(ctx context.Context, parentID int64, title, description string) (int64, error) {
	if title == "" {
		return 0, ErrInvalidInput
	}
	if err := r.requireCategory(ctx, parentID); err != nil {
		return 0, err
	}

	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO categories (parent_id, title, description) VALUES ($1, $2, $3) RETURNING id",
		parentID, title, description,
	).Scan(&id)
	if err != nil {
		if isPostgresUniqueViolation(err) {
			return 0, ErrDuplicateTitle
		}
		return 0, fmt.Errorf("error creating category: %w", err)
	}
	return id, nil
}

// CreateFeed inserts a new feed row
func (r *PostgresRepository) CreateFeed(ctx context.Context, feed *FeedRow) (int64, error) {
	if feed == nil || feed.Title == "" {
		return 0, ErrInvalidInput
	}
	if err := r.requireCategory(ctx, feed.ParentID); err != nil {
		return 0, err
	}

	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO feeds (category, title, description, url, encoding, type)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		feed.ParentID, feed.Title, feed.Description, feed.URL, feed.Encoding, feed.Type,
	).Scan(&id)
	if err != nil {
		if isPostgresUniqueViolation(err) {
			return 0, ErrDuplicateTitle
		}
		return 0, fmt.Errorf("error creating feed: %w", err)
	}
	return id, nil
}

// GetCategory retrieves a category by ID
func (r *PostgresRepository) GetCategory(ctx context.Context, id int64) (*CategoryRow, error) {
	var row CategoryRow
	err := r.db.QueryRowContext(ctx,
		"SELECT id, parent_id, title, description FROM categories WHERE id = $1", id,
	).Scan(&row.ID, &row.ParentID, &row.Title, &row.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNodeNotFound
		}
		return nil, fmt.Errorf("error getting category: %w", err)
	}
	return &row, nil
}

// GetAllCategories retrieves all category rows
func (r *PostgresRepository) GetAllCategories(ctx context.Context) ([]*CategoryRow, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, parent_id, title, description FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("error getting categories: %w", err)
	}
	defer rows.Close()

	var categories []*CategoryRow
	for rows.Next() {
		var row CategoryRow
		if err := rows.Scan(&row.ID, &row.ParentID, &row.Title, &row.Description); err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		categories = append(categories, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// GetAllFeeds retrieves all feed rows
func (r *PostgresRepository) GetAllFeeds(ctx context.Context) ([]*FeedRow, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, category, title, description, url, encoding, type FROM feeds ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("error getting feeds: %w", err)
	}
	defer rows.Close()

	var feeds []*FeedRow
	for rows.Next() {
		var row FeedRow
		if err := rows.Scan(&row.ID, &row.ParentID, &row.Title, &row.Description, &row.URL, &row.Encoding, &row.Type); err != nil {
			return nil, fmt.Errorf("error scanning feed: %w", err)
		}
		feeds = append(feeds, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feeds: %w", err)
	}
	return feeds, nil
}

// requireCategory checks that id names an existing category or the top level
func (r *PostgresRepository) requireCategory(ctx context.Context, id int64) error {
	if id == models.NoParentID {
		return nil
	}
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)",
		id,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNodeNotFound
	}
	return nil
}

func isPostgresUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
