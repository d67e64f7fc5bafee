package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ammiranda/feed_service/migrations"
	"github.com/ammiranda/feed_service/models"

	"github.com/mattn/go-sqlite3"
)

// SQLiteRepository implements Repository using SQLite
type SQLiteRepository struct {
	db     *sql.DB
	dbPath string
}

// DefaultSQLitePath returns the database file used when no path is configured
func DefaultSQLitePath() string {
	// Default to data directory in user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	dataDir := filepath.Join(homeDir, ".feed_service")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		// Fallback to current directory if home directory is not accessible
		dataDir = "."
	}
	return filepath.Join(dataDir, "database.db")
}

// NewSQLiteRepository creates a new SQLite repository stored at dbPath
func NewSQLiteRepository(dbPath string) *SQLiteRepository {
	if dbPath == "" {
		dbPath = DefaultSQLitePath()
	}
	return &SQLiteRepository{
		dbPath: dbPath,
	}
}

// Initialize opens the database file and applies migrations
func (r *SQLiteRepository) Initialize(ctx context.Context) error {
	db, err := sql.Open("sqlite3", r.dbPath)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("error pinging database: %w", err)
	}

	if err := migrations.RunMigrations(db, migrations.SQLite); err != nil {
		db.Close()
		return err
	}

	r.db = db
	return nil
}

// DB exposes the underlying connection pool
func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

// Dialect returns the migration dialect of the database
func (r *SQLiteRepository) Dialect() migrations.Dialect {
	return migrations.SQLite
}

// Cleanup closes the database connection
func (r *SQLiteRepository) Cleanup(ctx context.Context) error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateCategory inserts a new category row
func (r *SQLiteRepository) CreateCategory(ctx context.Context, parentID int64, title, description string) (int64, error) {
	if title == "" {
		return 0, ErrInvalidInput
	}
	if err := r.requireCategory(ctx, parentID); err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (parent_id, title, description) VALUES (?, ?, ?)",
		parentID, title, description,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return 0, ErrDuplicateTitle
		}
		return 0, fmt.Errorf("error creating category: %w", err)
	}
	return result.LastInsertId()
}

// CreateFeed inserts a new feed row
func (r *SQLiteRepository) CreateFeed(ctx context.Context, feed *FeedRow) (int64, error) {
	if feed == nil || feed.Title == "" {
		return 0, ErrInvalidInput
	}
	if err := r.requireCategory(ctx, feed.ParentID); err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO feeds (category, title, description, url, encoding, type) VALUES (?, ?, ?, ?, ?, ?)",
		feed.ParentID, feed.Title, feed.Description, feed.URL, feed.Encoding, feed.Type,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return 0, ErrDuplicateTitle
		}
		return 0, fmt.Errorf("error creating feed: %w", err)
	}
	return result.LastInsertId()
}

// GetCategory retrieves a category by ID
func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (*CategoryRow, error) {
	var row CategoryRow
	err := r.db.QueryRowContext(ctx,
		"SELECT id, parent_id, title, description FROM categories WHERE id = ?", id,
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
func (r *SQLiteRepository) GetAllCategories(ctx context.Context) ([]*CategoryRow, error) {
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
	return categories, rows.Err()
}

// GetAllFeeds retrieves all feed rows
func (r *SQLiteRepository) GetAllFeeds(ctx context.Context) ([]*FeedRow, error) {
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
	return feeds, rows.Err()
}

// requireCategory checks that id names an existing category or the top level
func (r *SQLiteRepository) requireCategory(ctx context.Context, id int64) error {
	if id == models.NoParentID {
		return nil
	}
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM categories WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNodeNotFound
	}
	return nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
