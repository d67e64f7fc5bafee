package repository

import (
	"context"
	"errors"
)

// CategoryRow is a row of the Categories table
type CategoryRow struct {
	ID          int64  // Unique identifier of the category
	ParentID    int64  // Parent category id or models.NoParentID
	Title       string // Display name, unique among siblings
	Description string
}

// FeedRow is a row of the Feeds table
type FeedRow struct {
	ID          int64  // Unique identifier of the feed
	ParentID    int64  // Owning category id or models.NoParentID
	Title       string // Display name, unique among sibling feeds
	Description string
	URL         string
	Encoding    string
	Type        int // Raw syndication type, see models.FeedType
}

// Repository defines the interface for feed and category storage.
type Repository interface {
	// Initialize performs any necessary setup for the repository.
	// This may include establishing database connections or running migrations.
	// Returns an error if initialization fails.
	Initialize(ctx context.Context) error

	// Cleanup releases the resources held by the repository.
	Cleanup(ctx context.Context) error

	// CreateCategory stores a new category.
	// Parameters:
	//   - ctx: Context for the operation
	//   - parentID: The parent category id, or models.NoParentID for top-level
	//   - title: The display name of the category
	//   - description: Optional free text
	// Returns:
	//   - The ID of the newly created category
	//   - ErrNodeNotFound if the parent category does not exist
	//   - ErrDuplicateTitle if a sibling category has the same title
	//   - Other error if the operation fails
	CreateCategory(ctx context.Context, parentID int64, title, description string) (int64, error)

	// CreateFeed stores a new feed. The ID field of feed is ignored.
	// Returns:
	//   - The ID of the newly created feed
	//   - ErrNodeNotFound if the owning category does not exist
	//   - ErrDuplicateTitle if a sibling feed has the same title
	//   - Other error if the operation fails
	CreateFeed(ctx context.Context, feed *FeedRow) (int64, error)

	// GetCategory retrieves a category by its ID.
	// Returns ErrNodeNotFound if no category exists with the given ID.
	GetCategory(ctx context.Context, id int64) (*CategoryRow, error)

	// GetAllCategories retrieves every category row, in storage order.
	GetAllCategories(ctx context.Context) ([]*CategoryRow, error)

	// GetAllFeeds retrieves every feed row, in storage order.
	GetAllFeeds(ctx context.Context) ([]*FeedRow, error)
}

// Common errors
var (
	// ErrNodeNotFound is returned when a requested category does not exist
	ErrNodeNotFound = errors.New("node not found")
	// ErrInvalidInput is returned when the input parameters are invalid
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicateTitle is returned when a sibling of the same kind already has the title
	ErrDuplicateTitle = errors.New("duplicate title")
)
