package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ammiranda/feed_service/models"
)

// MockRepository implements Repository in memory for tests and the memory driver
type MockRepository struct {
	mu         sync.RWMutex
	categories map[int64]*CategoryRow
	feeds      map[int64]*FeedRow
	nextID     int64

	// FailQueries makes GetAllCategories and GetAllFeeds fail
	FailQueries bool
	// FailInserts makes CreateCategory and CreateFeed fail
	FailInserts bool
}

// ErrMockFailure is returned by a MockRepository configured to fail
var ErrMockFailure = errors.New("mock repository failure")

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		categories: make(map[int64]*CategoryRow),
		feeds:      make(map[int64]*FeedRow),
	}
}

// Initialize performs any necessary setup
func (m *MockRepository) Initialize(ctx context.Context) error {
	return nil
}

// Cleanup drops all stored rows
func (m *MockRepository) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = make(map[int64]*CategoryRow)
	m.feeds = make(map[int64]*FeedRow)
	m.nextID = 0
	return nil
}

// SeedCategory stores a category row verbatim, bypassing every check.
// It lets tests reproduce arbitrary storage contents.
func (m *MockRepository) SeedCategory(row CategoryRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories[row.ID] = &row
	if row.ID > m.nextID {
		m.nextID = row.ID
	}
}

// SeedFeed stores a feed row verbatim, bypassing every check.
func (m *MockRepository) SeedFeed(row FeedRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feeds[row.ID] = &row
	if row.ID > m.nextID {
		m.nextID = row.ID
	}
}

// CreateCategory creates a new category
func (m *MockRepository) CreateCategory(ctx context.Context, parentID int64, title, description string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailInserts {
		return 0, ErrMockFailure
	}
	if title == "" {
		return 0, ErrInvalidInput
	}
	if parentID != models.NoParentID {
		if _, ok := m.categories[parentID]; !ok {
			return 0, ErrNodeNotFound
		}
	}
	for _, c := range m.categories {
		if c.ParentID == parentID && c.Title == title {
			return 0, ErrDuplicateTitle
		}
	}

	m.nextID++
	m.categories[m.nextID] = &CategoryRow{
		ID:          m.nextID,
		ParentID:    parentID,
		Title:       title,
		Description: description,
	}
	return m.nextID, nil
}

// CreateFeed creates a new feed
func (m *MockRepository) CreateFeed(ctx context.Context, feed *FeedRow) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailInserts {
		return 0, ErrMockFailure
	}
	if feed == nil || feed.Title == "" {
		return 0, ErrInvalidInput
	}
	if feed.ParentID != models.NoParentID {
		if _, ok := m.categories[feed.ParentID]; !ok {
			return 0, ErrNodeNotFound
		}
	}
	for _, f := range m.feeds {
		if f.ParentID == feed.ParentID && f.Title == feed.Title {
			return 0, ErrDuplicateTitle
		}
	}

	m.nextID++
	row := *feed
	row.ID = m.nextID
	m.feeds[row.ID] = &row
	return row.ID, nil
}

// GetCategory retrieves a category by ID
func (m *MockRepository) GetCategory(ctx context.Context, id int64) (*CategoryRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.categories[id]
	if !ok {
		return nil, ErrNodeNotFound
	}
	c := *row
	return &c, nil
}

// GetAllCategories returns copies of all categories ordered by ID
func (m *MockRepository) GetAllCategories(ctx context.Context) ([]*CategoryRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailQueries {
		return nil, ErrMockFailure
	}
	result := make([]*CategoryRow, 0, len(m.categories))
	for _, row := range m.categories {
		c := *row
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// GetAllFeeds returns copies of all feeds ordered by ID
func (m *MockRepository) GetAllFeeds(ctx context.Context) ([]*FeedRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailQueries {
		return nil, ErrMockFailure
	}
	result := make([]*FeedRow, 0, len(m.feeds))
	for _, row := range m.feeds {
		f := *row
		result = append(result, &f)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}
