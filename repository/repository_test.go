package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ammiranda/feed_service/config"
	"github.com/ammiranda/feed_service/migrations"
	"github.com/ammiranda/feed_service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockRepository(t *testing.T) {
	repo := NewMockRepository()
	require.NoError(t, repo.Initialize(context.Background()))
	defer repo.Cleanup(context.Background())

	testRepository(t, repo)
}

func TestSQLiteRepository(t *testing.T) {
	repo := NewSQLiteRepository(filepath.Join(t.TempDir(), "feeds.db"))
	require.NoError(t, repo.Initialize(context.Background()))
	defer repo.Cleanup(context.Background())

	testRepository(t, repo)

	version, dirty, err := migrations.Version(repo.DB(), repo.Dialect())
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)
}

func TestSQLiteRepositoryReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.db")
	ctx := context.Background()

	first := NewSQLiteRepository(path)
	require.NoError(t, first.Initialize(ctx))
	_, err := first.CreateCategory(ctx, models.NoParentID, "Tech", "")
	require.NoError(t, err)
	require.NoError(t, first.Cleanup(ctx))

	// Migrations are idempotent and rows survive
	second := NewSQLiteRepository(path)
	require.NoError(t, second.Initialize(ctx))
	defer second.Cleanup(ctx)

	rows, err := second.GetAllCategories(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Tech", rows[0].Title)
}

func testRepository(t *testing.T, repo Repository) {
	ctx := context.Background()

	techID, err := repo.CreateCategory(ctx, models.NoParentID, "Tech", "Technology")
	require.NoError(t, err)
	assert.Greater(t, techID, int64(0))

	goID, err := repo.CreateCategory(ctx, techID, "Go", "")
	require.NoError(t, err)

	category, err := repo.GetCategory(ctx, goID)
	require.NoError(t, err)
	assert.Equal(t, techID, category.ParentID)
	assert.Equal(t, "Go", category.Title)

	_, err = repo.GetCategory(ctx, 999)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	// Same title under a different parent is fine, under the same parent it is not
	_, err = repo.CreateCategory(ctx, models.NoParentID, "Go", "")
	require.NoError(t, err)
	_, err = repo.CreateCategory(ctx, techID, "Go", "")
	assert.ErrorIs(t, err, ErrDuplicateTitle)

	_, err = repo.CreateCategory(ctx, 999, "Orphan", "")
	assert.ErrorIs(t, err, ErrNodeNotFound)
	_, err = repo.CreateCategory(ctx, models.NoParentID, "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	feed := &FeedRow{
		ParentID: goID,
		Title:    "Go Blog",
		URL:      "https://go.dev/blog/feed.atom",
		Encoding: "UTF-8",
		Type:     int(models.FeedTypeAtom10),
	}
	feedID, err := repo.CreateFeed(ctx, feed)
	require.NoError(t, err)
	assert.Greater(t, feedID, int64(0))

	_, err = repo.CreateFeed(ctx, &FeedRow{ParentID: models.NoParentID, Title: "Top", URL: "https://example.com/top.xml", Type: int(models.FeedTypeRss2X)})
	require.NoError(t, err)

	_, err = repo.CreateFeed(ctx, feed)
	assert.ErrorIs(t, err, ErrDuplicateTitle)
	_, err = repo.CreateFeed(ctx, &FeedRow{ParentID: 999, Title: "Lost"})
	assert.ErrorIs(t, err, ErrNodeNotFound)
	_, err = repo.CreateFeed(ctx, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	categories, err := repo.GetAllCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 3)

	feeds, err := repo.GetAllFeeds(ctx)
	require.NoError(t, err)
	require.Len(t, feeds, 2)
	assert.Equal(t, feedID, feeds[0].ID)
	assert.Equal(t, goID, feeds[0].ParentID)
	assert.Equal(t, "UTF-8", feeds[0].Encoding)
	assert.Equal(t, int(models.FeedTypeAtom10), feeds[0].Type)
	assert.Equal(t, models.NoParentID, feeds[1].ParentID)
}

func TestMockRepositoryFailures(t *testing.T) {
	ctx := context.Background()
	repo := NewMockRepository()

	repo.FailInserts = true
	_, err := repo.CreateCategory(ctx, models.NoParentID, "Tech", "")
	assert.ErrorIs(t, err, ErrMockFailure)

	repo.FailQueries = true
	_, err = repo.GetAllCategories(ctx)
	assert.ErrorIs(t, err, ErrMockFailure)
	_, err = repo.GetAllFeeds(ctx)
	assert.ErrorIs(t, err, ErrMockFailure)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	repo, err := Open(ctx, &config.AppConfig{StorageDriver: config.DriverMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MockRepository{}, repo)

	repo, err = Open(ctx, &config.AppConfig{StorageDriver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "feeds.db")}, nil)
	require.NoError(t, err)
	defer repo.Cleanup(ctx)
	_, isSQL := repo.(SQLRepository)
	assert.True(t, isSQL)

	_, err = Open(ctx, &config.AppConfig{StorageDriver: "cassandra"}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	// Postgres settings are required
	_, err = Open(ctx, &config.AppConfig{StorageDriver: config.DriverPostgres}, &config.MapProvider{})
	assert.Error(t, err)
}
