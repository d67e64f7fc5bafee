package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ammiranda/feed_service/config"
	"github.com/ammiranda/feed_service/events"
	"github.com/ammiranda/feed_service/models"
	"github.com/ammiranda/feed_service/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrapMemory(t *testing.T) {
	feedsPath := filepath.Join(t.TempDir(), "initial.opml")
	require.NoError(t, os.WriteFile(feedsPath, []byte(`<opml version="2.0"><head/><body>
		<outline text="News"><outline text="World" xmlUrl="https://example.com/world.xml"/></outline>
	</body></opml>`), 0o600))

	provider := &config.MapProvider{Values: map[string]string{
		"STORAGE_DRIVER":     config.DriverMemory,
		"INITIAL_FEEDS_PATH": feedsPath,
		"LOG_LEVEL":          "error",
	}}

	ctx := context.Background()
	a, err := BootstrapWithProvider(ctx, provider)
	require.NoError(t, err)
	defer a.Close(ctx)

	assert.IsType(t, &repository.MockRepository{}, a.Repo)
	assert.IsType(t, events.NoopPublisher{}, a.Publisher)

	require.NoError(t, a.Load(ctx))
	categories, feeds := a.Service.Counts()
	assert.Equal(t, 1, categories)
	assert.Equal(t, 1, feeds)
}

func TestBootstrapSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "feeds.db")
	provider := &config.MapProvider{Values: map[string]string{
		"STORAGE_DRIVER": config.DriverSQLite,
		"SQLITE_PATH":    dbPath,
	}}

	ctx := context.Background()
	a, err := BootstrapWithProvider(ctx, provider)
	require.NoError(t, err)

	require.NoError(t, a.Load(ctx))
	_, err = a.Service.AddCategory(ctx, models.NoParentID, "Tech", "")
	require.NoError(t, err)
	a.Close(ctx)

	// A second process sees the persisted category
	b, err := BootstrapWithProvider(ctx, provider)
	require.NoError(t, err)
	defer b.Close(ctx)
	require.NoError(t, b.Load(ctx))

	categories, _ := b.Service.Counts()
	assert.Equal(t, 1, categories)
}

func TestBootstrapInvalidConfig(t *testing.T) {
	provider := &config.MapProvider{Values: map[string]string{"STORAGE_DRIVER": "cassandra"}}
	_, err := BootstrapWithProvider(context.Background(), provider)
	assert.Error(t, err)
}
