package cache

import (
	"os"
	"sync"
	"time"

	"github.com/ammiranda/feed_service/models"
)

// DefaultTTL is the lifetime of a cached snapshot unless configured otherwise
const DefaultTTL = 5 * time.Minute

var (
	provider CacheProvider
	once     sync.Once
	mu       sync.RWMutex
)

// CacheProvider defines the interface for cache implementations.
// It caches the serialized snapshot of the feed hierarchy.
type CacheProvider interface {
	// GetTree retrieves the snapshot from cache if available.
	// Returns:
	//   - The cached snapshot
	//   - A boolean indicating whether the snapshot was found and still valid
	GetTree() (*models.NodeView, bool)

	// SetTree stores the snapshot in cache.
	// Parameters:
	//   - tree: The snapshot to cache
	SetTree(tree *models.NodeView)

	// InvalidateCache removes all cached data.
	// It is called whenever the hierarchy is modified.
	InvalidateCache()

	// SetCacheTTL sets the cache time-to-live duration.
	// Parameters:
	//   - ttl: The duration after which cached data should expire
	SetCacheTTL(ttl time.Duration)

	// Initialize performs any necessary setup for the cache provider.
	// This may include establishing connections or creating tables.
	// Returns an error if initialization fails.
	Initialize() error
}

// Initialize sets up the cache provider.
// REDIS_HOST selects Redis, DYNAMODB_CACHE_TABLE selects DynamoDB,
// otherwise snapshots are kept in memory.
func Initialize() error {
	var err error
	once.Do(func() {
		var p CacheProvider
		switch {
		case os.Getenv("REDIS_HOST") != "":
			p = NewRedisCache()
		case os.Getenv("DYNAMODB_CACHE_TABLE") != "":
			p, err = NewDynamoDBCache(os.Getenv("DYNAMODB_CACHE_TABLE"))
			if err != nil {
				return
			}
		default:
			p = NewMemoryCache()
		}
		if err = p.Initialize(); err != nil {
			return
		}
		mu.Lock()
		provider = p
		mu.Unlock()
	})
	return err
}

// GetTree retrieves the snapshot from cache if available
func GetTree() (*models.NodeView, bool) {
	mu.RLock()
	defer mu.RUnlock()
	if provider == nil {
		return nil, false
	}
	return provider.GetTree()
}

// SetTree stores the snapshot in cache
func SetTree(tree *models.NodeView) {
	mu.Lock()
	defer mu.Unlock()
	if provider != nil {
		provider.SetTree(tree)
	}
}

// InvalidateCache removes all cached data
func InvalidateCache() {
	mu.Lock()
	defer mu.Unlock()
	if provider != nil {
		provider.InvalidateCache()
	}
}

// SetCacheTTL sets the cache time-to-live duration
func SetCacheTTL(ttl time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	if provider != nil {
		provider.SetCacheTTL(ttl)
	}
}

// SetProvider allows changing the cache provider at runtime
func SetProvider(p CacheProvider) error {
	mu.Lock()
	defer mu.Unlock()
	if err := p.Initialize(); err != nil {
		return err
	}
	provider = p
	return nil
}

// ResetProvider resets the cache provider for testing
func ResetProvider() {
	mu.Lock()
	defer mu.Unlock()
	provider = nil
	once = sync.Once{}
}
