package cache

import (
	"sync"
	"time"

	"github.com/ammiranda/feed_service/models"
)

// MemoryCache implements CacheProvider using in-memory storage
type MemoryCache struct {
	mu     sync.RWMutex
	tree   *models.NodeView
	ttl    time.Duration
	expiry time.Time
}

// NewMemoryCache creates a new in-memory cache provider
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{ttl: DefaultTTL}
}

// Initialize performs any necessary setup for the cache provider
func (c *MemoryCache) Initialize() error {
	return nil
}

// GetTree retrieves the snapshot from cache if available
func (c *MemoryCache) GetTree() (*models.NodeView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.tree == nil || time.Now().After(c.expiry) {
		return nil, false
	}
	return c.tree, true
}

// SetTree stores the snapshot in cache
func (c *MemoryCache) SetTree(tree *models.NodeView) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tree = tree
	c.expiry = time.Now().Add(c.ttl)
}

// InvalidateCache removes all cached data
func (c *MemoryCache) InvalidateCache() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tree = nil
	c.expiry = time.Time{}
}

// SetCacheTTL sets the cache time-to-live duration
func (c *MemoryCache) SetCacheTTL(ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ttl = ttl
	// Existing entries get the new lifetime from now on
	if c.tree != nil {
		c.expiry = time.Now().Add(ttl)
	}
}
