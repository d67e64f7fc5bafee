package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ammiranda/feed_service/logger"
	"github.com/ammiranda/feed_service/models"

	"github.com/redis/go-redis/v9"
)

const redisTreeKey = "feeds:tree"

// RedisCache implements CacheProvider using Redis
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisCache creates a new Redis cache provider from REDIS_HOST and REDIS_PORT
func NewRedisCache() *RedisCache {
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost"
	}
	redisPort := os.Getenv("REDIS_PORT")
	if redisPort == "" {
		redisPort = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", redisHost, redisPort),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	return NewRedisCacheWithClient(client)
}

// NewRedisCacheWithClient creates a Redis cache provider with a custom client
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    DefaultTTL,
		log:    logger.New().WithComponent("redis_cache"),
	}
}

// Initialize checks that Redis is reachable
func (c *RedisCache) Initialize() error {
	ctx := context.Background()
	_, err := c.client.Ping(ctx).Result()
	return err
}

// GetTree retrieves the snapshot from cache if available
func (c *RedisCache) GetTree() (*models.NodeView, bool) {
	ctx := context.Background()
	data, err := c.client.Get(ctx, redisTreeKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Error(err, "error reading tree from redis")
		}
		return nil, false
	}

	var tree models.NodeView
	if err := json.Unmarshal(data, &tree); err != nil {
		c.log.Error(err, "error decoding cached tree")
		return nil, false
	}
	return &tree, true
}

// SetTree stores the snapshot in cache
func (c *RedisCache) SetTree(tree *models.NodeView) {
	ctx := context.Background()
	data, err := json.Marshal(tree)
	if err != nil {
		c.log.Error(err, "error encoding tree for redis")
		return
	}

	if err := c.client.Set(ctx, redisTreeKey, data, c.ttl).Err(); err != nil {
		c.log.Error(err, "error writing tree to redis")
	}
}

// InvalidateCache removes the snapshot from cache
func (c *RedisCache) InvalidateCache() {
	ctx := context.Background()
	if err := c.client.Del(ctx, redisTreeKey).Err(); err != nil {
		c.log.Error(err, "error invalidating redis cache")
	}
}

// SetCacheTTL sets the cache time-to-live duration
func (c *RedisCache) SetCacheTTL(ttl time.Duration) {
	c.ttl = ttl
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
