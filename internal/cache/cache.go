// Package cache is a Redis read-through layer for hot suppression lookups.
// Values are opaque bytes owned by the caller; a degraded Redis never
// surfaces an error, it just means every lookup goes to storage.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/homegate/notify-pipeline/internal/pkg/logger"
)

// Cache wraps a Redis client with TTL'd byte-value operations.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects a cache to Redis. The connection is lazy; a wrong address
// shows up as misses and warnings, not a startup failure.
func New(addr, password string, db int, ttl time.Duration) *Cache {
	return &Cache{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

// NewWithClient wraps an existing Redis client, for tests.
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached bytes for key. A miss and a Redis failure look the
// same to the caller.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("cache read failed", "key", key, "error", err.Error())
		return nil, false
	}
	return raw, true
}

// Set stores value under key for the configured TTL, best effort.
func (c *Cache) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		logger.Warn("cache write failed", "key", key, "error", err.Error())
	}
}

// Invalidate drops key, best effort.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		logger.Warn("cache invalidation failed", "key", key, "error", err.Error())
	}
}

// Close releases the underlying connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}
