// Package cache stores rendered JSON responses with an expiry, in Redis when
// configured and in process memory otherwise.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/storage/memory/v2"
	"github.com/gofiber/storage/redis/v3"

	"solardash/internal/config"
)

// Store is the subset of fiber's storage interface the cache needs.
type Store interface {
	GetWithContext(ctx context.Context, key string) ([]byte, error)
	SetWithContext(ctx context.Context, key string, val []byte, exp time.Duration) error
	DeleteWithContext(ctx context.Context, key string) error
	Close() error
}

// Keys of cached responses.
const (
	KeyCompetitorReport = "competitor-tracking:report"
)

// NewStore returns a Redis-backed store when REDIS_URL is set, otherwise an
// in-memory store.
func NewStore(cfg *config.Config) Store {
	if cfg.RedisURL == "" {
		return memory.New()
	}
	return redis.New(redis.Config{URL: cfg.RedisURL})
}

// Cache encodes values as JSON on top of a Store.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// New creates a cache whose entries live for ttl.
func New(store Store, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: store, ttl: ttl, logger: logger}
}

// Get decodes the cached value for key into v. It reports false when the key
// is missing or the entry cannot be decoded.
func (c *Cache) Get(ctx context.Context, key string, v any) bool {
	data, err := c.store.GetWithContext(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
		return false
	}
	if len(data) == 0 {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Warn("cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores v under key. Failures are logged; callers serve uncached data.
func (c *Cache) Set(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.store.SetWithContext(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// Invalidate removes keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := c.store.DeleteWithContext(ctx, key); err != nil {
			c.logger.Warn("cache delete failed", "key", key, "error", err)
		}
	}
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}
