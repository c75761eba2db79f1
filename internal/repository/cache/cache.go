// Package cache implements the Response Cache: a thin TTL'd KV wrapper
// over the shared Redis facade, with pattern-based invalidation. Key
// canonicalization happens upstream in internal/usecase/search and
// internal/usecase/facets — this package only stores and retrieves
// opaque byte payloads under whatever key it is given.
package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalog-search-gateway/internal/db"
	"github.com/kailas-cloud/catalog-search-gateway/internal/logger"
)

// Store is the KV dependency the cache is built on.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Cache is the Response Cache. Failures are absorbed: a Get failure is
// treated as a miss, a Set/Delete failure is logged and swallowed —
// cache unavailability never surfaces to a client. Calls are not
// wrapped in a circuit breaker.
//
// Stampede control (single-flight on concurrent misses for the same
// key) is intentionally not implemented; the basic design tolerates
// a thundering herd on cache expiry rather than add per-key locking.
type Cache struct {
	store Store
}

// New creates a Cache.
func New(store Store) *Cache {
	return &Cache{store: store}
}

// Get returns the cached value, or (nil, false) on miss or any error.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			logger.FromContext(ctx).Warn("cache get failed, treating as miss", zap.Error(err), zap.String("key", key))
		}
		return nil, false
	}
	return value, true
}

// Set stores value under key with the given TTL. Errors are logged and
// swallowed.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.store.SetWithTTL(ctx, key, value, ttl); err != nil {
		logger.FromContext(ctx).Warn("cache set failed", zap.Error(err), zap.String("key", key))
	}
}

// Delete removes a single key. Errors are logged and swallowed.
func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.store.Del(ctx, key); err != nil {
		logger.FromContext(ctx).Warn("cache delete failed", zap.Error(err), zap.String("key", key))
	}
}

// DeletePattern removes every key matching pattern (e.g. "search:*"),
// scanning then deleting — there is no atomic pattern-delete primitive
// in the underlying store.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) {
	keys, err := c.store.Scan(ctx, pattern)
	if err != nil {
		logger.FromContext(ctx).Warn("cache scan failed", zap.Error(err), zap.String("pattern", pattern))
		return
	}
	for _, key := range keys {
		c.Delete(ctx, key)
	}
}
