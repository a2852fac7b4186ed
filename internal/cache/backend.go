package cache

import (
	"context"
	"time"
)

// CacheBackend is the storage interface shared by the report store, the render
// cache and the per-session feedback store. Implementations: in-memory (default),
// Redis, SQLite.
type CacheBackend interface {
	// Get retrieves a value from the cache.
	// Returns (value, found, error); a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value in the cache with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// GetMultiple retrieves multiple values from the cache.
	// Returns a map of found keys to values.
	GetMultiple(ctx context.Context, keys []string) (map[string][]byte, error)

	// SetMultiple stores multiple values with the given TTL.
	SetMultiple(ctx context.Context, items map[string][]byte, ttl time.Duration) error

	// Close closes the cache connection.
	Close() error
}
