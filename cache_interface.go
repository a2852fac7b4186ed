package main

import (
	"fmt"
	"os"
	"time"

	"prose-server/internal/cache"
)

// Type aliases for internal/cache types
type CacheBackend = cache.CacheBackend
type CacheConfig = cache.CacheConfig

// DefaultCacheConfig wraps internal/cache.DefaultCacheConfig
func DefaultCacheConfig() CacheConfig {
	return cache.DefaultCacheConfig()
}

// newCacheBackend builds the configured backend. CACHE_BACKEND selects
// memory (default), redis (REDIS_URL) or sqlite (SQLITE_PATH).
func newCacheBackend() (CacheBackend, string, error) {
	switch os.Getenv("CACHE_BACKEND") {
	case "redis":
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			redisURL = "redis://localhost:6379/0"
		}
		backend, err := cache.NewRedisCache(redisURL, "prose:")
		if err != nil {
			return nil, "", fmt.Errorf("redis cache: %w", err)
		}
		return backend, "redis", nil
	case "sqlite":
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "prose-cache.db"
		}
		backend, err := cache.NewSQLiteCache(path)
		if err != nil {
			return nil, "", fmt.Errorf("sqlite cache: %w", err)
		}
		return backend, "sqlite", nil
	default:
		return cache.NewMemoryCache(10000, time.Minute), "memory", nil
	}
}
