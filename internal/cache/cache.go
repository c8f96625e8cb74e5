// Package cache provides the injected TTL cache abstraction used by the
// boundary collaborators (odds, standings, form lookups). The modeling core
// never touches it; keeping lookups behind this interface keeps the pipeline
// testable and parallel-safe.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store is the narrow cache contract injected into boundary services.
type Store interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
	Expire(key string)
	Flush()
}

// TTLCache implements Store on top of patrickmn/go-cache.
type TTLCache struct {
	inner *gocache.Cache
}

// NewTTLCache creates a cache with the given default TTL. Expired entries are
// purged at twice the TTL.
func NewTTLCache(defaultTTL time.Duration) *TTLCache {
	return &TTLCache{inner: gocache.New(defaultTTL, defaultTTL*2)}
}

// Get retrieves a value when present and unexpired.
func (c *TTLCache) Get(key string) (interface{}, bool) {
	return c.inner.Get(key)
}

// Set stores a value. A zero ttl uses the cache default.
func (c *TTLCache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		c.inner.SetDefault(key, value)
		return
	}
	c.inner.Set(key, value, ttl)
}

// Expire removes a key immediately.
func (c *TTLCache) Expire(key string) {
	c.inner.Delete(key)
}

// Flush removes every entry.
func (c *TTLCache) Flush() {
	c.inner.Flush()
}
