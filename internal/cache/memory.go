package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is a process-local Cache on top of go-cache. Entries expire
// after their TTL; the janitor sweeps on cleanupInterval.
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates a memory cache with the given default TTL
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(defaultTTL, cleanupInterval)}
}

// Get returns the cached bytes for key, if present and unexpired
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.store.Get(key)
	if !found {
		return nil, false
	}
	b, ok := val.([]byte)
	if !ok {
		return nil, false
	}
	return b, true
}

// Set stores value under key for the given TTL
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	c.store.Set(key, value, ttl)
	return nil
}

// Delete drops key from the cache
func (c *MemoryCache) Delete(key string) error {
	c.store.Delete(key)
	return nil
}

// Clear drops every entry
func (c *MemoryCache) Clear() error {
	c.store.Flush()
	return nil
}
