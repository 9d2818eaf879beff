package storage

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultCacheMaxSize = 512
	defaultCacheTTL     = 5 * time.Minute
)

// cacheEntry holds a cached value along with the timestamp it was stored.
type cacheEntry[V any] struct {
	value    V
	storedAt time.Time
}

// TTLCache is an LRU cache whose entries also expire after a fixed TTL.
// Two concurrent misses for the same key may both compute and store;
// the last write wins. That race is accepted because cached values are
// pure functions of their key.
type TTLCache[V any] struct {
	cache *lru.Cache[string, cacheEntry[V]]
	ttl   time.Duration
}

// NewTTLCache builds a cache with the given capacity and TTL; zero
// values fall back to defaults.
func NewTTLCache[V any](maxSize int, ttl time.Duration) *TTLCache[V] {
	if maxSize <= 0 {
		maxSize = defaultCacheMaxSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	// lru.New only errors on non-positive size which we guard above.
	cache, _ := lru.New[string, cacheEntry[V]](maxSize)
	return &TTLCache[V]{
		cache: cache,
		ttl:   ttl,
	}
}

// Get returns the live entry for key, evicting it first if expired.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V
	entry, ok := c.cache.Get(key)
	if !ok {
		return zero, false
	}
	if time.Since(entry.storedAt) >= c.ttl {
		// Expired — evict so the LRU bookkeeping stays clean.
		c.cache.Remove(key)
		return zero, false
	}
	return entry.value, true
}

// Put stores value under key with a fresh TTL stamp.
func (c *TTLCache[V]) Put(key string, value V) {
	c.cache.Add(key, cacheEntry[V]{value: value, storedAt: time.Now()})
}

// Evict removes a single key.
func (c *TTLCache[V]) Evict(key string) {
	c.cache.Remove(key)
}

// Sweep walks all keys and drops expired entries, returning the count.
func (c *TTLCache[V]) Sweep() int {
	removed := 0
	for _, key := range c.cache.Keys() {
		if entry, ok := c.cache.Peek(key); ok && time.Since(entry.storedAt) >= c.ttl {
			c.cache.Remove(key)
			removed++
		}
	}
	return removed
}

// Len reports the number of entries currently held, expired or not.
func (c *TTLCache[V]) Len() int {
	return c.cache.Len()
}
