package cache

import (
	"log"
	"os"
	"time"
)

// Store is the cache abstraction shared by the server-side page cache
// and the client-side mutation synchronizer. Values are treated as
// immutable: Set builds a new value from the old one instead of
// mutating in place, so concurrent readers never observe a torn write.
type Store interface {
	// Get returns the cached value, or (nil, false) if absent/expired.
	Get(key string) (interface{}, bool)
	// Put stores a value. ttl <= 0 means no expiry.
	Put(key string, value interface{}, ttl time.Duration)
	// Set atomically replaces the value under key with update(old).
	// old is nil when the key is absent; returning nil removes the key.
	Set(key string, update func(old interface{}) interface{})
	// Invalidate removes the key so the next read refetches.
	Invalidate(key string)
}

var defaultStore Store

// Init picks the process-wide store: Redis when REDIS_URL (or the given
// addr) is set and reachable, an in-process LRU otherwise.
func Init(addr string) {
	if addr == "" {
		addr = os.Getenv("REDIS_URL")
	}
	if addr != "" {
		if rs := NewRedisStore(addr); rs != nil {
			defaultStore = rs
			return
		}
	}
	ms, err := NewMemoryStore(500)
	if err != nil {
		log.Fatalf("Failed to create cache store: %v", err)
	}
	defaultStore = ms
}

// Default returns the process-wide store, initializing a memory store
// on first use if Init was never called.
func Default() Store {
	if defaultStore == nil {
		Init("")
	}
	return defaultStore
}
