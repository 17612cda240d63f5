package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// item wraps cached data with its expiry
type item struct {
	data      interface{}
	expiresAt time.Time // zero means no expiry
}

// MemoryStore is an in-process LRU store with per-entry TTL.
type MemoryStore struct {
	mu  sync.Mutex
	lru *lru.Cache[string, item]
}

func NewMemoryStore(size int) (*MemoryStore, error) {
	l, err := lru.New[string, item](size)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{lru: l}, nil
}

func (s *MemoryStore) Get(key string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.lru.Get(key)
	if !ok {
		return nil, false
	}
	if !val.expiresAt.IsZero() && time.Now().After(val.expiresAt) {
		s.lru.Remove(key)
		return nil, false
	}
	return val.data, true
}

func (s *MemoryStore) Put(key string, value interface{}, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, value, ttl)
}

func (s *MemoryStore) put(key string, value interface{}, ttl time.Duration) {
	it := item{data: value}
	if ttl > 0 {
		it.expiresAt = time.Now().Add(ttl)
	}
	s.lru.Add(key, it)
}

func (s *MemoryStore) Set(key string, update func(old interface{}) interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var old interface{}
	var expiresAt time.Time
	if val, ok := s.lru.Get(key); ok {
		if val.expiresAt.IsZero() || time.Now().Before(val.expiresAt) {
			old = val.data
			expiresAt = val.expiresAt
		}
	}

	next := update(old)
	if next == nil {
		s.lru.Remove(key)
		return
	}
	// Keep the remaining TTL of the entry being replaced
	s.lru.Add(key, item{data: next, expiresAt: expiresAt})
}

func (s *MemoryStore) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Remove(key)
}
