package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is a TTL-based in-memory byte store. It serves as the default
// backing layer under the ToolCache: entries evicted from the bounded LRU
// layer can still be promoted back from here until their TTL passes.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a memory store with the given default TTL.
func NewMemoryStore(defaultTTL, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from the store.
func (s *MemoryStore) Get(key string) ([]byte, bool) {
	if val, found := s.cache.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores a value with the given TTL (0 = default TTL).
func (s *MemoryStore) Set(key string, value []byte, ttl time.Duration) error {
	s.cache.Set(key, value, ttl)
	return nil
}

// Delete removes a value from the store.
func (s *MemoryStore) Delete(key string) error {
	s.cache.Delete(key)
	return nil
}

// Clear removes all values from the store.
func (s *MemoryStore) Clear() error {
	s.cache.Flush()
	return nil
}
