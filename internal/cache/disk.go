package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskStore persists cache entries across runs. It is an optional backing
// layer for the ToolCache; the in-memory contract stays authoritative.
type DiskStore struct {
	dir string
	ttl time.Duration
}

// NewDiskStore creates a disk store rooted at dir.
func NewDiskStore(dir string, ttl time.Duration) *DiskStore {
	return &DiskStore{dir: dir, ttl: ttl}
}

type diskEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get retrieves a value, removing it if the TTL has passed.
func (s *DiskStore) Get(key string) ([]byte, bool) {
	path := s.path(key)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}

	return entry.Data, true
}

// Set stores a value with the given TTL (0 = default TTL).
func (s *DiskStore) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = s.ttl
	}

	entry := diskEntry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	return nil
}

// Delete removes a value from the store.
func (s *DiskStore) Delete(key string) error {
	return os.Remove(s.path(key))
}

// Clear removes all cached files.
func (s *DiskStore) Clear() error {
	return os.RemoveAll(s.dir)
}

func (s *DiskStore) path(key string) string {
	// Keys come pre-hashed from Key(); colons are flattened for portability.
	name := strings.ReplaceAll(key, ":", "_")
	return filepath.Join(s.dir, name+".cache")
}
