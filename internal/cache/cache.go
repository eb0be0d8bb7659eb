package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Store is the byte-payload interface implemented by the backing cache
// layers (memory, disk).
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a stable cache key for a tool request. The kind prefix keeps
// the search and fetch namespaces apart so a query string can never collide
// with a URL.
func Key(kind, value string) string {
	hash := sha256.Sum256([]byte(kind + "\x00" + value))
	return "veritas:v1:" + kind + ":" + hex.EncodeToString(hash[:])
}
