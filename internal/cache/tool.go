package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// FetchFunc performs the external call on a cache miss.
type FetchFunc func(ctx context.Context) ([]byte, error)

type toolEntry struct {
	key      string
	payload  []byte
	inserted time.Time
}

type inflightCall struct {
	done    chan struct{}
	payload []byte
	err     error
}

// ToolCache is the shared memoization layer for external lookups (search
// queries, content fetches). Entries live for a TTL and the entry count is
// bounded: at capacity, insertion evicts the least-recently-used entry.
// Concurrent callers for the same key wait on a single in-flight fetch.
//
// A ToolCache is constructed explicitly and passed by reference into every
// component that performs lookups; its lifetime is the process.
type ToolCache struct {
	mu       sync.Mutex
	ttl      time.Duration
	max      int
	entries  map[string]*list.Element // of *toolEntry
	order    *list.List               // front = most recently used
	inflight map[string]*inflightCall
	backing  Store // optional second layer, may be nil

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewToolCache creates a bounded TTL cache. backing may be nil; when set,
// evicted or expired entries can still be served from it within their TTL.
func NewToolCache(maxEntries int, ttl time.Duration, backing Store) *ToolCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &ToolCache{
		ttl:      ttl,
		max:      maxEntries,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		inflight: make(map[string]*inflightCall),
		backing:  backing,
	}
}

// GetOrFetch returns the cached payload for key if it is younger than the
// TTL; otherwise it invokes fetch, stores the result, and returns it. A
// fetch error propagates unchanged and nothing is stored. While a fetch for
// key is in flight, other callers for the same key block on its outcome
// instead of issuing duplicate external calls.
func (c *ToolCache) GetOrFetch(ctx context.Context, key string, fetch FetchFunc) ([]byte, error) {
	c.mu.Lock()

	if payload, ok := c.lookupLocked(key); ok {
		c.mu.Unlock()
		c.hits.Add(1)
		return payload, nil
	}

	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			if call.err != nil {
				return nil, call.err
			}
			return call.payload, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	call := &inflightCall{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	c.misses.Add(1)
	payload, err := fetch(ctx)

	c.mu.Lock()
	delete(c.inflight, key)
	if err == nil {
		c.insertLocked(key, payload)
	}
	c.mu.Unlock()

	call.payload = payload
	call.err = err
	close(call.done)

	return payload, err
}

// Len returns the current entry count, expired entries included until they
// are looked up or evicted.
func (c *ToolCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit and miss counters.
func (c *ToolCache) Stats() (hits, misses uint64) {
	return c.hits.Load(), c.misses.Load()
}

// Clear empties the cache. In-flight fetches are unaffected.
func (c *ToolCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	if c.backing != nil {
		_ = c.backing.Clear()
	}
}

// lookupLocked returns a fresh payload for key, consulting the backing
// layer on a miss. Expired entries are dropped on sight.
func (c *ToolCache) lookupLocked(key string) ([]byte, bool) {
	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*toolEntry)
		if time.Since(entry.inserted) < c.ttl {
			c.order.MoveToFront(elem)
			return entry.payload, true
		}
		c.removeLocked(elem)
	}

	if c.backing != nil {
		if payload, ok := c.backing.Get(key); ok {
			c.insertLRULocked(key, payload)
			return payload, true
		}
	}

	return nil, false
}

// insertLocked stores a fetched payload in the LRU layer and writes it
// through to the backing layer.
func (c *ToolCache) insertLocked(key string, payload []byte) {
	c.insertLRULocked(key, payload)
	if c.backing != nil {
		_ = c.backing.Set(key, payload, c.ttl)
	}
}

func (c *ToolCache) insertLRULocked(key string, payload []byte) {
	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*toolEntry)
		entry.payload = payload
		entry.inserted = time.Now()
		c.order.MoveToFront(elem)
		return
	}

	if len(c.entries) >= c.max {
		if oldest := c.order.Back(); oldest != nil {
			c.removeLocked(oldest)
		}
	}

	entry := &toolEntry{key: key, payload: payload, inserted: time.Now()}
	c.entries[key] = c.order.PushFront(entry)
}

func (c *ToolCache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*toolEntry)
	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
