package geocode

import (
	"context"
	"sync"
)

// Entry is what the caches store per s2 cell. An unresolved Entry records
// that the cell had no address.
type Entry struct {
	Text     string
	Resolved bool
}

// Cache stores reverse geocoding results by cell key.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, e Entry) error
}

// MemoryCache is a thread-safe in-process cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Entry)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok, nil
}

func (c *MemoryCache) Put(_ context.Context, key string, e Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TieredCache reads through a fast cache in front of a slower one and
// fills the fast cache on slow hits.
type TieredCache struct {
	Fast Cache
	Slow Cache
}

func (t *TieredCache) Get(ctx context.Context, key string) (Entry, bool, error) {
	if e, ok, err := t.Fast.Get(ctx, key); err == nil && ok {
		return e, true, nil
	}
	e, ok, err := t.Slow.Get(ctx, key)
	if err != nil || !ok {
		return Entry{}, false, err
	}
	_ = t.Fast.Put(ctx, key, e)
	return e, true, nil
}

func (t *TieredCache) Put(ctx context.Context, key string, e Entry) error {
	_ = t.Fast.Put(ctx, key, e)
	return t.Slow.Put(ctx, key, e)
}
