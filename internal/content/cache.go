package content

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL bounds how long a fetched response is reused.
const DefaultTTL = 5 * time.Minute

// Cache memoizes raw response bodies keyed by URL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Clock is the time source of MemoryCache.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type cacheEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is a process-local Cache with per-entry expiry.
type MemoryCache struct {
	mu      sync.Mutex
	clock   Clock
	entries map[string]cacheEntry
}

// NewMemoryCache creates an empty cache. A nil clock uses wall time.
func NewMemoryCache(clock Clock) *MemoryCache {
	if clock == nil {
		clock = systemClock{}
	}
	return &MemoryCache{clock: clock, entries: make(map[string]cacheEntry)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !c.clock.Now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *MemoryCache) Put(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expires: c.clock.Now().Add(ttl)}
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) ([]byte, bool)            { return nil, false }
func (nopCache) Put(context.Context, string, []byte, time.Duration) {}
