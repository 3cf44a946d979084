package content

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryCacheExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	cache := NewMemoryCache(clock)
	ctx := context.Background()

	cache.Put(ctx, "k", []byte("v"), time.Minute)
	if v, ok := cache.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	clock.advance(59 * time.Second)
	if _, ok := cache.Get(ctx, "k"); !ok {
		t.Error("entry expired early")
	}

	clock.advance(time.Second)
	if _, ok := cache.Get(ctx, "k"); ok {
		t.Error("entry should expire at its deadline")
	}
	if cache.Len() != 0 {
		t.Error("expired entry should be evicted on read")
	}
}

func TestMemoryCacheZeroTTL(t *testing.T) {
	cache := NewMemoryCache(nil)
	cache.Put(context.Background(), "k", []byte("v"), 0)
	if _, ok := cache.Get(context.Background(), "k"); ok {
		t.Error("zero TTL should not store")
	}
}
