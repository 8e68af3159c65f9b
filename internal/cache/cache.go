package cache

import (
	"context"
	"sync"
	"time"
)

// Backend stores opaque values under string keys.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
	Delete(ctx context.Context, key string) error
}

// Cache is an in-process Backend. Expired entries are dropped lazily on read.
type Cache struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
	now func() time.Time
}

type entry struct {
	val []byte
	exp time.Time
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl: ttl,
		m:   make(map[string]entry),
		now: time.Now,
	}
}

func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false, nil
	}

	return e.val, true, nil
}

func (c *Cache) Set(_ context.Context, key string, val []byte) error {
	c.mu.Lock()
	c.m[key] = entry{val: val, exp: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
	return nil
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
