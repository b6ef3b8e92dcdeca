package repotest

import (
	"context"
	"sync"

	"stockwise/internal/cache"
)

// Cache is a map-backed cache.ProductCache that records invalidations.
type Cache struct {
	mu          sync.Mutex
	entries     map[uint]cache.ProductLookup
	Invalidated []uint
}

var _ cache.ProductCache = (*Cache)(nil)

func NewCache() *Cache {
	return &Cache{entries: make(map[uint]cache.ProductLookup)}
}

func (c *Cache) Get(_ context.Context, id uint) (*cache.ProductLookup, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[id]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (c *Cache) Set(_ context.Context, id uint, v *cache.ProductLookup) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = *v
	return nil
}

func (c *Cache) Invalidate(_ context.Context, ids ...uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.entries, id)
		c.Invalidated = append(c.Invalidated, id)
	}
	return nil
}

// Has reports whether id is currently cached.
func (c *Cache) Has(id uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	return ok
}
