package symbols

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache loads each catalog path at most once for the life of the process.
// Concurrent first calls share one load. There is no invalidation.
type Cache struct {
	group  singleflight.Group
	mu     sync.RWMutex
	loaded map[string]cached
	load   func(path string) (*Catalog, error)
}

type cached struct {
	catalog *Catalog
	err     error
}

// NewCache returns a cache backed by Load.
func NewCache() *Cache {
	return newCacheWithLoader(Load)
}

func newCacheWithLoader(load func(string) (*Catalog, error)) *Cache {
	return &Cache{
		loaded: make(map[string]cached),
		load:   load,
	}
}

// Get returns the catalog for path. When loading failed the returned catalog is
// empty and the load error is returned alongside it on every call, so a
// caller can surface the diagnostic and keep going.
func (c *Cache) Get(path string) (*Catalog, error) {
	c.mu.RLock()
	if hit, ok := c.loaded[path]; ok {
		c.mu.RUnlock()
		return hit.catalog, hit.err
	}
	c.mu.RUnlock()

	v, _, _ := c.group.Do(path, func() (interface{}, error) {
		c.mu.RLock()
		if hit, ok := c.loaded[path]; ok {
			c.mu.RUnlock()
			return hit, nil
		}
		c.mu.RUnlock()

		cat, err := c.load(path)
		if err != nil || cat == nil {
			cat = Empty()
		}
		entry := cached{catalog: cat, err: err}

		c.mu.Lock()
		c.loaded[path] = entry
		c.mu.Unlock()
		return entry, nil
	})

	entry := v.(cached)
	return entry.catalog, entry.err
}
