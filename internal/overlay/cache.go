package overlay

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Rasterizer produces the overlay for one caption string.
type Rasterizer interface {
	Render(text string) (*Overlay, error)
}

// Cache memoizes overlays by exact caption text for one render invocation.
//
// Lookups are safe for concurrent use. Concurrent misses on the same text
// share a single rasterization; misses on different texts proceed in parallel.
// Failed renders are not cached.
type Cache struct {
	rasterizer Rasterizer

	mu      sync.RWMutex
	entries map[string]*Overlay
	group   singleflight.Group

	rasterizations atomic.Int64
}

// NewCache wraps r.
func NewCache(r Rasterizer) *Cache {
	return &Cache{rasterizer: r, entries: make(map[string]*Overlay)}
}

// Get returns the overlay for text, rendering it on first use. Blank text
// has a nil overlay and never reaches the rasterizer.
func (c *Cache) Get(text string) (*Overlay, error) {
	if text == "" {
		return nil, nil
	}
	c.mu.RLock()
	ov, ok := c.entries[text]
	c.mu.RUnlock()
	if ok {
		return ov, nil
	}

	v, err, _ := c.group.Do(text, func() (any, error) {
		c.mu.RLock()
		existing, ok := c.entries[text]
		c.mu.RUnlock()
		if ok {
			return existing, nil
		}
		rendered, err := c.rasterizer.Render(text)
		c.rasterizations.Add(1)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[text] = rendered
		c.mu.Unlock()
		return rendered, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Overlay), nil
}

// Len returns the number of cached captions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Rasterizations returns how many times the rasterizer has been invoked.
func (c *Cache) Rasterizations() int64 {
	return c.rasterizations.Load()
}

// Reset drops every cached overlay.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.entries = make(map[string]*Overlay)
	c.mu.Unlock()
}
