package product

import (
	"sync"
	"time"
)

// DefaultTTL is how long the full product list is served without refetching.
const DefaultTTL = 60 * time.Second

// Clock returns the current time; tests inject a fake one.
type Clock func() time.Time

// Cache holds the last full product list and when it was fetched. It is safe
// for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     Clock
	items   []Product
	fetched time.Time
	valid   bool
	gen     uint64
}

func NewCache(ttl time.Duration, now Clock) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{ttl: ttl, now: now}
}

// Get returns the cached list if it is younger than the TTL.
func (c *Cache) Get() ([]Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid || c.now().Sub(c.fetched) >= c.ttl {
		return nil, false
	}
	return c.items, true
}

// Generation changes on every Invalidate. Take it before fetching and hand
// it to Put.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// Put replaces the list wholesale and stamps it with the current time. A list
// fetched under an older generation is discarded and Put reports false.
func (c *Cache) Put(items []Product, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.items = items
	c.fetched = c.now()
	c.valid = true
	return true
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.fetched = time.Time{}
	c.valid = false
	c.gen++
}
