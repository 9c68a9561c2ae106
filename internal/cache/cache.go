package cache

import (
	"sync"
	"time"
)

// Cache is a TTL cache with a coarse invalidation epoch. Any write path can
// call Invalidate once and every entry set before it stops being served,
// which is good enough for a response cache fed by a single mutable table.
type Cache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	epoch uint64
	m     map[string]entry
}

type entry struct {
	val   any
	exp   time.Time
	epoch uint64
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl: ttl,
		m:   make(map[string]entry),
	}
}

func (c *Cache) Get(key string) (any, bool) {
	now := time.Now()
	c.mu.RLock()
	e, ok := c.m[key]
	epoch := c.epoch
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if e.epoch != epoch || now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}

	return e.val, true
}

func (c *Cache) Set(key string, val any) {
	c.mu.Lock()
	c.m[key] = entry{val: val, exp: time.Now().Add(c.ttl), epoch: c.epoch}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

// Invalidate expires everything currently cached without touching the map.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.epoch++
	c.mu.Unlock()
}
