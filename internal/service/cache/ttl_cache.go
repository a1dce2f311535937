package cache

import (
	"sync"
	"time"
)

type entry struct {
	v   Snapshot
	exp time.Time
}

type TTLCache struct {
	mu         sync.RWMutex
	m          map[string]entry
	defaultTTL time.Duration
}

func NewTTLCache(defaultTTL time.Duration) *TTLCache {
	return &TTLCache{m: make(map[string]entry), defaultTTL: defaultTTL}
}

func (c *TTLCache) Get(key string) (Snapshot, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.v, true
}

func (c *TTLCache) Set(key string, v Snapshot) {
	c.SetTTL(key, v, c.defaultTTL)
}

func (c *TTLCache) SetTTL(key string, v Snapshot, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.m[key] = entry{v: v, exp: exp}
	c.mu.Unlock()
}

func (c *TTLCache) Clear() {
	c.mu.Lock()
	c.m = make(map[string]entry)
	c.mu.Unlock()
}

// Size counts unexpired entries without removing expired ones.
func (c *TTLCache) Size() int {
	now := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.m {
		if e.exp.IsZero() || now.Before(e.exp) {
			n++
		}
	}
	return n
}
