// Package scorecache holds per-document rerank scores in a concurrent,
// size- and TTL-bounded map. Entries are advisory: losing one changes
// latency, never correctness.
package scorecache

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache is a fixed-capacity score cache with per-entry expiry.
// Entries are immutable once written; eviction is the only mutation.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	capacity   int
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	now        func() time.Time
}

type entry struct {
	score     float64
	expiresAt time.Time
}

// New creates a cache. cacheTotal is a counter vec with label "result"
// ("hit"/"miss"), passed explicitly; nil disables metrics.
func New(capacity int, ttl time.Duration, cacheTotal *prometheus.CounterVec) *Cache {
	return &Cache{
		entries:    make(map[string]entry, capacity),
		capacity:   capacity,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		now:        time.Now,
	}
}

// Get returns a cached score if present and unexpired.
func (c *Cache) Get(key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.inc("miss")
		return 0, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		c.inc("miss")
		return 0, false
	}
	c.inc("hit")
	return e.score, true
}

// Put stores a score, evicting expired entries first and then the entry
// closest to expiry if the cache is still full.
func (c *Cache) Put(key string, score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictLocked()
	}
	c.entries[key] = entry{score: score, expiresAt: c.now().Add(c.ttl)}
}

// Len returns the number of live entries (expired ones included until evicted).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked removes all expired entries; if none were expired, the entry
// closest to expiry goes. Linear scan is fine at the bounded sizes used here.
func (c *Cache) evictLocked() {
	now := c.now()
	removed := false
	var oldestKey string
	var oldestAt time.Time

	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			removed = true
			continue
		}
		if oldestKey == "" || e.expiresAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.expiresAt
		}
	}

	if !removed && oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *Cache) inc(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
