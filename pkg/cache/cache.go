// Package cache provides a bounded in-memory cache with per entry expiry.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache holds at most maxEntries values. When full, the entry closest to
// expiry is evicted to make room. A background sweeper removes expired
// entries until Stop is called.
type TTLCache[V any] struct {
	mu         sync.RWMutex
	items      map[string]entry[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a cache whose entries live for ttl. maxEntries <= 0 means
// unbounded.
func New[V any](ttl time.Duration, maxEntries int) *TTLCache[V] {
	return newWithClock[V](ttl, maxEntries, time.Now, ttl)
}

func newWithClock[V any](ttl time.Duration, maxEntries int, now func() time.Time, sweepEvery time.Duration) *TTLCache[V] {
	c := &TTLCache[V]{
		items:      make(map[string]entry[V]),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        now,
		stop:       make(chan struct{}),
	}
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}
	go c.sweepLoop(sweepEvery)
	return c
}

func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || !c.now().Before(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *TTLCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.evictLocked()
	}
	c.items[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// GetOrSet returns the cached value for key or computes and stores it.
// compute runs without holding the lock, so two callers missing the same key
// may both compute; the last one stored wins. Errors are not cached.
func (c *TTLCache[V]) GetOrSet(key string, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err := compute()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, v)
	return v, nil
}

func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Len counts stored entries, including expired ones not yet swept
func (c *TTLCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stop ends the background sweeper. It is safe to call more than once.
func (c *TTLCache[V]) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *TTLCache[V]) evictLocked() {
	var (
		victim string
		oldest time.Time
		found  bool
	)
	for k, e := range c.items {
		if !found || e.expiresAt.Before(oldest) {
			victim, oldest, found = k, e.expiresAt, true
		}
	}
	if found {
		delete(c.items, victim)
	}
}

func (c *TTLCache[V]) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *TTLCache[V]) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.items {
		if !now.Before(e.expiresAt) {
			delete(c.items, k)
		}
	}
}
