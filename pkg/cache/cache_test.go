package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestCache(t *testing.T, ttl time.Duration, maxEntries int) (*TTLCache[string], *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newWithClock[string](ttl, maxEntries, clock.Now, time.Hour)
	t.Cleanup(c.Stop)
	return c, clock
}

func TestSetAndGet(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 0)

	c.Set("a", "1")

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestEntriesExpire(t *testing.T) {
	c, clock := newTestCache(t, time.Minute, 0)
	c.Set("a", "1")

	clock.Advance(59 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.sweep()
	assert.Zero(t, c.Len())
}

func TestSetRefreshesExpiry(t *testing.T) {
	c, clock := newTestCache(t, time.Minute, 0)
	c.Set("a", "1")
	clock.Advance(50 * time.Second)
	c.Set("a", "2")
	clock.Advance(50 * time.Second)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestMaxEntriesEvictsClosestToExpiry(t *testing.T) {
	c, clock := newTestCache(t, time.Minute, 2)

	c.Set("old", "1")
	clock.Advance(time.Second)
	c.Set("new", "2")
	clock.Advance(time.Second)
	c.Set("newest", "3")

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("old")
	assert.False(t, ok)
	_, ok = c.Get("newest")
	assert.True(t, ok)

	// overwriting an existing key never evicts
	c.Set("new", "4")
	assert.Equal(t, 2, c.Len())
}

func TestGetOrSet(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 0)
	calls := 0
	compute := func() (string, error) {
		calls++
		return "rendered", nil
	}

	v, err := c.GetOrSet("k", compute)
	require.NoError(t, err)
	assert.Equal(t, "rendered", v)

	v, err = c.GetOrSet("k", compute)
	require.NoError(t, err)
	assert.Equal(t, "rendered", v)
	assert.Equal(t, 1, calls)
}

func TestGetOrSetDoesNotCacheErrors(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 0)

	_, err := c.GetOrSet("k", func() (string, error) { return "", errors.New("boom") })
	require.EqualError(t, err, "boom")
	assert.Zero(t, c.Len())
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 0)
	c.Set("a", "1")

	c.Delete("a")

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestStopIsIdempotent(t *testing.T) {
	c := New[int](time.Minute, 10)
	c.Stop()
	assert.NotPanics(t, c.Stop)
}

func TestConcurrentAccess(t *testing.T) {
	c, _ := newTestCache(t, time.Minute, 50)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := string(rune('a' + (i+j)%26))
				c.Set(key, key)
				c.Get(key)
				_, _ = c.GetOrSet(key, func() (string, error) { return key, nil })
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 26)
}
