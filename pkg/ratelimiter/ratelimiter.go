// Package ratelimiter implements an in-memory sliding window limiter keyed by
// namespace and client.
package ratelimiter

import (
	"sync"
	"time"
)

// Policy is the number of requests allowed per window in one namespace
type Policy struct {
	MaxRequests int
	Window      time.Duration
}

type bucketKey struct {
	namespace string
	client    string
}

// RateLimiter tracks request timestamps per namespace and client.
//
//	rl := ratelimiter.New()
//	defer rl.Stop()
//	rl.SetPolicy("conversion", 60, time.Minute)
//
//	if !rl.Allow("conversion", clientIP) {
//	    // 429
//	}
//
// Namespaces without a policy deny every request.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[bucketKey][]time.Time
	policies map[string]Policy
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a limiter and starts its background sweeper
func New() *RateLimiter {
	return newWithClock(time.Now, time.Minute)
}

func newWithClock(now func() time.Time, sweepEvery time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[bucketKey][]time.Time),
		policies: make(map[string]Policy),
		now:      now,
		stop:     make(chan struct{}),
	}
	go rl.sweepLoop(sweepEvery)
	return rl
}

func (rl *RateLimiter) SetPolicy(namespace string, maxRequests int, window time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.policies[namespace] = Policy{MaxRequests: maxRequests, Window: window}
}

// Allow records a request for client and reports whether it fits the policy
func (rl *RateLimiter) Allow(namespace, client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	policy, ok := rl.policies[namespace]
	if !ok {
		return false
	}

	key := bucketKey{namespace: namespace, client: client}
	now := rl.now()
	recent := pruned(rl.requests[key], now.Add(-policy.Window))

	if len(recent) >= policy.MaxRequests {
		rl.requests[key] = recent
		return false
	}
	rl.requests[key] = append(recent, now)
	return true
}

// RetryAfter returns how long until client can make another request, rounded
// up to whole seconds. Zero means a request would be allowed now.
func (rl *RateLimiter) RetryAfter(namespace, client string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	policy, ok := rl.policies[namespace]
	if !ok {
		return 0
	}

	now := rl.now()
	recent := pruned(rl.requests[bucketKey{namespace: namespace, client: client}], now.Add(-policy.Window))
	if len(recent) < policy.MaxRequests {
		return 0
	}

	// recent is in arrival order; the oldest entry frees the next slot
	wait := recent[0].Add(policy.Window).Sub(now)
	if wait <= 0 {
		return 0
	}
	return wait.Truncate(time.Second) + time.Second
}

// Reset forgets every request recorded for client
func (rl *RateLimiter) Reset(namespace, client string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.requests, bucketKey{namespace: namespace, client: client})
}

// Stop ends the background sweeper. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep()
		case <-rl.stop:
			return
		}
	}
}

// sweep drops clients with no request inside their namespace's window
func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, times := range rl.requests {
		policy, ok := rl.policies[key.namespace]
		if !ok {
			delete(rl.requests, key)
			continue
		}
		if recent := pruned(times, now.Add(-policy.Window)); len(recent) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = recent
		}
	}
}

// pruned drops the timestamps at or before cutoff from a sorted slice
func pruned(times []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(times) && !times[i].After(cutoff) {
		i++
	}
	return times[i:]
}

func (rl *RateLimiter) trackedClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.requests)
}
