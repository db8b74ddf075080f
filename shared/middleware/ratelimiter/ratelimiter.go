// Package ratelimiter implements keyed token buckets. Each key (a user id, an
// IP or "global") gets its own bucket; idle buckets are dropped after the
// expiration time.
package ratelimiter

import (
	"sync"
	"time"
)

// bucket is a single token bucket.
type bucket struct {
	tokens     float64
	lastRefill time.Time
	lastSeen   time.Time
}

// UserRateLimiter keeps one bucket per key.
type UserRateLimiter struct {
	mu             sync.Mutex
	buckets        map[string]*bucket
	rate           float64 // tokens per second
	capacity       float64
	expirationTime time.Duration
	lastSweep      time.Time
	now            func() time.Time
}

// New creates a limiter refilling rate tokens per second up to capacity.
func New(rate float64, capacity float64, expirationTime time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		buckets:        make(map[string]*bucket),
		rate:           rate,
		capacity:       capacity,
		expirationTime: expirationTime,
		now:            time.Now,
	}
}

// Allow takes one token from key's bucket if there is one.
func (l *UserRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastRefill: now}
		l.buckets[key] = b
	}
	b.lastSeen = now

	b.tokens += now.Sub(b.lastRefill).Seconds() * l.rate
	if b.tokens > l.capacity {
		b.tokens = l.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// sweep drops idle buckets at most once per expiration period. Caller holds mu.
func (l *UserRateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.expirationTime {
		return
	}
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.expirationTime {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// Size returns the number of tracked keys.
func (l *UserRateLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func OnceInSecond() *UserRateLimiter { return New(1, 1, time.Hour) }
func Rps10() *UserRateLimiter        { return New(10, 10, time.Hour) }
func Rps100() *UserRateLimiter       { return New(100, 100, time.Hour) }
