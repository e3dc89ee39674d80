// Package ratelimiter implements per-key token buckets that forget idle keys.
package ratelimiter

import (
	"sync"
	"time"
)

// bucket is a single token bucket.
type bucket struct {
	tokens     float64
	capacity   float64
	rate       float64
	lastRefill time.Time
	mu         sync.Mutex
	timer      *time.Timer
	key        string
	parent     *KeyedLimiter
}

// KeyedLimiter keeps one bucket per key (client IP, contact value, "global").
// A bucket unused for idleTTL is dropped and starts full on next use.
type KeyedLimiter struct {
	buckets  map[string]*bucket
	mu       sync.RWMutex
	rate     float64
	capacity float64
	idleTTL  time.Duration
	now      func() time.Time
}

// New creates a limiter that refills rate tokens per second up to capacity.
func New(rate float64, capacity float64, idleTTL time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// PerMinute allows n requests per minute per key with a burst of n.
func PerMinute(n int) *KeyedLimiter {
	return New(float64(n)/60, float64(n), time.Hour)
}

func (l *KeyedLimiter) forget(key string) {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
}

func (b *bucket) touch() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.parent.idleTTL, func() {
		b.parent.forget(b.key)
	})
}

func (l *KeyedLimiter) get(key string) *bucket {
	l.mu.RLock()
	b, ok := l.buckets[key]
	l.mu.RUnlock()
	if ok {
		b.touch()
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok = l.buckets[key]; ok {
		b.touch()
		return b
	}
	b = &bucket{
		tokens:     l.capacity,
		capacity:   l.capacity,
		rate:       l.rate,
		lastRefill: l.now(),
		key:        key,
		parent:     l,
	}
	l.buckets[key] = b
	b.touch()
	return b
}

func (b *bucket) take(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens += now.Sub(b.lastRefill).Seconds() * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Allow takes a token from key's bucket.
func (l *KeyedLimiter) Allow(key string) bool {
	return l.get(key).take(l.now())
}

// Len is the number of tracked keys.
func (l *KeyedLimiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// Stop cancels all idle timers.
func (l *KeyedLimiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.buckets {
		b.mu.Lock()
		if b.timer != nil {
			b.timer.Stop()
		}
		b.mu.Unlock()
	}
}
