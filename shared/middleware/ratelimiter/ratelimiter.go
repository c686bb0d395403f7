// Package ratelimiter implements fixed-window request counting behind a small
// interface so the in-process store can be swapped for a shared one.
package ratelimiter

import (
	"context"
	"math"
	"sync"
	"time"
)

// Decision is the outcome of a single Check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration // zero when Allowed
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, never below 1 for
// a rejection.
func (d Decision) RetryAfterSeconds() int {
	if d.Allowed {
		return 0
	}
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Limiter counts hits per key inside fixed windows.
type Limiter interface {
	Check(ctx context.Context, key string, max int, window time.Duration) (Decision, error)
}

type bucket struct {
	count   int
	resetAt time.Time
}

// Memory is a single-process Limiter. Buckets reset lazily on the first
// access after their window elapsed; expired buckets are pruned in bulk once
// the map grows past pruneThreshold.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

const pruneThreshold = 10000

var _ Limiter = (*Memory)(nil)

func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{buckets: make(map[string]*bucket), now: now}
}

func (m *Memory) Check(_ context.Context, key string, max int, window time.Duration) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		if !ok && len(m.buckets) >= pruneThreshold {
			m.prune(now)
		}
		m.buckets[key] = &bucket{count: 1, resetAt: now.Add(window)}
		return Decision{Allowed: true}, nil
	}

	if b.count >= max {
		return Decision{Allowed: false, RetryAfter: b.resetAt.Sub(now)}, nil
	}
	b.count++
	return Decision{Allowed: true}, nil
}

// Len reports how many buckets are tracked.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

func (m *Memory) prune(now time.Time) {
	for k, b := range m.buckets {
		if !now.Before(b.resetAt) {
			delete(m.buckets, k)
		}
	}
}
