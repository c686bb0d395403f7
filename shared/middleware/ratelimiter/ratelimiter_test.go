package ratelimiter

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func TestMemory_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("fixed window allows max then rejects", func(t *testing.T) {
		clock := newClock()
		rl := NewMemoryWithClock(clock.Now)

		var got []bool
		for i := 0; i < 4; i++ {
			d, err := rl.Check(ctx, "prayer:1.2.3.4", 3, time.Minute)
			require.NoError(t, err)
			got = append(got, d.Allowed)
		}
		assert.Equal(t, []bool{true, true, true, false}, got)

		clock.Advance(time.Minute)
		d, err := rl.Check(ctx, "prayer:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, d.Allowed, "window elapsed, bucket should reset")
	})

	t.Run("retry after is rounded up", func(t *testing.T) {
		clock := newClock()
		rl := NewMemoryWithClock(clock.Now)

		_, _ = rl.Check(ctx, "k", 1, time.Minute)
		clock.Advance(20*time.Second + 100*time.Millisecond)

		d, err := rl.Check(ctx, "k", 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, 39*time.Second+900*time.Millisecond, d.RetryAfter)
		assert.Equal(t, 40, d.RetryAfterSeconds())
	})

	t.Run("rejections do not extend the window", func(t *testing.T) {
		clock := newClock()
		rl := NewMemoryWithClock(clock.Now)

		_, _ = rl.Check(ctx, "k", 1, time.Minute)
		for i := 0; i < 5; i++ {
			clock.Advance(10 * time.Second)
			d, _ := rl.Check(ctx, "k", 1, time.Minute)
			assert.False(t, d.Allowed)
		}
		clock.Advance(10 * time.Second)
		d, _ := rl.Check(ctx, "k", 1, time.Minute)
		assert.True(t, d.Allowed)
	})

	t.Run("keys are independent", func(t *testing.T) {
		rl := NewMemoryWithClock(newClock().Now)

		d1, _ := rl.Check(ctx, "pray:1.1.1.1:post-a", 1, time.Minute)
		d2, _ := rl.Check(ctx, "pray:1.1.1.1:post-b", 1, time.Minute)
		d3, _ := rl.Check(ctx, "pray:1.1.1.1:post-a", 1, time.Minute)

		assert.True(t, d1.Allowed)
		assert.True(t, d2.Allowed)
		assert.False(t, d3.Allowed)
	})

	t.Run("concurrent checks never exceed max", func(t *testing.T) {
		rl := NewMemoryWithClock(newClock().Now)

		var allowed int64
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				d, err := rl.Check(ctx, "shared", 10, time.Minute)
				if err == nil && d.Allowed {
					atomic.AddInt64(&allowed, 1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(10), allowed)
	})

	t.Run("expired buckets are pruned when the map is full", func(t *testing.T) {
		clock := newClock()
		rl := NewMemoryWithClock(clock.Now)

		for i := 0; i < pruneThreshold; i++ {
			_, _ = rl.Check(ctx, fmt.Sprintf("k%d", i), 1, time.Second)
		}
		require.Equal(t, pruneThreshold, rl.Len())

		clock.Advance(2 * time.Second)
		_, _ = rl.Check(ctx, "fresh", 1, time.Second)

		assert.Equal(t, 1, rl.Len())
	})
}

func TestDecision_RetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 0, Decision{Allowed: true, RetryAfter: time.Hour}.RetryAfterSeconds())
	assert.Equal(t, 1, Decision{Allowed: false}.RetryAfterSeconds())
	assert.Equal(t, 60, Decision{Allowed: false, RetryAfter: time.Minute}.RetryAfterSeconds())
}
