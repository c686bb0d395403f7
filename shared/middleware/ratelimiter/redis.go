package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// fixedWindowScript increments the window counter, starting the window on the
// first hit, and returns the new count with the remaining window in ms.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// Redis is a Limiter shared by every instance pointing at the same server.
type Redis struct {
	client *redis.Client
	prefix string
}

var _ Limiter = (*Redis)(nil)

func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &Redis{client: client, prefix: prefix}
}

// NewRedisFromURL parses a redis:// URL and verifies the connection.
func NewRedisFromURL(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedis(client, ""), nil
}

func (r *Redis) Check(ctx context.Context, key string, max int, window time.Duration) (Decision, error) {
	res, err := fixedWindowScript.Run(ctx, r.client, []string{r.prefix + key}, window.Milliseconds()).Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script failed: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("unexpected rate limit reply: %v", res)
	}
	count, _ := res[0].(int64)
	ttl, _ := res[1].(int64)

	if int(count) <= max {
		return Decision{Allowed: true}, nil
	}
	return Decision{Allowed: false, RetryAfter: time.Duration(ttl) * time.Millisecond}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
