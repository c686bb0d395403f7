package ratelimiter

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// redisURL returns REDIS_URL when set, otherwise starts a throwaway redis
// container for the test.
func redisURL(t *testing.T) string {
	t.Helper()
	if url := os.Getenv("REDIS_URL"); url != "" {
		return url
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("redis container unavailable: %s", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestRedis_Check(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	ctx := context.Background()

	rl, err := NewRedisFromURL(ctx, redisURL(t))
	require.NoError(t, err)
	defer rl.Close()

	t.Run("fixed window", func(t *testing.T) {
		key := "test:" + uuid.NewString()
		var got []bool
		for i := 0; i < 4; i++ {
			d, err := rl.Check(ctx, key, 3, time.Second)
			require.NoError(t, err)
			got = append(got, d.Allowed)
			if !d.Allowed {
				assert.Equal(t, 1, d.RetryAfterSeconds())
			}
		}
		assert.Equal(t, []bool{true, true, true, false}, got)

		time.Sleep(1100 * time.Millisecond)
		d, err := rl.Check(ctx, key, 3, time.Second)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("retry after follows the window", func(t *testing.T) {
		key := "test:" + uuid.NewString()
		_, err := rl.Check(ctx, key, 1, time.Minute)
		require.NoError(t, err)

		d, err := rl.Check(ctx, key, 1, time.Minute)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Greater(t, d.RetryAfter, 55*time.Second)
		assert.LessOrEqual(t, d.RetryAfter, time.Minute)
	})

	t.Run("keys are independent", func(t *testing.T) {
		a, b := "test:"+uuid.NewString(), "test:"+uuid.NewString()
		_, err := rl.Check(ctx, a, 1, time.Minute)
		require.NoError(t, err)

		d, err := rl.Check(ctx, b, 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})
}

func TestNewRedisFromURL_InvalidURL(t *testing.T) {
	_, err := NewRedisFromURL(context.Background(), "not a url")
	assert.Error(t, err)
}
