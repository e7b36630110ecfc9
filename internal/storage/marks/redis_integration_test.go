//go:build integration

package marks

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-delivery-engine/internal/domain"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisStore_MarkOnce(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	client.Del(ctx, key("it-order", domain.CountdownWarning))

	s := NewRedisStore(client, time.Minute)
	require.NoError(t, s.Ping(ctx))

	first, err := s.MarkOnce(ctx, "it-order", domain.CountdownWarning)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := s.MarkOnce(ctx, "it-order", domain.CountdownWarning)
	require.NoError(t, err)
	assert.False(t, again)

	ttl := client.TTL(ctx, key("it-order", domain.CountdownWarning)).Val()
	assert.Greater(t, ttl, time.Duration(0))
}
