package marks

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"service-delivery-engine/internal/domain"
)

const keyPrefix = "countdown:mark:"

// DefaultTTL keeps a mark long enough to outlive any realistic delivery window.
const DefaultTTL = 48 * time.Hour

// RedisStore keeps countdown marks in Redis so that several workers share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// MarkOnce sets the (order, bucket) key if absent and reports whether it did.
func (s *RedisStore) MarkOnce(ctx context.Context, orderID string, bucket domain.CountdownStatus) (bool, error) {
	ok, err := s.client.SetNX(ctx, key(orderID, bucket), 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func key(orderID string, bucket domain.CountdownStatus) string {
	return keyPrefix + orderID + ":" + string(bucket)
}
