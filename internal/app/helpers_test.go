package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"service-delivery-engine/internal/logx"
	testlog "service-delivery-engine/internal/testutil"
)

func withStubNewPool(t *testing.T, stub func(context.Context, string) (*pgxpool.Pool, error)) {
	t.Helper()
	orig := newPool
	newPool = stub
	t.Cleanup(func() { newPool = orig })
}

func TestConnectDbWithRetry_SuccessFirstAttempt(t *testing.T) {
	want := &pgxpool.Pool{}
	calls := 0
	withStubNewPool(t, func(context.Context, string) (*pgxpool.Pool, error) {
		calls++
		return want, nil
	})

	pool, err := connectDbWithRetry(context.Background(), logx.Nop(), "postgres://stub", 3, time.Millisecond)
	require.NoError(t, err)
	require.Same(t, want, pool)
	require.Equal(t, 1, calls)
}

func TestConnectDbWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	withStubNewPool(t, func(context.Context, string) (*pgxpool.Pool, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("connection refused")
		}
		return &pgxpool.Pool{}, nil
	})

	log := testlog.New()
	pool, err := connectDbWithRetry(context.Background(), log.Logger(), "postgres://stub", 5, time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, pool)
	require.Equal(t, 3, calls)
	require.True(t, log.Has("db connect failed"))
	require.True(t, log.Has("db connected"))
}

func TestConnectDbWithRetry_GivesUp(t *testing.T) {
	sentinel := errors.New("connection refused")
	withStubNewPool(t, func(context.Context, string) (*pgxpool.Pool, error) { return nil, sentinel })

	pool, err := connectDbWithRetry(context.Background(), logx.Nop(), "postgres://stub", 2, time.Millisecond)
	require.Nil(t, pool)
	require.ErrorIs(t, err, sentinel)
	require.ErrorContains(t, err, "after 2 attempts")
}

func TestConnectDbWithRetry_ContextCancelled(t *testing.T) {
	withStubNewPool(t, func(context.Context, string) (*pgxpool.Pool, error) {
		return nil, errors.New("connection refused")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := connectDbWithRetry(ctx, logx.Nop(), "postgres://stub", 5, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}
