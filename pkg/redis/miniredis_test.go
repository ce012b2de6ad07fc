package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/tableside-backend/pkg/config"
)

func newMiniredisClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), config.RedisConfig{Address: mr.Addr(), PoolSize: 2}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRateWindowExpiresOnServer(t *testing.T) {
	ctx := context.Background()
	client, mr := newMiniredisClient(t)

	for i := 0; i < 2; i++ {
		allowed, _, err := client.FixedWindowAllow(ctx, "login:ip:10.0.0.1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, count, err := client.FixedWindowAllow(ctx, "login:ip:10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.EqualValues(t, 3, count)

	mr.FastForward(time.Minute + time.Second)

	allowed, count, err = client.FixedWindowAllow(ctx, "login:ip:10.0.0.1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.EqualValues(t, 1, count)
}

func TestLockExpiresOnServer(t *testing.T) {
	ctx := context.Background()
	client, mr := newMiniredisClient(t)

	ok, err := client.AcquireLock(ctx, "cron-worker", "pod-a", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("ts:lock:cron-worker"))

	ok, err = client.AcquireLock(ctx, "cron-worker", "pod-b", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(31 * time.Second)

	ok, err = client.AcquireLock(ctx, "cron-worker", "pod-b", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, client.ReleaseLock(ctx, "cron-worker", "pod-a"))
	assert.True(t, mr.Exists("ts:lock:cron-worker"), "stale owner must not release")
	require.NoError(t, client.ReleaseLock(ctx, "cron-worker", "pod-b"))
	assert.False(t, mr.Exists("ts:lock:cron-worker"))
}

func TestNewFailsWhenServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), config.RedisConfig{Address: addr, DialTimeout: 200 * time.Millisecond}, nil)
	assert.Error(t, err)
}
