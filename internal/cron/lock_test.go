package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryLockStore struct {
	holders map[string]string
}

func (m *memoryLockStore) AcquireLock(_ context.Context, name, owner string, _ time.Duration) (bool, error) {
	if _, held := m.holders[name]; held {
		return false, nil
	}
	m.holders[name] = owner
	return true, nil
}

func (m *memoryLockStore) ReleaseLock(_ context.Context, name, owner string) error {
	if m.holders[name] == owner {
		delete(m.holders, name)
	}
	return nil
}

func TestRedisLockIsExclusive(t *testing.T) {
	store := &memoryLockStore{holders: map[string]string{}}
	ctx := context.Background()
	first, err := NewRedisLock(store, "cron", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "cron", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, second.Release(ctx))
	assert.Contains(t, store.holders, "cron")

	require.NoError(t, first.Release(ctx))
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewRedisLockValidation(t *testing.T) {
	_, err := NewRedisLock(nil, "cron", time.Minute)
	assert.Error(t, err)
	_, err = NewRedisLock(&memoryLockStore{}, "", time.Minute)
	assert.Error(t, err)
}
