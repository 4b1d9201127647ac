package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockerTryLockAndRelease(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := NewLocker(client)
	ctx := context.Background()

	token, ok, err := locker.TryLock(ctx, "session:lock:a", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, "session:lock:a", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	// releasing with a stale token leaves the lock in place
	require.NoError(t, locker.Release(ctx, "session:lock:a", "stale"))
	assert.True(t, mr.Exists("session:lock:a"))

	require.NoError(t, locker.Release(ctx, "session:lock:a", token))
	assert.False(t, mr.Exists("session:lock:a"))
}

func TestNilLockerIsSafe(t *testing.T) {
	var locker *Locker
	_, ok, err := locker.TryLock(context.Background(), "k", time.Second)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.NoError(t, locker.Release(context.Background(), "k", "t"))
}

func TestLockerAcquireWaitsForRelease(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := NewLocker(client)
	ctx := context.Background()

	unlock, err := locker.Acquire(ctx, "session:lock:b", time.Minute, time.Second)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "session:lock:b", time.Minute, 60*time.Millisecond)
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()
	again, err := locker.Acquire(ctx, "session:lock:b", time.Minute, time.Second)
	require.NoError(t, err)
	again()
	assert.False(t, mr.Exists("session:lock:b"))
}
