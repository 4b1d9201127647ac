package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/tractionlens/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLimiter(t *testing.T, client *redis.Client) *ExportLimiter {
	t.Helper()
	l := NewExportLimiter(ExportParams{
		Config: config.Config{Export: config.ExportConfig{RatePerMinute: 1, Burst: 2}},
		Log:    zap.NewNop(),
		Redis:  client,
	})
	t.Cleanup(l.local.Close)
	return l
}

func TestExportLimiterInMemory(t *testing.T) {
	l := newLimiter(t, nil)
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "s1", "pdf").Allowed)
	assert.True(t, l.Allow(ctx, "s1", "pdf").Allowed)

	denied := l.Allow(ctx, "s1", "pdf")
	assert.False(t, denied.Allowed)
	assert.Equal(t, ReasonMemory, denied.Reason)
	assert.Positive(t, denied.RetryAfter)

	// buckets are per session
	assert.True(t, l.Allow(ctx, "s2", "pdf").Allowed)
}

func TestExportLimiterRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := newLimiter(t, client)
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "s1", "md").Allowed)
	assert.True(t, l.Allow(ctx, "s1", "md").Allowed)

	denied := l.Allow(ctx, "s1", "md")
	assert.False(t, denied.Allowed)
	assert.Equal(t, ReasonRedis, denied.Reason)
	assert.True(t, mr.Exists("report:export:session:s1"))
}

func TestExportLimiterFallsBackWhenRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	l := newLimiter(t, client)
	decision := l.Allow(context.Background(), "s1", "html")
	assert.True(t, decision.Allowed)
	assert.Equal(t, ReasonMemory, decision.Reason)
}

func TestExportLimiterConcurrentFirstRequests(t *testing.T) {
	l := newLimiter(t, nil)
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		allowed atomic.Int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow(ctx, "s-concurrent", "pdf").Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	// one bucket per session, even when the first exports race
	assert.EqualValues(t, 2, allowed.Load())
}
