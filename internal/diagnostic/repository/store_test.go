package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/tractionlens/internal/diagnostic/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionID = "01HZX3J5W7Q6V0K8T2M4N6P8R0"

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, time.Hour), mr
}

func exerciseStore(t *testing.T, store domain.Store) {
	ctx := context.Background()

	_, err := store.Get(ctx, testSessionID)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)

	session := domain.NewSession(testSessionID, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	session.SelectedSaaSType = "B2C"
	session.Completed[domain.StepCompanyProfile] = true
	session.Values["metric_2_5"] = 22.5
	session.MoveTo(domain.StepRevenueMetrics)
	require.NoError(t, store.Save(ctx, session))

	loaded, err := store.Get(ctx, testSessionID)
	require.NoError(t, err)
	assert.Equal(t, "B2C", loaded.SelectedSaaSType)
	assert.True(t, loaded.Completed[domain.StepCompanyProfile])
	assert.Equal(t, domain.StepRevenueMetrics, loaded.CurrentStep)
	assert.Equal(t, []domain.Step{domain.StepCompanyProfile}, loaded.History)
	assert.NotNil(t, loaded.MetricsCache)

	// the stored copy is independent of the caller's
	loaded.SelectedSaaSType = "B2B"
	again, err := store.Get(ctx, testSessionID)
	require.NoError(t, err)
	assert.Equal(t, "B2C", again.SelectedSaaSType)

	require.NoError(t, store.Delete(ctx, testSessionID))
	_, err = store.Get(ctx, testSessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	t.Cleanup(store.Close)
	exerciseStore(t, store)
}

func TestMemoryStoreEvictsAbandonedSessions(t *testing.T) {
	store := NewMemoryStore(200 * time.Millisecond)
	t.Cleanup(store.Close)
	ctx := context.Background()

	for _, id := range []string{testSessionID, "01HZX3J5W7Q6V0K8T2M4N6P8R1", "01HZX3J5W7Q6V0K8T2M4N6P8R2"} {
		require.NoError(t, store.Save(ctx, domain.NewSession(id, time.Now())))
	}
	require.Equal(t, 3, store.items.Len())

	assert.Eventually(t, func() bool {
		return store.items.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisStore(t *testing.T) {
	store, _ := newRedisStore(t)
	exerciseStore(t, store)
}

func TestRedisStoreExpiresSessions(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewSession(testSessionID, time.Now())))
	assert.True(t, mr.Exists(sessionKeyPrefix+testSessionID))

	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, testSessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStoreDecodesNumbersPrecisely(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	session := domain.NewSession(testSessionID, time.Now())
	session.Values["metric_1_23"] = 175000.0
	require.NoError(t, store.Save(ctx, session))

	loaded, err := store.Get(ctx, testSessionID)
	require.NoError(t, err)
	assert.Equal(t, json.Number("175000"), loaded.Values["metric_1_23"])
}

func TestMemoryLockerSerializes(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, testSessionID)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		release, err := locker.Lock(ctx, testSessionID)
		if err == nil {
			release()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first held")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	<-acquired
	assert.Empty(t, locker.locks)
}
