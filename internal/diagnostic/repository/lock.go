package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/smallbiznis/tractionlens/internal/diagnostic/domain"
	"github.com/smallbiznis/tractionlens/internal/ratelimit"
	"go.uber.org/fx"
)

const (
	sessionLockPrefix = "tractionlens:session:lock:"
	sessionLockTTL    = 5 * time.Second
	sessionLockWait   = 2 * time.Second
)

// RedisLocker holds a short-lived Redis lock per session so replicas do not
// interleave writes to the same session document.
type RedisLocker struct {
	locker *ratelimit.Locker
}

func NewRedisLocker(locker *ratelimit.Locker) *RedisLocker {
	return &RedisLocker{locker: locker}
}

func (l *RedisLocker) Lock(ctx context.Context, id string) (func(), error) {
	unlock, err := l.locker.Acquire(ctx, sessionLockPrefix+id, sessionLockTTL, sessionLockWait)
	if errors.Is(err, ratelimit.ErrLockTimeout) {
		return nil, domain.ErrSessionBusy
	}
	return unlock, err
}

// MemoryLocker serializes writes within one process.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: map[string]*refMutex{}}
}

func (l *MemoryLocker) Lock(_ context.Context, id string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &refMutex{}
		l.locks[id] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}, nil
}

type LockerParams struct {
	fx.In

	Locker *ratelimit.Locker `optional:"true"`
}

func ProvideLocker(p LockerParams) domain.Locker {
	if p.Locker != nil {
		return NewRedisLocker(p.Locker)
	}
	return NewMemoryLocker()
}
