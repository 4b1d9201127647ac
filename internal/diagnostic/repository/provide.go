package repository

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/tractionlens/internal/config"
	"github.com/smallbiznis/tractionlens/internal/diagnostic/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
	Redis     *redis.Client `optional:"true"`
}

// Provide picks the Redis store when a client is configured and falls back
// to the in-process store otherwise.
func Provide(p Params) domain.Store {
	if p.Redis != nil {
		p.Log.Info("diagnostic sessions stored in redis", zap.Duration("ttl", p.Config.Session.TTL))
		return NewRedisStore(p.Redis, p.Config.Session.TTL)
	}
	p.Log.Info("diagnostic sessions stored in memory", zap.Duration("ttl", p.Config.Session.TTL))
	store := NewMemoryStore(p.Config.Session.TTL)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			store.Close()
			return nil
		},
	})
	return store
}
