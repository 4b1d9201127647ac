package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/tractionlens/internal/cache"
	"github.com/smallbiznis/tractionlens/internal/config"
	"github.com/smallbiznis/tractionlens/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	keyReportExport   = "report:export:session:%s"
	localLimiterTTL   = 30 * time.Minute
	ReasonRedis       = "redis"
	ReasonMemory      = "memory"
	ReasonUnavailable = "unavailable"
)

// Decision is the outcome of an export rate check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	Reason     string
}

// ExportLimiter throttles report exports per session. It uses the Redis
// token bucket when Redis is configured and an in-process limiter otherwise,
// or when Redis cannot be reached.
type ExportLimiter struct {
	bucket  *TokenBucket
	local   cache.Cache[string, *rate.Limiter]
	rate    float64
	burst   int
	log     *zap.Logger
	metrics *metrics.Metrics
}

type ExportParams struct {
	fx.In

	Lifecycle fx.Lifecycle     `optional:"true"`
	Config    config.Config
	Log       *zap.Logger
	Redis     *redis.Client    `optional:"true"`
	Metrics   *metrics.Metrics `optional:"true"`
}

func NewExportLimiter(p ExportParams) *ExportLimiter {
	perMinute := p.Config.Export.RatePerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	burst := p.Config.Export.Burst
	if burst <= 0 {
		burst = 3
	}

	return &ExportLimiter{
		bucket:  NewTokenBucket(p.Redis),
		local:   cache.Bind(p.Lifecycle, cache.NewTTLCache[string, *rate.Limiter]()),
		rate:    perMinute / 60,
		burst:   burst,
		log:     p.Log.Named("ratelimit.export"),
		metrics: p.Metrics,
	}
}

// Allow consumes one export token for the session.
func (l *ExportLimiter) Allow(ctx context.Context, sessionID, format string) Decision {
	sessionID = strings.TrimSpace(sessionID)

	decision := l.allow(ctx, sessionID)
	if !decision.Allowed {
		l.metrics.RecordExportRateLimited(ctx, format, decision.Reason)
	}
	return decision
}

func (l *ExportLimiter) allow(ctx context.Context, sessionID string) Decision {
	if l.bucket != nil {
		res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyReportExport, sessionID), l.rate, l.burst)
		if err == nil {
			return Decision{
				Allowed:    res.Allowed,
				Limit:      res.Limit,
				Remaining:  res.Remaining,
				RetryAfter: res.RetryAfter,
				Reason:     ReasonRedis,
			}
		}
		l.log.Warn("redis export limiter failed, falling back to in-process limiter", zap.Error(err))
	}

	limiter, _ := l.local.GetOrSet(sessionID, rate.NewLimiter(rate.Limit(l.rate), l.burst), localLimiterTTL)
	// refresh the ttl so an active session keeps its bucket
	l.local.Set(sessionID, limiter, localLimiterTTL)

	reservation := limiter.Reserve()
	if !reservation.OK() {
		return Decision{Allowed: false, Limit: l.burst, Reason: ReasonUnavailable}
	}
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		return Decision{Allowed: false, Limit: l.burst, RetryAfter: delay, Reason: ReasonMemory}
	}
	return Decision{
		Allowed:   true,
		Limit:     l.burst,
		Remaining: int(limiter.Tokens()),
		Reason:    ReasonMemory,
	}
}
