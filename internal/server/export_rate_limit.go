package server

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tractionlens/internal/observability/logger"
	"github.com/smallbiznis/tractionlens/internal/ratelimit"
	reportdomain "github.com/smallbiznis/tractionlens/internal/report/domain"
	"go.uber.org/zap"
)

// ExportRateLimit throttles report downloads per diagnostic session.
func (s *Server) ExportRateLimit(format reportdomain.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.exportLimiter == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		decision := s.exportLimiter.Allow(ctx, sessionIDFromContext(c), string(format))
		writeRateLimitHeaders(c, decision)
		if decision.Allowed {
			c.Next()
			return
		}

		logger.FromContext(ctx).Warn("report export rate limit exceeded",
			zap.String("format", string(format)),
			zap.String("reason", decision.Reason),
			zap.Duration("retry_after", decision.RetryAfter),
		)
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(decision)))
		AbortWithError(c, ErrRateLimited)
	}
}

func writeRateLimitHeaders(c *gin.Context, decision ratelimit.Decision) {
	if decision.Limit <= 0 {
		return
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(max(decision.Remaining, 0)))
}

func retryAfterSeconds(decision ratelimit.Decision) int {
	secs := int(math.Ceil(decision.RetryAfter.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
