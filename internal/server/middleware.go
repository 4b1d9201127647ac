package server

import (
	"github.com/gin-gonic/gin"
	diagnosticdomain "github.com/smallbiznis/tractionlens/internal/diagnostic/domain"
	obscontext "github.com/smallbiznis/tractionlens/internal/observability/context"
)

const contextSessionIDKey = "diagnostic_session_id"

// DiagnosticSessionRequired resolves the session cookie and exposes its id to
// downstream handlers and the request logger.
func (s *Server) DiagnosticSessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := s.sessions.Read(c)
		if !ok {
			AbortWithError(c, diagnosticdomain.ErrSessionNotFound)
			return
		}

		c.Request = c.Request.WithContext(obscontext.WithSessionID(c.Request.Context(), id))
		c.Set(contextSessionIDKey, id)
		c.Next()
	}
}

func sessionIDFromContext(c *gin.Context) string {
	return c.GetString(contextSessionIDKey)
}
