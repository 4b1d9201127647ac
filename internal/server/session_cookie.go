package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tractionlens/internal/config"
)

const (
	diagnosticCookieName = "_dsid"
	defaultSessionTTL    = 24 * time.Hour
)

// sessionCookies carries the diagnostic session id between requests.
type sessionCookies struct {
	name   string
	secure bool
	ttl    time.Duration
}

func newSessionCookies(cfg config.Config) *sessionCookies {
	ttl := cfg.Session.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &sessionCookies{
		name:   diagnosticCookieName,
		secure: cfg.Session.CookieSecure,
		ttl:    ttl,
	}
}

func (m *sessionCookies) Read(c *gin.Context) (string, bool) {
	id, err := c.Cookie(m.name)
	if err != nil {
		return "", false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", false
	}
	return id, true
}

// Set writes the cookie with a max age matching the store ttl, so every
// write slides the expiry forward.
func (m *sessionCookies) Set(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.name, id, int(m.ttl.Seconds()), "/", "", m.secure, true)
}

func (m *sessionCookies) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.name, "", -1, "/", "", m.secure, true)
}
