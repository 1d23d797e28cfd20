// Package cookie manages the session cookie carrying the JWT.
package cookie

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Name is the session cookie name.
const Name = "jwt"

// Session writes, clears and reads the session cookie.
type Session struct {
	maxAge int
	secure bool
}

// NewSession creates a cookie manager whose cookies live for ttl.
// secure controls the Secure attribute and is disabled only in development.
func NewSession(ttl time.Duration, secure bool) *Session {
	return &Session{
		maxAge: int(ttl / time.Second),
		secure: secure,
	}
}

// Set stores token in the session cookie.
func (s *Session) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(Name, token, s.maxAge, "/", "", s.secure, true)
}

// Clear expires the session cookie immediately.
func (s *Session) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(Name, "", -1, "/", "", s.secure, true)
}

// Read returns the session token, or "" when the cookie is absent.
func Read(c *gin.Context) string {
	token, err := c.Cookie(Name)
	if err != nil {
		return ""
	}
	return token
}
