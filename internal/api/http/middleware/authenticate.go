package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/authkeeper/internal/api/http/cookie"
	"github.com/dtroode/authkeeper/internal/logger"
	"github.com/dtroode/authkeeper/internal/model"
)

// SessionResolver resolves a session token to its user.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (model.User, error)
}

// Authenticate guards routes that require a valid session cookie.
type Authenticate struct {
	sessions       SessionResolver
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware.
func NewAuthenticate(sessions SessionResolver, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{
		sessions:       sessions,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Handle rejects the request unless the jwt cookie resolves to an existing user.
// On success the password-free user is attached to the request context.
func (m *Authenticate) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookie.Read(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No Token Provided"})
			return
		}

		user, err := m.sessions.ResolveSession(c.Request.Context(), token)
		if err != nil {
			code, msg := guardError(err)
			if code == http.StatusInternalServerError {
				m.logger.Error("Authenticate middleware: failed to resolve session",
					"path", c.FullPath(),
					"error", err.Error())
			} else {
				m.logger.Debug("Authenticate middleware: request rejected",
					"path", c.FullPath(),
					"error", err.Error())
			}
			c.AbortWithStatusJSON(code, gin.H{"error": msg})
			return
		}

		c.Request = c.Request.WithContext(m.contextManager.SetUserToContext(c.Request.Context(), user))
		c.Next()
	}
}

func guardError(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrTokenExpired):
		return http.StatusUnauthorized, "Unauthorized: Token Expired"
	case errors.Is(err, model.ErrInvalidToken):
		return http.StatusUnauthorized, "Unauthorized: Invalid Token"
	case errors.Is(err, model.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
