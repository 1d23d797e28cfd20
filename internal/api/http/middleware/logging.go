package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/authkeeper/internal/logger"
)

// Logging logs every HTTP request and its result.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle logs method, path, duration and status for each request.
func (l *Logging) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		l.logger.Debug("HTTP request started",
			"method", c.Request.Method,
			"path", path)

		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}

		switch {
		case status >= 500:
			if len(c.Errors) > 0 {
				args = append(args, "error", c.Errors.String())
			}
			l.logger.Error("HTTP request failed", args...)
		default:
			l.logger.Info("HTTP request completed", args...)
		}
	}
}
