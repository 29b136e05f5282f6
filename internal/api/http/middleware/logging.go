package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/primus-the-first/TutorMind-sub001/internal/logger"
)

// Logging writes one line per HTTP request.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Handle logs method, route, status and duration after the request completes.
func (l *Logging) Handle(c *gin.Context) {
	start := time.Now()

	c.Next()

	log := l.logger.With("request_id", GetRequestID(c))
	status := c.Writer.Status()
	args := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
		"ip", c.ClientIP(),
	}

	switch {
	case status >= 500:
		log.Error("HTTP request failed", args...)
	case status >= 400:
		log.Warn("HTTP request rejected", args...)
	default:
		log.Info("HTTP request completed", args...)
	}
}
