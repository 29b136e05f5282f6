package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/primus-the-first/TutorMind-sub001/internal/logger"
)

// Pinger is a dependency the health endpoint probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports whether every probe answers.
type Health struct {
	probes  map[string]Pinger
	timeout time.Duration
	logger  *logger.Logger
}

func NewHealth(probes map[string]Pinger, timeout time.Duration, logger *logger.Logger) *Health {
	return &Health{probes: probes, timeout: timeout, logger: logger}
}

func (h *Health) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	checks := make(gin.H, len(h.probes))
	healthy := true
	for name, p := range h.probes {
		if err := p.Ping(ctx); err != nil {
			h.logger.Warn("Health: probe failed",
				"probe", name,
				"error", err.Error())
			checks[name] = "down"
			healthy = false
			continue
		}
		checks[name] = "up"
	}

	status := http.StatusOK
	state := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
