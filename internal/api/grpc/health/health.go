// Package health reports backing-store readiness over grpc.health.v1.
package health

import (
	"context"
	"sort"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/primus-the-first/TutorMind-sub001/internal/logger"
)

// Probe is a dependency whose reachability decides the serving status.
type Probe interface {
	Ping(ctx context.Context) error
}

// Checker polls its probes and publishes the result on a grpc health server.
// The overall service ("") is SERVING only while every probe answers; each probe
// is also published under its own name.
type Checker struct {
	server   *health.Server
	probes   map[string]Probe
	names    []string
	interval time.Duration
	timeout  time.Duration
	logger   *logger.Logger
}

func NewChecker(probes map[string]Probe, interval time.Duration, logger *logger.Logger) *Checker {
	names := make([]string, 0, len(probes))
	for name := range probes {
		names = append(names, name)
	}
	sort.Strings(names)

	timeout := interval / 2
	if timeout <= 0 || timeout > 5*time.Second {
		timeout = 5 * time.Second
	}

	c := &Checker{
		server:   health.NewServer(),
		probes:   probes,
		names:    names,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
	c.setAll(healthpb.HealthCheckResponse_NOT_SERVING)
	return c
}

// Server is the health service to register on a grpc.Server.
func (c *Checker) Server() *health.Server {
	return c.server
}

// CheckOnce pings every probe and updates the published statuses. It reports
// whether all probes answered.
func (c *Checker) CheckOnce(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	healthy := true
	for _, name := range c.names {
		status := healthpb.HealthCheckResponse_SERVING
		if err := c.probes[name].Ping(ctx); err != nil {
			c.logger.Warn("Health checker: probe failed",
				"probe", name,
				"error", err.Error())
			status = healthpb.HealthCheckResponse_NOT_SERVING
			healthy = false
		}
		c.server.SetServingStatus(name, status)
	}

	overall := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		overall = healthpb.HealthCheckResponse_NOT_SERVING
	}
	c.server.SetServingStatus("", overall)

	return healthy
}

// Run checks immediately and then every interval until ctx is done, after
// which every status is NOT_SERVING for good.
func (c *Checker) Run(ctx context.Context) {
	c.CheckOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			c.logger.Info("Health checker: stopped")
			return
		case <-ticker.C:
			c.CheckOnce(ctx)
		}
	}
}

func (c *Checker) setAll(status healthpb.HealthCheckResponse_ServingStatus) {
	c.server.SetServingStatus("", status)
	for _, name := range c.names {
		c.server.SetServingStatus(name, status)
	}
}
