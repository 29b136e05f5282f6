package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/primus-the-first/TutorMind-sub001/internal/logger"
	"github.com/primus-the-first/TutorMind-sub001/internal/model"
)

// RateLimitPolicy configures the sliding-window login guard.
type RateLimitPolicy struct {
	MaxAttempts int
	Window      time.Duration
	Retention   time.Duration
}

// RateLimitResult is the outcome of a Check.
type RateLimitResult struct {
	Limited           bool
	Remaining         int
	RetryAfterSeconds int
}

// RateLimiter counts failed logins per (ip, identifier) over a trailing window.
// The check-then-record sequence is not atomic; concurrent requests may let one
// or two extra attempts through.
type RateLimiter struct {
	store  model.LoginAttemptStore
	policy RateLimitPolicy
	logger *logger.Logger
	now    func() time.Time
}

func NewRateLimiter(store model.LoginAttemptStore, policy RateLimitPolicy, logger *logger.Logger) *RateLimiter {
	return &RateLimiter{
		store:  store,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
}

// Check reports whether ip or identifier has exhausted its attempts. It fails
// open: an unreachable attempt log yields an unlimited result.
func (l *RateLimiter) Check(ctx context.Context, ip, identifier string) RateLimitResult {
	now := l.now()

	stats, err := l.store.Stats(ctx, ip, identifier, now.Add(-l.policy.Window))
	if err != nil {
		l.logger.Warn("Rate limiter: attempt log unavailable, allowing request",
			"ip", ip,
			"identifier", identifier,
			"error", err.Error())
		return RateLimitResult{Remaining: l.policy.MaxAttempts}
	}

	remaining := l.policy.MaxAttempts - stats.Count
	if remaining > 0 {
		return RateLimitResult{Remaining: remaining}
	}

	var retryAfter int
	if !stats.Earliest.IsZero() {
		wait := stats.Earliest.Add(l.policy.Window).Sub(now)
		if wait > 0 {
			retryAfter = int(math.Ceil(wait.Seconds()))
		}
	}

	l.logger.Info("Rate limiter: login blocked",
		"ip", ip,
		"identifier", identifier,
		"attempts", stats.Count,
		"retry_after", retryAfter)

	return RateLimitResult{Limited: true, RetryAfterSeconds: retryAfter}
}

// RecordFailure appends a failed attempt.
func (l *RateLimiter) RecordFailure(ctx context.Context, ip, identifier string) error {
	attempt := model.LoginAttempt{
		IPAddress:   ip,
		Username:    identifier,
		AttemptTime: l.now().UTC(),
	}
	if err := l.store.Record(ctx, attempt); err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

// Clear drops every failure Check would count for this ip and identifier.
func (l *RateLimiter) Clear(ctx context.Context, ip, identifier string) error {
	if err := l.store.DeleteMatching(ctx, ip, identifier); err != nil {
		return fmt.Errorf("failed to clear login attempts: %w", err)
	}
	return nil
}

// Cleanup removes attempts older than the retention horizon.
func (l *RateLimiter) Cleanup(ctx context.Context) (int64, error) {
	n, err := l.store.DeleteBefore(ctx, l.now().Add(-l.policy.Retention))
	if err != nil {
		return 0, fmt.Errorf("failed to prune login attempts: %w", err)
	}
	return n, nil
}
