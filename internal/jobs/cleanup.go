// Package jobs runs the periodic purge of stale login attempts and expired
// remember-me tokens on asynq.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/primus-the-first/TutorMind-sub001/internal/logger"
)

// TaskTypeCleanup is the asynq task type of the purge.
const TaskTypeCleanup = "auth:cleanup"

// AttemptPurger deletes login attempts older than the retention period.
type AttemptPurger interface {
	Cleanup(ctx context.Context) (int64, error)
}

// TokenPurger deletes remember-me tokens past their expiry.
type TokenPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Cleanup handles TaskTypeCleanup.
type Cleanup struct {
	attempts AttemptPurger
	tokens   TokenPurger
	logger   *logger.Logger
}

func NewCleanup(attempts AttemptPurger, tokens TokenPurger, logger *logger.Logger) *Cleanup {
	return &Cleanup{attempts: attempts, tokens: tokens, logger: logger}
}

// HandleTask runs both purges. A failure in one does not skip the other; the
// task fails if either did.
func (c *Cleanup) HandleTask(ctx context.Context, _ *asynq.Task) error {
	var errs []error

	attempts, err := c.attempts.Cleanup(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to purge login attempts: %w", err))
	}

	tokens, err := c.tokens.PurgeExpired(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to purge remember tokens: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		c.logger.Error("Cleanup job: purge incomplete",
			"attempts_deleted", attempts,
			"tokens_deleted", tokens,
			"error", err.Error())
		return err
	}

	c.logger.Info("Cleanup job: purge completed",
		"attempts_deleted", attempts,
		"tokens_deleted", tokens)
	return nil
}
