package model

import (
	"context"
	"time"
)

// LoginAttemptStore is the append-only log of failed logins.
type LoginAttemptStore interface {
	Record(ctx context.Context, attempt LoginAttempt) error
	// Stats aggregates attempts where ip or username matches since the given time.
	Stats(ctx context.Context, ip, username string, since time.Time) (AttemptStats, error)
	// DeleteMatching removes attempts recorded for this ip or this username.
	DeleteMatching(ctx context.Context, ip, username string) error
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// LoginAttempt is a single failed login.
type LoginAttempt struct {
	IPAddress   string
	Username    string
	AttemptTime time.Time
}

// AttemptStats is the aggregate view the rate limiter works with.
type AttemptStats struct {
	Count    int
	Earliest time.Time
}
