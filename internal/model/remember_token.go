package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RememberTokenStore persists long-lived login tokens.
type RememberTokenStore interface {
	Create(ctx context.Context, token RememberToken) error
	GetBySelector(ctx context.Context, selector string) (RememberToken, error)
	DeleteBySelector(ctx context.Context, selector string) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// RememberToken is a persisted selector/validator pair. The validator is
// never stored, only its hash.
type RememberToken struct {
	ID              int64
	UserID          uuid.UUID
	Selector        string
	HashedValidator []byte
	ExpiresAt       time.Time
	CreatedAt       time.Time
}

// Expired reports whether the token is no longer usable at now.
func (t RememberToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
