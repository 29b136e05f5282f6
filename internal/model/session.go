package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStore keeps server-held session state keyed by an opaque id.
type SessionStore interface {
	// Create stores sess under a freshly generated id and returns it.
	Create(ctx context.Context, sess Session) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, sess Session) error
	// Regenerate moves sess to a new id. The new entry is written before the old one is removed.
	Regenerate(ctx context.Context, sess Session) (Session, error)
	Destroy(ctx context.Context, id string) error
}

// Session is the ephemeral per-client state. A session without a user is anonymous
// and only carries a CSRF token.
type Session struct {
	ID        string    `json:"-"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	CSRFToken string    `json:"csrf_token"`
	CreatedAt time.Time `json:"created_at"`
}

// Authenticated reports whether the session carries an identity.
func (s Session) Authenticated() bool {
	return s.UserID != uuid.Nil
}
