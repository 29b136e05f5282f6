package context

import (
	"context"

	"github.com/primus-the-first/TutorMind-sub001/internal/model"
)

type sessionKey struct{}

// Manager stores the resolved session on a request context.
type Manager struct{}

var _ model.ContextManager = (*Manager)(nil)

func NewManager() *Manager {
	return &Manager{}
}

// SetSessionToContext returns a child of ctx carrying sess.
func (m *Manager) SetSessionToContext(ctx context.Context, sess model.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// GetSessionFromContext returns the session set by the access middleware. The
// boolean is false when no authenticated session is attached.
func (m *Manager) GetSessionFromContext(ctx context.Context) (model.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(model.Session)
	if !ok || !sess.Authenticated() {
		return model.Session{}, false
	}
	return sess, true
}
