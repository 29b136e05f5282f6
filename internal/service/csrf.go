package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/primus-the-first/TutorMind-sub001/internal/model"
)

const csrfTokenBytes = 32

// CSRFManager holds one anti-forgery token per session.
type CSRFManager struct {
	sessions model.SessionStore
}

func NewCSRFManager(sessions model.SessionStore) *CSRFManager {
	return &CSRFManager{sessions: sessions}
}

// NewCSRFToken returns a 256-bit hex token.
func NewCSRFToken() (string, error) {
	return randomHex(csrfTokenBytes)
}

// EnsureToken returns sess with a CSRF token, creating and persisting one on
// first use. A session without an id is created in the store.
func (m *CSRFManager) EnsureToken(ctx context.Context, sess model.Session) (model.Session, error) {
	if sess.CSRFToken != "" && sess.ID != "" {
		return sess, nil
	}

	if sess.CSRFToken == "" {
		token, err := NewCSRFToken()
		if err != nil {
			return model.Session{}, err
		}
		sess.CSRFToken = token
	}

	if sess.ID == "" {
		created, err := m.sessions.Create(ctx, sess)
		if err != nil {
			return model.Session{}, fmt.Errorf("failed to create session: %w", err)
		}
		return created, nil
	}

	if err := m.sessions.Save(ctx, sess); err != nil {
		return model.Session{}, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// Validate compares candidate to the session token in constant time.
func (m *CSRFManager) Validate(sess model.Session, candidate string) bool {
	if sess.CSRFToken == "" || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sess.CSRFToken), []byte(candidate)) == 1
}
