package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/primus-the-first/TutorMind-sub001/internal/model"
)

// MemDB is an in-memory stand-in for Postgres and Redis. Each store view
// shares its state, so deleting a user cascades to its remember tokens.
type MemDB struct {
	mu       sync.Mutex
	clock    *FakeClock
	users    map[uuid.UUID]model.User
	tokens   map[string]model.RememberToken
	attempts []model.LoginAttempt
	sessions map[string]model.Session
	nextID   int64

	attemptsDown bool
}

func NewMemDB(clock *FakeClock) *MemDB {
	return &MemDB{
		clock:    clock,
		users:    make(map[uuid.UUID]model.User),
		tokens:   make(map[string]model.RememberToken),
		sessions: make(map[string]model.Session),
	}
}

func (db *MemDB) Users() *MemUserStore                   { return &MemUserStore{db: db} }
func (db *MemDB) RememberTokens() *MemRememberTokenStore { return &MemRememberTokenStore{db: db} }
func (db *MemDB) LoginAttempts() *MemLoginAttemptStore   { return &MemLoginAttemptStore{db: db} }
func (db *MemDB) Sessions() *MemSessionStore             { return &MemSessionStore{db: db} }

// SetAttemptsUnavailable makes every login attempt call fail with ErrStoreUnavailable.
func (db *MemDB) SetAttemptsUnavailable(down bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.attemptsDown = down
}

// DeleteUser removes the user and, like ON DELETE CASCADE, its remember tokens.
func (db *MemDB) DeleteUser(id uuid.UUID) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.users, id)
	for sel, t := range db.tokens {
		if t.UserID == id {
			delete(db.tokens, sel)
		}
	}
}

func (db *MemDB) AttemptCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.attempts)
}

func (db *MemDB) TokenCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.tokens)
}

func (db *MemDB) SessionCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.sessions)
}

type MemUserStore struct{ db *MemDB }

var _ model.UserStore = (*MemUserStore)(nil)

func (s *MemUserStore) Create(_ context.Context, user model.User) (model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return model.User{}, model.ErrConflict
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.db.users[user.ID] = user
	return user, nil
}

func (s *MemUserStore) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (s *MemUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *MemUserStore) FindConflicts(_ context.Context, username, email string) (model.UserConflicts, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var c model.UserConflicts
	for _, u := range s.db.users {
		if u.Username == username {
			c.UsernameTaken = true
		}
		if strings.EqualFold(u.Email, email) {
			c.EmailTaken = true
		}
	}
	return c, nil
}

func (s *MemUserStore) UpdatePasswordHash(_ context.Context, id uuid.UUID, passwordHash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return model.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = s.db.clock.Now()
	s.db.users[id] = u
	return nil
}

type MemRememberTokenStore struct{ db *MemDB }

var _ model.RememberTokenStore = (*MemRememberTokenStore)(nil)

func (s *MemRememberTokenStore) Create(_ context.Context, token model.RememberToken) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.users[token.UserID]; !ok {
		return model.ErrNotFound
	}
	if _, ok := s.db.tokens[token.Selector]; ok {
		return model.ErrConflict
	}
	s.db.nextID++
	token.ID = s.db.nextID
	token.CreatedAt = s.db.clock.Now()
	s.db.tokens[token.Selector] = token
	return nil
}

func (s *MemRememberTokenStore) GetBySelector(_ context.Context, selector string) (model.RememberToken, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tokens[selector]
	if !ok {
		return model.RememberToken{}, model.ErrNotFound
	}
	return t, nil
}

func (s *MemRememberTokenStore) DeleteBySelector(_ context.Context, selector string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.tokens, selector)
	return nil
}

func (s *MemRememberTokenStore) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for sel, t := range s.db.tokens {
		if t.UserID == userID {
			delete(s.db.tokens, sel)
		}
	}
	return nil
}

func (s *MemRememberTokenStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for sel, t := range s.db.tokens {
		if t.Expired(now) {
			delete(s.db.tokens, sel)
			n++
		}
	}
	return n, nil
}

type MemLoginAttemptStore struct{ db *MemDB }

var _ model.LoginAttemptStore = (*MemLoginAttemptStore)(nil)

func (s *MemLoginAttemptStore) Record(_ context.Context, attempt model.LoginAttempt) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.attemptsDown {
		return model.ErrStoreUnavailable
	}
	s.db.attempts = append(s.db.attempts, attempt)
	return nil
}

func (s *MemLoginAttemptStore) Stats(_ context.Context, ip, username string, since time.Time) (model.AttemptStats, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.attemptsDown {
		return model.AttemptStats{}, model.ErrStoreUnavailable
	}
	var stats model.AttemptStats
	for _, a := range s.db.attempts {
		if (a.IPAddress != ip && a.Username != username) || !a.AttemptTime.After(since) {
			continue
		}
		stats.Count++
		if stats.Earliest.IsZero() || a.AttemptTime.Before(stats.Earliest) {
			stats.Earliest = a.AttemptTime
		}
	}
	return stats, nil
}

func (s *MemLoginAttemptStore) DeleteMatching(_ context.Context, ip, username string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.attemptsDown {
		return model.ErrStoreUnavailable
	}
	kept := s.db.attempts[:0]
	for _, a := range s.db.attempts {
		if a.IPAddress == ip || a.Username == username {
			continue
		}
		kept = append(kept, a)
	}
	s.db.attempts = kept
	return nil
}

func (s *MemLoginAttemptStore) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.attemptsDown {
		return 0, model.ErrStoreUnavailable
	}
	var n int64
	kept := s.db.attempts[:0]
	for _, a := range s.db.attempts {
		if a.AttemptTime.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, a)
	}
	s.db.attempts = kept
	return n, nil
}

type MemSessionStore struct{ db *MemDB }

var _ model.SessionStore = (*MemSessionStore)(nil)

func (s *MemSessionStore) Create(_ context.Context, sess model.Session) (model.Session, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.createLocked(sess), nil
}

func (s *MemSessionStore) createLocked(sess model.Session) model.Session {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	sess.ID = hex.EncodeToString(b)
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.db.clock.Now()
	}
	s.db.sessions[sess.ID] = sess
	return sess
}

func (s *MemSessionStore) Get(_ context.Context, id string) (model.Session, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	sess, ok := s.db.sessions[id]
	if !ok {
		return model.Session{}, model.ErrNotFound
	}
	return sess, nil
}

func (s *MemSessionStore) Save(_ context.Context, sess model.Session) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.sessions[sess.ID]; !ok {
		return model.ErrNotFound
	}
	s.db.sessions[sess.ID] = sess
	return nil
}

func (s *MemSessionStore) Regenerate(_ context.Context, sess model.Session) (model.Session, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	oldID := sess.ID
	fresh := s.createLocked(sess)
	delete(s.db.sessions, oldID)
	return fresh, nil
}

func (s *MemSessionStore) Destroy(_ context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.sessions, id)
	return nil
}
