// Package session keeps server-side session state in Redis.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/primus-the-first/TutorMind-sub001/internal/logger"
	"github.com/primus-the-first/TutorMind-sub001/internal/model"
)

const (
	idBytes       = 32
	createRetries = 3
)

// Store is a Redis-backed model.SessionStore. Every read slides the TTL forward.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
	logger *logger.Logger
}

var _ model.SessionStore = (*Store)(nil)

// NewStore builds a Store writing keys as "<prefix>:<id>".
func NewStore(rdb redis.UniversalClient, prefix string, ttl time.Duration, logger *logger.Logger) *Store {
	return &Store{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

func (s *Store) key(id string) string {
	return s.prefix + ":" + id
}

// NewID returns a 256-bit random session identifier.
func NewID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Create stores sess under a fresh id. Any id already set on sess is ignored.
func (s *Store) Create(ctx context.Context, sess model.Session) (model.Session, error) {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now().UTC()
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to encode session: %w", err)
	}

	for i := 0; i < createRetries; i++ {
		id, err := NewID()
		if err != nil {
			return model.Session{}, err
		}

		ok, err := s.rdb.SetNX(ctx, s.key(id), data, s.ttl).Result()
		if err != nil {
			return model.Session{}, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
		}
		if ok {
			sess.ID = id
			return sess, nil
		}
	}

	return model.Session{}, errors.New("failed to allocate unique session id")
}

// Get loads the session and refreshes its expiry.
func (s *Store) Get(ctx context.Context, id string) (model.Session, error) {
	if id == "" {
		return model.Session{}, model.ErrNotFound
	}

	key := s.key(id)
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Session{}, model.ErrNotFound
		}
		return model.Session{}, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A blob we cannot read is treated as gone.
		_ = s.rdb.Del(ctx, key).Err()
		return model.Session{}, model.ErrNotFound
	}
	sess.ID = id

	if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
		return model.Session{}, fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}

	return sess, nil
}

// Save overwrites an existing session. It never resurrects a destroyed one.
func (s *Store) Save(ctx context.Context, sess model.Session) error {
	if sess.ID == "" {
		return model.ErrNotFound
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	ok, err := s.rdb.SetXX(ctx, s.key(sess.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	if !ok {
		return model.ErrNotFound
	}
	return nil
}

// Regenerate writes sess under a new id and then drops the old id. Once the
// new id is written it is returned even if the old one could not be removed;
// the stale key then lives out its TTL.
func (s *Store) Regenerate(ctx context.Context, sess model.Session) (model.Session, error) {
	oldID := sess.ID

	fresh, err := s.Create(ctx, sess)
	if err != nil {
		return model.Session{}, err
	}

	if oldID != "" {
		if err := s.Destroy(ctx, oldID); err != nil {
			s.logger.Error("Session store: failed to drop regenerated session",
				"error", err.Error())
		}
	}

	return fresh, nil
}

// Destroy removes the session. Destroying an unknown id is not an error.
func (s *Store) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.rdb.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
	}
	return nil
}
