package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/primus-the-first/TutorMind-sub001/internal/logger"
	"github.com/primus-the-first/TutorMind-sub001/internal/model"
)

const (
	selectorBytes  = 16
	validatorBytes = 32
	tokenSeparator = ":"
)

// IssuedToken is a freshly minted remember-me credential. Value is only ever
// held by the client.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// RememberService issues and validates selector:validator persistent login tokens.
type RememberService struct {
	tokens model.RememberTokenStore
	users  model.UserStore
	ttl    time.Duration
	logger *logger.Logger
	now    func() time.Time
}

func NewRememberService(tokens model.RememberTokenStore, users model.UserStore, ttl time.Duration, logger *logger.Logger) *RememberService {
	return &RememberService{
		tokens: tokens,
		users:  users,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Issue persists a new token for userID and returns its client value.
func (s *RememberService) Issue(ctx context.Context, userID uuid.UUID) (IssuedToken, error) {
	selector, err := randomHex(selectorBytes)
	if err != nil {
		return IssuedToken{}, err
	}

	validator := make([]byte, validatorBytes)
	if _, err := rand.Read(validator); err != nil {
		return IssuedToken{}, fmt.Errorf("failed to generate validator: %w", err)
	}

	expiresAt := s.now().Add(s.ttl).UTC()
	token := model.RememberToken{
		UserID:          userID,
		Selector:        selector,
		HashedValidator: hashValidator(validator),
		ExpiresAt:       expiresAt,
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return IssuedToken{}, fmt.Errorf("failed to persist remember token: %w", err)
	}

	s.logger.Debug("Remember service: token issued",
		"user_id", userID.String(),
		"selector", selector)

	return IssuedToken{
		Value:     selector + tokenSeparator + hex.EncodeToString(validator),
		ExpiresAt: expiresAt,
	}, nil
}

// Validate resolves raw to its owner. Every failure wraps one of the
// model.ErrToken* sentinels or a store error. Only the sentinels condemn the
// token; neither kind may be told apart in anything a client can see.
func (s *RememberService) Validate(ctx context.Context, raw string) (model.User, model.RememberToken, error) {
	selector, validator, err := parseToken(raw)
	if err != nil {
		return model.User{}, model.RememberToken{}, err
	}

	token, err := s.tokens.GetBySelector(ctx, selector)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, model.RememberToken{}, fmt.Errorf("%w: unknown selector", model.ErrTokenMismatch)
	}
	if err != nil {
		return model.User{}, model.RememberToken{}, fmt.Errorf("failed to load remember token: %w", err)
	}

	if token.Expired(s.now()) {
		if err := s.tokens.DeleteBySelector(ctx, selector); err != nil {
			s.logger.Warn("Remember service: failed to delete expired token",
				"selector", selector,
				"error", err.Error())
		}
		return model.User{}, model.RememberToken{}, model.ErrTokenExpired
	}

	if subtle.ConstantTimeCompare(hashValidator(validator), token.HashedValidator) != 1 {
		return model.User{}, model.RememberToken{}, model.ErrTokenMismatch
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if errors.Is(err, model.ErrNotFound) {
		_ = s.tokens.DeleteBySelector(ctx, selector)
		return model.User{}, model.RememberToken{}, model.ErrTokenOrphaned
	}
	if err != nil {
		return model.User{}, model.RememberToken{}, fmt.Errorf("failed to load token owner: %w", err)
	}

	return user, token, nil
}

// Rotate replaces a consumed token. The new token is written before the old
// selector is deleted.
func (s *RememberService) Rotate(ctx context.Context, old model.RememberToken) (IssuedToken, error) {
	issued, err := s.Issue(ctx, old.UserID)
	if err != nil {
		return IssuedToken{}, err
	}

	if err := s.tokens.DeleteBySelector(ctx, old.Selector); err != nil {
		return IssuedToken{}, fmt.Errorf("failed to delete rotated remember token: %w", err)
	}

	return issued, nil
}

// Revoke deletes the token raw refers to. Malformed input is ignored.
func (s *RememberService) Revoke(ctx context.Context, raw string) error {
	selector, _, err := parseToken(raw)
	if err != nil {
		return nil
	}
	if err := s.tokens.DeleteBySelector(ctx, selector); err != nil {
		return fmt.Errorf("failed to revoke remember token: %w", err)
	}
	return nil
}

// RevokeAllForUser drops every persistent login of userID.
func (s *RememberService) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.tokens.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke remember tokens: %w", err)
	}
	return nil
}

// PurgeExpired deletes tokens past their expiry.
func (s *RememberService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge remember tokens: %w", err)
	}
	return n, nil
}

// parseToken splits "selector:validator" and decodes the validator.
func parseToken(raw string) (string, []byte, error) {
	selector, validatorHex, ok := strings.Cut(raw, tokenSeparator)
	if !ok || selector == "" || validatorHex == "" {
		return "", nil, model.ErrTokenMalformed
	}
	if len(selector) != selectorBytes*2 || len(validatorHex) != validatorBytes*2 {
		return "", nil, model.ErrTokenMalformed
	}
	if _, err := hex.DecodeString(selector); err != nil {
		return "", nil, model.ErrTokenMalformed
	}

	validator, err := hex.DecodeString(validatorHex)
	if err != nil {
		return "", nil, model.ErrTokenMalformed
	}

	return selector, validator, nil
}

func hashValidator(v []byte) []byte {
	sum := sha256.Sum256(v)
	return sum[:]
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
