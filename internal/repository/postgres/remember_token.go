package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/primus-the-first/TutorMind-sub001/internal/model"
)

var _ model.RememberTokenStore = (*RememberTokenRepository)(nil)

type RememberTokenRepository struct {
	db *Connection
}

func NewRememberTokenRepository(db *Connection) *RememberTokenRepository {
	return &RememberTokenRepository{db: db}
}

func (r *RememberTokenRepository) Create(ctx context.Context, token model.RememberToken) error {
	const query = `
        INSERT INTO user_tokens (user_id, selector, hashed_validator, expires_at, created_at)
        VALUES ($1, $2, $3, $4, NOW())
    `

	if _, err := r.db.Exec(ctx, query,
		token.UserID, token.Selector, token.HashedValidator, token.ExpiresAt,
	); err != nil {
		if isUniqueViolation(err) {
			return model.ErrConflict
		}
		return fmt.Errorf("failed to create remember token: %w", err)
	}
	return nil
}

func (r *RememberTokenRepository) GetBySelector(ctx context.Context, selector string) (model.RememberToken, error) {
	const query = `
        SELECT id, user_id, selector, hashed_validator, expires_at, created_at
        FROM user_tokens
        WHERE selector = $1
    `

	var t model.RememberToken
	if err := r.db.QueryRow(ctx, query, selector).Scan(
		&t.ID, &t.UserID, &t.Selector, &t.HashedValidator, &t.ExpiresAt, &t.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RememberToken{}, model.ErrNotFound
		}
		return model.RememberToken{}, fmt.Errorf("failed to get remember token: %w", err)
	}
	return t, nil
}

func (r *RememberTokenRepository) DeleteBySelector(ctx context.Context, selector string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_tokens WHERE selector = $1`, selector); err != nil {
		return fmt.Errorf("failed to delete remember token: %w", err)
	}
	return nil
}

func (r *RememberTokenRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user remember tokens: %w", err)
	}
	return nil
}

func (r *RememberTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired remember tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
