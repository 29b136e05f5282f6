package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/primus-the-first/TutorMind-sub001/internal/model"
)

// Ensure LoginAttemptRepository implements the model.LoginAttemptStore interface.
var _ model.LoginAttemptStore = (*LoginAttemptRepository)(nil)

type LoginAttemptRepository struct {
	db *Connection
}

func NewLoginAttemptRepository(db *Connection) *LoginAttemptRepository {
	return &LoginAttemptRepository{db: db}
}

func (r *LoginAttemptRepository) Record(ctx context.Context, attempt model.LoginAttempt) error {
	const query = `
        INSERT INTO login_attempts (ip_address, username, attempt_time)
        VALUES ($1, $2, $3)
    `

	if _, err := r.db.Exec(ctx, query, attempt.IPAddress, attempt.Username, attempt.AttemptTime); err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

func (r *LoginAttemptRepository) Stats(ctx context.Context, ip, username string, since time.Time) (model.AttemptStats, error) {
	const query = `
        SELECT COUNT(*), MIN(attempt_time)
        FROM login_attempts
        WHERE (ip_address = $1 OR username = $2) AND attempt_time > $3
    `

	var (
		count    int
		earliest pgtype.Timestamptz
	)
	if err := r.db.QueryRow(ctx, query, ip, username, since).Scan(&count, &earliest); err != nil {
		return model.AttemptStats{}, fmt.Errorf("failed to count login attempts: %w", err)
	}

	stats := model.AttemptStats{Count: count}
	if earliest.Valid {
		stats.Earliest = earliest.Time
	}
	return stats, nil
}

func (r *LoginAttemptRepository) DeleteMatching(ctx context.Context, ip, username string) error {
	const query = `DELETE FROM login_attempts WHERE ip_address = $1 OR username = $2`

	if _, err := r.db.Exec(ctx, query, ip, username); err != nil {
		return fmt.Errorf("failed to clear login attempts: %w", err)
	}
	return nil
}

func (r *LoginAttemptRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM login_attempts WHERE attempt_time < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune login attempts: %w", err)
	}
	return tag.RowsAffected(), nil
}
