//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/primus-the-first/TutorMind-sub001/internal/model"
	repo "github.com/primus-the-first/TutorMind-sub001/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "tutormind_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/tutormind_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func connect(t *testing.T) *repo.Connection {
	t.Helper()
	conn, err := repo.NewConnection(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newUser(username, email string) model.User {
	now := time.Now().UTC()
	return model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: "$argon2id$placeholder",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_Integration(t *testing.T) {
	ctx := context.Background()
	ur := repo.NewUserRepository(connect(t))

	u := newUser("alice", "alice@example.com")
	saved, err := ur.Create(ctx, u)
	require.NoError(t, err)
	require.Equal(t, u.ID, saved.ID)

	byEmail, err := ur.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	byID, err := ur.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", byID.Username)

	conflicts, err := ur.FindConflicts(ctx, "alice", "other@example.com")
	require.NoError(t, err)
	require.True(t, conflicts.UsernameTaken)
	require.False(t, conflicts.EmailTaken)

	_, err = ur.Create(ctx, newUser("alice2", "Alice@Example.com"))
	require.ErrorIs(t, err, model.ErrConflict)

	require.NoError(t, ur.UpdatePasswordHash(ctx, u.ID, "$argon2id$rotated"))
	byID, err = ur.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "$argon2id$rotated", byID.PasswordHash)

	_, err = ur.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestRememberTokenRepository_CascadeOnUserDelete(t *testing.T) {
	ctx := context.Background()
	conn := connect(t)
	ur := repo.NewUserRepository(conn)
	tr := repo.NewRememberTokenRepository(conn)

	u := newUser("user42", "user42@example.com")
	_, err := ur.Create(ctx, u)
	require.NoError(t, err)

	for _, sel := range []string{"00000000000000000000000000000001", "00000000000000000000000000000002"} {
		require.NoError(t, tr.Create(ctx, model.RememberToken{
			UserID:          u.ID,
			Selector:        sel,
			HashedValidator: make([]byte, 32),
			ExpiresAt:       time.Now().Add(time.Hour),
		}))
	}

	got, err := tr.GetBySelector(ctx, "00000000000000000000000000000001")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)

	_, err = conn.Exec(ctx, `DELETE FROM users WHERE id = $1`, u.ID)
	require.NoError(t, err)

	_, err = tr.GetBySelector(ctx, "00000000000000000000000000000001")
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = tr.GetBySelector(ctx, "00000000000000000000000000000002")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestRememberTokenRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	conn := connect(t)
	ur := repo.NewUserRepository(conn)
	tr := repo.NewRememberTokenRepository(conn)

	u := newUser("expiring", "expiring@example.com")
	_, err := ur.Create(ctx, u)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, tr.Create(ctx, model.RememberToken{
		UserID: u.ID, Selector: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", HashedValidator: []byte{1}, ExpiresAt: now.Add(-time.Minute),
	}))
	require.NoError(t, tr.Create(ctx, model.RememberToken{
		UserID: u.ID, Selector: "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", HashedValidator: []byte{2}, ExpiresAt: now.Add(time.Hour),
	}))

	n, err := tr.DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.NoError(t, tr.DeleteByUserID(ctx, u.ID))
	_, err = tr.GetBySelector(ctx, "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestLoginAttemptRepository_Integration(t *testing.T) {
	ctx := context.Background()
	lr := repo.NewLoginAttemptRepository(connect(t))

	now := time.Now().UTC()
	require.NoError(t, lr.Record(ctx, model.LoginAttempt{IPAddress: "10.0.0.1", Username: "bob@example.com", AttemptTime: now.Add(-10 * time.Minute)}))
	require.NoError(t, lr.Record(ctx, model.LoginAttempt{IPAddress: "10.0.0.2", Username: "bob@example.com", AttemptTime: now.Add(-5 * time.Minute)}))
	require.NoError(t, lr.Record(ctx, model.LoginAttempt{IPAddress: "10.0.0.1", Username: "eve@example.com", AttemptTime: now.Add(-48 * time.Hour)}))

	stats, err := lr.Stats(ctx, "10.0.0.1", "bob@example.com", now.Add(-15*time.Minute))
	require.NoError(t, err)
	require.Equal(t, 2, stats.Count)
	require.WithinDuration(t, now.Add(-10*time.Minute), stats.Earliest, time.Second)

	empty, err := lr.Stats(ctx, "192.168.1.1", "nobody@example.com", now.Add(-15*time.Minute))
	require.NoError(t, err)
	require.Zero(t, empty.Count)
	require.True(t, empty.Earliest.IsZero())

	require.NoError(t, lr.Record(ctx, model.LoginAttempt{IPAddress: "10.0.0.3", Username: "carol@example.com", AttemptTime: now.Add(-48 * time.Hour)}))
	require.NoError(t, lr.Record(ctx, model.LoginAttempt{IPAddress: "10.0.0.3", Username: "carol@example.com", AttemptTime: now.Add(-time.Minute)}))

	// Clears bob from every address and everything else seen from 10.0.0.1.
	require.NoError(t, lr.DeleteMatching(ctx, "10.0.0.1", "bob@example.com"))
	stats, err = lr.Stats(ctx, "10.0.0.1", "bob@example.com", now.Add(-72*time.Hour))
	require.NoError(t, err)
	require.Zero(t, stats.Count)

	stats, err = lr.Stats(ctx, "10.0.0.3", "carol@example.com", now.Add(-72*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 2, stats.Count)

	n, err := lr.DeleteBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}
