package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/infrastructure/db/postgres"
)

func TestSessionRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := postgres.NewSessionRepository(mock)
	now := time.Now().UTC()
	s := &domain.Session{
		ID: "s1", UserID: "u1", Token: "tok", IPAddress: "127.0.0.1", UserAgent: "go-test",
		CreatedAt: now, ExpiresAt: now.Add(domain.DefaultSessionTTL),
	}

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(s.ID, s.UserID, s.Token, s.IPAddress, s.UserAgent, s.ExpiresAt, s.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), s))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetSessionWithUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := postgres.NewSessionRepository(mock)
	ctx := context.Background()
	now := time.Now().UTC()
	columns := []string{
		"id", "user_id", "token", "ip_address", "user_agent", "expires_at", "created_at",
		"id", "name", "email", "role", "status",
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("FROM sessions s").
			WithArgs("tok").
			WillReturnRows(pgxmock.NewRows(columns).AddRow(
				"s1", "u1", "tok", "", "", now.Add(time.Hour), now,
				"u1", "Alice", "alice@example.com", domain.RoleAdmin, domain.StatusActive,
			))

		s, err := repo.GetSessionWithUser(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, "s1", s.ID)
		require.NotNil(t, s.User)
		assert.Equal(t, domain.RoleAdmin, s.User.Role)
		assert.Equal(t, domain.StatusActive, s.User.Status)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("FROM sessions s").
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		s, err := repo.GetSessionWithUser(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
		assert.Nil(t, s)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("FROM sessions s").
			WithArgs("tok").
			WillReturnError(fmt.Errorf("db error"))

		_, err := repo.GetSessionWithUser(ctx, "tok")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_DeleteByToken_MissingIsNotAnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := postgres.NewSessionRepository(mock)
	mock.ExpectExec("DELETE FROM sessions WHERE token").
		WithArgs("gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.DeleteByToken(context.Background(), "gone"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := postgres.NewSessionRepository(mock)
	now := time.Now().UTC()
	mock.ExpectExec("DELETE FROM sessions WHERE expires_at").
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.MatchExpectationsInOrder(false)
	for i := 0; i < postgres.SchemaStatements(); i++ {
		mock.ExpectExec("CREATE").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	require.NoError(t, postgres.EnsureSchema(context.Background(), mock))
	require.NoError(t, mock.ExpectationsWereMet())
}
