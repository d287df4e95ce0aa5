package ports

import (
	"context"
	"time"

	"github.com/devagency/agency-api/internal/core/domain"
)

// UserRepository defines persistence operations for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	// FindByEmail looks up a user by normalized (lowercase) email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, int64, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Stats(ctx context.Context) (*domain.UserStats, error)
}

// SessionRepository defines persistence operations for login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	// GetSessionWithUser returns the session for token joined with the
	// owner's public fields (id, name, email, role, status).
	GetSessionWithUser(ctx context.Context, token string) (*domain.Session, error)
	// DeleteByToken removes the session for token. Deleting a missing
	// token is not an error.
	DeleteByToken(ctx context.Context, token string) error
	// DeleteExpired removes every session with expires_at < now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]*domain.Session, error)
}
