package ports

import (
	"context"

	"github.com/devagency/agency-api/internal/core/domain"
)

// RequestMeta carries client details recorded with sessions and audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// Actor is the authenticated caller of a use case.
type Actor struct {
	UserID string
	Role   domain.Role
	RequestMeta
}

// RegisterInput carries the self-registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	RequestMeta
}

// LoginInput carries submitted credentials.
type LoginInput struct {
	Email    string
	Password string
	RequestMeta
}

// LogoutInput identifies the session to revoke.
type LogoutInput struct {
	Token string
	RequestMeta
}

// AuthResult is returned by a successful login or registration.
// User never carries the password hash.
type AuthResult struct {
	User    *domain.User
	Token   string
	Session *domain.Session
}

// ProfileInput holds the self-service profile fields; nil means unchanged.
type ProfileInput struct {
	Name      *string
	Phone     *string
	AvatarURL *string
}

// AuthService verifies credentials and manages the caller's own account.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Logout(ctx context.Context, in LogoutInput) error
	Me(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.User, error)
	Sessions(ctx context.Context, userID string) ([]*domain.Session, error)
}

// SessionService is the session store: issue, validate, revoke and sweep.
type SessionService interface {
	Create(ctx context.Context, userID, token, ip, userAgent string) (*domain.Session, error)
	// Validate returns the live session for token. Missing or expired
	// sessions yield domain.ErrSessionNotFound or domain.ErrSessionExpired;
	// an expired row is deleted as a side effect.
	Validate(ctx context.Context, token string) (*domain.Session, error)
	Revoke(ctx context.Context, token string) error
	SweepExpired(ctx context.Context) (int64, error)
	ListActive(ctx context.Context, userID string) ([]*domain.Session, error)
}
