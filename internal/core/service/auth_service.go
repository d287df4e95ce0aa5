package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

// timingPad is hashed once so that logins for unknown emails cost the same
// bcrypt comparison as logins with a wrong password.
const timingPad = "agency-api:unknown-account"

// AuthService implements registration, login and self-service account operations.
type AuthService struct {
	users     ports.UserRepository
	sessions  ports.SessionService
	tokens    ports.TokenIssuer
	hasher    ports.PasswordHasher
	activity  ports.ActivityRecorder
	ttl       time.Duration
	now       func() time.Time
	log       zerolog.Logger
	dummyHash string
}

func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionService,
	tokens ports.TokenIssuer,
	hasher ports.PasswordHasher,
	activity ports.ActivityRecorder,
	ttl time.Duration,
	log zerolog.Logger,
) *AuthService {
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	dummy, err := hasher.Hash(timingPad)
	if err != nil {
		log.Warn().Err(err).Msg("could not prepare timing pad hash")
	}
	return &AuthService{
		users:     users,
		sessions:  sessions,
		tokens:    tokens,
		hasher:    hasher,
		activity:  activity,
		ttl:       ttl,
		now:       time.Now,
		log:       log,
		dummyHash: dummy,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	switch {
	case name == "":
		return nil, domain.NewValidationError("name", "name is required")
	case email == "":
		return nil, domain.NewValidationError("email", "email is required")
	case in.Password == "":
		return nil, domain.NewValidationError("password", "password is required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleClient,
		Status:       domain.StatusActive,
		Phone:        strings.TrimSpace(in.Phone),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	result, err := s.openSession(ctx, user, in.RequestMeta)
	if err != nil {
		return nil, err
	}

	s.record(ctx, domain.ActivityLog{
		UserID:     user.ID,
		Action:     domain.ActionRegister,
		EntityType: "user",
		EntityID:   user.ID,
		IPAddress:  in.IPAddress,
		UserAgent:  in.UserAgent,
	})
	return result, nil
}

// Login verifies credentials and opens a new session. Unknown email, wrong
// password and non-active accounts all yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" {
		return nil, domain.NewValidationError("email", "email is required")
	}
	if in.Password == "" {
		return nil, domain.NewValidationError("password", "password is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		if s.dummyHash != "" {
			_ = s.hasher.Compare(s.dummyHash, in.Password)
		}
		s.log.Warn().Str("email", email).Str("reason", "unknown_email").Msg("login failed")
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		s.log.Warn().Str("user_id", user.ID).Str("reason", "bad_password").Msg("login failed")
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive() {
		s.log.Warn().Str("user_id", user.ID).Str("status", string(user.Status)).Msg("login refused for inactive account")
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.openSession(ctx, user, in.RequestMeta)
	if err != nil {
		return nil, err
	}

	loginAt := result.Session.CreatedAt
	if err := s.users.TouchLastLogin(ctx, user.ID, loginAt); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login")
	} else {
		result.User.LastLogin = &loginAt
	}

	s.record(ctx, domain.ActivityLog{
		UserID:    user.ID,
		Action:    domain.ActionLogin,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
	})
	return result, nil
}

// Logout revokes the session for the token. Unknown and expired tokens are
// not an error; only a live session's owner gets a logout entry.
func (s *AuthService) Logout(ctx context.Context, in ports.LogoutInput) error {
	var owner string
	session, err := s.sessions.Validate(ctx, in.Token)
	switch {
	case err == nil:
		owner = session.UserID
	case !errors.Is(err, domain.ErrSessionNotFound) && !errors.Is(err, domain.ErrSessionExpired):
		s.log.Warn().Err(err).Msg("logout: session lookup failed")
	}

	if err := s.sessions.Revoke(ctx, in.Token); err != nil {
		return err
	}
	if owner != "" {
		s.record(ctx, domain.ActivityLog{
			UserID:    owner,
			Action:    domain.ActionLogout,
			IPAddress: in.IPAddress,
			UserAgent: in.UserAgent,
		})
	}
	return nil
}

// Me returns the caller's full profile.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ports.ProfileInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "name is required")
		}
		user.Name = name
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*in.AvatarURL)
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *AuthService) Sessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	return s.sessions.ListActive(ctx, userID)
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User, meta ports.RequestMeta) (*ports.AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, s.now().Add(s.ttl))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	session, err := s.sessions.Create(ctx, user.ID, token, meta.IPAddress, meta.UserAgent)
	if err != nil {
		return nil, err
	}

	return &ports.AuthResult{User: user.Sanitized(), Token: token, Session: session}, nil
}

func (s *AuthService) record(ctx context.Context, entry domain.ActivityLog) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, entry)
}
