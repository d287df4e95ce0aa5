package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

const maxIPLength = 45

type sessionService struct {
	repo     ports.SessionRepository
	verifier ports.TokenVerifier
	ttl      time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// SessionOption customises a session store.
type SessionOption func(*sessionService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) SessionOption {
	return func(s *sessionService) { s.now = now }
}

// WithTokenVerifier rejects tokens with a bad signature before any lookup.
func WithTokenVerifier(v ports.TokenVerifier) SessionOption {
	return func(s *sessionService) { s.verifier = v }
}

// NewSessionService returns the session store. A non-positive ttl falls back
// to domain.DefaultSessionTTL.
func NewSessionService(repo ports.SessionRepository, ttl time.Duration, log zerolog.Logger, opts ...SessionOption) ports.SessionService {
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	s := &sessionService{repo: repo, ttl: ttl, now: time.Now, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *sessionService) Create(ctx context.Context, userID, token, ip, userAgent string) (*domain.Session, error) {
	if userID == "" || token == "" {
		return nil, errors.New("create session: user id and token are required")
	}
	if len(ip) > maxIPLength {
		ip = ip[:maxIPLength]
	}

	now := s.now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (s *sessionService) Validate(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}

	var subject string
	if s.verifier != nil {
		sub, err := s.verifier.Verify(token)
		if err != nil {
			s.log.Debug().Err(err).Msg("bearer token rejected")
			return nil, domain.ErrSessionNotFound
		}
		subject = sub
	}

	session, err := s.repo.GetSessionWithUser(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("validate session: %w", err)
	}
	if subject != "" && subject != session.UserID {
		return nil, domain.ErrSessionNotFound
	}

	if session.ExpiredAt(s.now()) {
		if err := s.repo.DeleteByToken(ctx, token); err != nil {
			s.log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to delete expired session")
		}
		return nil, domain.ErrSessionExpired
	}

	return session, nil
}

func (s *sessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *sessionService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	if n > 0 {
		s.log.Info().Int64("deleted", n).Msg("expired sessions swept")
	}
	return n, nil
}

func (s *sessionService) ListActive(ctx context.Context, userID string) ([]*domain.Session, error) {
	sessions, err := s.repo.ListActiveByUser(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
