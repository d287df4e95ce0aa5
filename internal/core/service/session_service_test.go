package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/devagency/agency-api/internal/core/domain"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestSessionService(t *testing.T) (*stubSessionRepo, *fixedClock, *sessionService) {
	t.Helper()
	users := newStubUserRepo(&domain.User{ID: "u1", Email: "u1@example.com", Role: domain.RoleClient, Status: domain.StatusActive})
	repo := newStubSessionRepo(users)
	clock := &fixedClock{now: baseTime}
	svc := NewSessionService(repo, domain.DefaultSessionTTL, zerolog.Nop(), WithClock(clock.Now)).(*sessionService)
	return repo, clock, svc
}

func TestSessionService_Create_SetsSevenDayExpiry(t *testing.T) {
	_, _, svc := newTestSessionService(t)

	s, err := svc.Create(context.Background(), "u1", "tok-1", "203.0.113.7", "curl/8")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if want := baseTime.Add(7 * 24 * time.Hour); !s.ExpiresAt.Equal(want) {
		t.Fatalf("expected expiry %v, got %v", want, s.ExpiresAt)
	}
	if s.ID == "" || s.Token != "tok-1" || s.UserID != "u1" {
		t.Fatalf("unexpected session: %+v", s)
	}
}

func TestSessionService_Create_TruncatesLongIP(t *testing.T) {
	_, _, svc := newTestSessionService(t)

	long := "2001:0db8:85a3:0000:0000:8a2e:0370:7334:ffff:ffff:ffff"
	s, err := svc.Create(context.Background(), "u1", "tok-ip", long, "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(s.IPAddress) != maxIPLength {
		t.Fatalf("expected ip truncated to %d chars, got %d", maxIPLength, len(s.IPAddress))
	}
}

func TestSessionService_Validate_ReturnsSessionWithUser(t *testing.T) {
	_, _, svc := newTestSessionService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", "tok-1", "", ""); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	s, err := svc.Validate(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if s.User == nil || s.User.ID != "u1" {
		t.Fatalf("expected joined user, got %+v", s.User)
	}
}

func TestSessionService_Validate_ExpiryBoundary(t *testing.T) {
	tests := []struct {
		name    string
		offset  time.Duration
		wantErr error
	}{
		{name: "one second before expiry", offset: -time.Second},
		{name: "exactly at expiry", offset: 0, wantErr: domain.ErrSessionExpired},
		{name: "one second after expiry", offset: time.Second, wantErr: domain.ErrSessionExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, clock, svc := newTestSessionService(t)
			ctx := context.Background()

			s, err := svc.Create(ctx, "u1", "tok", "", "")
			if err != nil {
				t.Fatalf("Create returned error: %v", err)
			}
			clock.Set(s.ExpiresAt.Add(tt.offset))

			_, err = svc.Validate(ctx, "tok")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSessionService_Validate_ExpiredIsDeletedLazily(t *testing.T) {
	repo, clock, svc := newTestSessionService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", "tok", "", ""); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	clock.Set(baseTime.Add(8 * 24 * time.Hour))

	if _, err := svc.Validate(ctx, "tok"); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if repo.count() != 0 {
		t.Fatalf("expected expired session to be deleted")
	}
	if _, err := svc.Validate(ctx, "tok"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on second validate, got %v", err)
	}
}

func TestSessionService_Validate_ExpiredDeleteFailureStillRejects(t *testing.T) {
	repo, clock, svc := newTestSessionService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", "tok", "", ""); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	repo.deleteErr = errors.New("connection reset")
	clock.Set(baseTime.Add(8 * 24 * time.Hour))

	if _, err := svc.Validate(ctx, "tok"); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestSessionService_Validate_RacingSweep(t *testing.T) {
	tests := []struct {
		name    string
		hook    func(repo *stubSessionRepo, sweep func())
		wantErr error
	}{
		{
			name:    "swept before lookup",
			hook:    func(repo *stubSessionRepo, sweep func()) { repo.beforeGet = sweep },
			wantErr: domain.ErrSessionNotFound,
		},
		{
			name:    "swept between lookup and lazy delete",
			hook:    func(repo *stubSessionRepo, sweep func()) { repo.afterGet = sweep },
			wantErr: domain.ErrSessionExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, clock, svc := newTestSessionService(t)
			ctx := context.Background()

			if _, err := svc.Create(ctx, "u1", "tok", "", ""); err != nil {
				t.Fatalf("Create returned error: %v", err)
			}
			clock.Set(baseTime.Add(8 * 24 * time.Hour))

			var swept int64
			tt.hook(repo, func() {
				n, err := svc.SweepExpired(ctx)
				if err != nil {
					t.Errorf("SweepExpired returned error: %v", err)
				}
				swept += n
			})

			if _, err := svc.Validate(ctx, "tok"); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if swept != 1 {
				t.Fatalf("expected the sweep to remove 1 session, got %d", swept)
			}
			if repo.count() != 0 {
				t.Fatalf("expected no sessions left, got %d", repo.count())
			}
		})
	}
}

func TestSessionService_Validate_UnknownAndEmptyToken(t *testing.T) {
	_, _, svc := newTestSessionService(t)

	for _, token := range []string{"", "never-issued"} {
		if _, err := svc.Validate(context.Background(), token); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("token %q: expected ErrSessionNotFound, got %v", token, err)
		}
	}
}

func TestSessionService_Validate_RejectsForgedToken(t *testing.T) {
	users := newStubUserRepo(&domain.User{ID: "u1", Status: domain.StatusActive, Role: domain.RoleClient})
	repo := newStubSessionRepo(users)
	issuer := NewJWTIssuer("secret")
	svc := NewSessionService(repo, time.Hour, zerolog.Nop(), WithTokenVerifier(issuer))
	ctx := context.Background()

	forged, err := NewJWTIssuer("other-secret").Issue("u1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if _, err := svc.Create(ctx, "u1", forged, "", ""); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Validate(ctx, forged); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound for forged token, got %v", err)
	}
}

func TestSessionService_Validate_SubjectMismatch(t *testing.T) {
	users := newStubUserRepo(&domain.User{ID: "u1", Status: domain.StatusActive, Role: domain.RoleClient})
	repo := newStubSessionRepo(users)
	issuer := NewJWTIssuer("secret")
	svc := NewSessionService(repo, time.Hour, zerolog.Nop(), WithTokenVerifier(issuer))
	ctx := context.Background()

	token, err := issuer.Issue("u2", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if _, err := svc.Create(ctx, "u1", token, "", ""); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if _, err := svc.Validate(ctx, token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSessionService_Revoke_IsIdempotent(t *testing.T) {
	_, _, svc := newTestSessionService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", "tok", "", ""); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := svc.Revoke(ctx, "tok"); err != nil {
			t.Fatalf("Revoke #%d returned error: %v", i+1, err)
		}
	}
	if _, err := svc.Validate(ctx, "tok"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after revoke, got %v", err)
	}
	if err := svc.Revoke(ctx, ""); err != nil {
		t.Fatalf("Revoke with empty token returned error: %v", err)
	}
}

func TestSessionService_SweepExpired(t *testing.T) {
	repo, clock, svc := newTestSessionService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", "old", "", ""); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	clock.Set(baseTime.Add(6 * 24 * time.Hour))
	if _, err := svc.Create(ctx, "u1", "fresh", "", ""); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	clock.Set(baseTime.Add(7*24*time.Hour + time.Minute))

	n, err := svc.SweepExpired(ctx)
	if err != nil {
		t.Fatalf("SweepExpired returned error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 swept session, got %d", n)
	}
	if repo.count() != 1 {
		t.Fatalf("expected 1 remaining session, got %d", repo.count())
	}
	if _, err := svc.Validate(ctx, "fresh"); err != nil {
		t.Fatalf("fresh session should still validate: %v", err)
	}
}

func TestSessionService_ListActive(t *testing.T) {
	_, clock, svc := newTestSessionService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u1", "a", "", ""); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	clock.Set(baseTime.Add(3 * 24 * time.Hour))
	if _, err := svc.Create(ctx, "u1", "b", "", ""); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	clock.Set(baseTime.Add(7*24*time.Hour + time.Hour))

	sessions, err := svc.ListActive(ctx, "u1")
	if err != nil {
		t.Fatalf("ListActive returned error: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Token != "b" {
		t.Fatalf("expected only session b to be active, got %+v", sessions)
	}
}
