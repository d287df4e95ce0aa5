package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

type stubAvatarStore struct {
	putFn func(ctx context.Context, userID string, body io.Reader, size int64, contentType string) (string, error)
}

func (s *stubAvatarStore) PutAvatar(ctx context.Context, userID string, body io.Reader, size int64, contentType string) (string, error) {
	return s.putFn(ctx, userID, body, size, contentType)
}

func newTestUserService(avatars ports.AvatarStore) (*stubUserRepo, *stubActivity, ports.UserService) {
	users := newStubUserRepo(
		&domain.User{ID: "admin-1", Name: "Root", Email: "root@example.com", Role: domain.RoleSuperAdmin, Status: domain.StatusActive},
		&domain.User{ID: "client-1", Name: "Client", Email: "client@example.com", Role: domain.RoleClient, Status: domain.StatusActive},
	)
	requests := newStubRequestRepo(
		&domain.ServiceRequest{ID: "r1", UserID: "client-1", Status: domain.RequestPending},
		&domain.ServiceRequest{ID: "r2", UserID: "client-1", Status: domain.RequestCompleted},
	)
	activity := &stubActivity{}
	svc := NewUserService(users, requests, &stubNotificationRepo{unread: 3}, NewBcryptHasher(bcrypt.MinCost), avatars, activity, zerolog.Nop())
	return users, activity, svc
}

func TestUserService_Delete_Self(t *testing.T) {
	_, _, svc := newTestUserService(nil)
	actor := ports.Actor{UserID: "admin-1", Role: domain.RoleSuperAdmin}

	if err := svc.Delete(context.Background(), actor, "admin-1"); !errors.Is(err, domain.ErrCannotDeleteSelf) {
		t.Fatalf("expected ErrCannotDeleteSelf, got %v", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	users, activity, svc := newTestUserService(nil)
	actor := ports.Actor{UserID: "admin-1", Role: domain.RoleSuperAdmin}
	ctx := context.Background()

	if err := svc.Delete(ctx, actor, "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, actor, "client-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := users.FindByID(ctx, "client-1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user to be removed")
	}
	if got := activity.actions(); len(got) != 1 || got[0] != domain.ActionUserDelete {
		t.Fatalf("expected delete to be recorded, got %v", got)
	}
}

func TestUserService_Create(t *testing.T) {
	users, _, svc := newTestUserService(nil)
	ctx := context.Background()
	actor := ports.Actor{UserID: "admin-1", Role: domain.RoleSuperAdmin}

	user, err := svc.Create(ctx, actor, ports.CreateUserInput{Name: "New", Email: "New@Example.com", Password: "pw123456"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if user.Role != domain.RoleClient || user.PasswordHash != "" {
		t.Fatalf("unexpected user: %+v", user)
	}
	stored, _ := users.FindByEmail(ctx, "new@example.com")
	if stored == nil || stored.PasswordHash == "" {
		t.Fatalf("expected stored user with hash")
	}

	if _, err := svc.Create(ctx, actor, ports.CreateUserInput{Name: "Dup", Email: "client@example.com", Password: "x"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	var verr *domain.ValidationError
	if _, err := svc.Create(ctx, actor, ports.CreateUserInput{Name: "Bad", Email: "bad@example.com", Password: "x", Role: "owner"}); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for unknown role, got %v", err)
	}
}

func TestUserService_Update_RoleAndStatus(t *testing.T) {
	_, _, svc := newTestUserService(nil)
	actor := ports.Actor{UserID: "admin-1", Role: domain.RoleSuperAdmin}

	role := domain.RoleAdmin
	status := domain.StatusSuspended
	user, err := svc.Update(context.Background(), actor, "client-1", ports.UpdateUserInput{Role: &role, Status: &status})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if user.Role != domain.RoleAdmin || user.Status != domain.StatusSuspended {
		t.Fatalf("unexpected user: %+v", user)
	}

	bogus := domain.UserStatus("banned")
	var verr *domain.ValidationError
	if _, err := svc.Update(context.Background(), actor, "client-1", ports.UpdateUserInput{Status: &bogus}); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestUserService_Get_Detail(t *testing.T) {
	_, _, svc := newTestUserService(nil)

	detail, err := svc.Get(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	want := domain.UserActivityStats{TotalRequests: 2, PendingRequests: 1, CompletedRequests: 1, UnreadNotifications: 3}
	if detail.Stats != want {
		t.Fatalf("expected stats %+v, got %+v", want, detail.Stats)
	}
	if len(detail.RecentRequests) != 2 {
		t.Fatalf("expected 2 recent requests, got %d", len(detail.RecentRequests))
	}
}

func TestUserService_UploadAvatar(t *testing.T) {
	t.Run("storage not configured", func(t *testing.T) {
		_, _, svc := newTestUserService(nil)
		_, err := svc.UploadAvatar(context.Background(), "client-1", ports.AvatarUpload{ContentType: "image/png"})
		if !errors.Is(err, domain.ErrStorageUnavailable) {
			t.Fatalf("expected ErrStorageUnavailable, got %v", err)
		}
	})

	t.Run("stores image and updates url", func(t *testing.T) {
		store := &stubAvatarStore{putFn: func(_ context.Context, userID string, body io.Reader, _ int64, _ string) (string, error) {
			data, _ := io.ReadAll(body)
			if string(data) != "png-bytes" {
				t.Fatalf("unexpected body %q", data)
			}
			return "http://cdn.local/avatars/" + userID + ".png", nil
		}}
		_, _, svc := newTestUserService(store)

		user, err := svc.UploadAvatar(context.Background(), "client-1", ports.AvatarUpload{
			Body:        strings.NewReader("png-bytes"),
			Size:        9,
			ContentType: "image/png",
		})
		if err != nil {
			t.Fatalf("UploadAvatar returned error: %v", err)
		}
		if user.AvatarURL != "http://cdn.local/avatars/client-1.png" {
			t.Fatalf("unexpected avatar url %q", user.AvatarURL)
		}
	})

	t.Run("rejects non images", func(t *testing.T) {
		_, _, svc := newTestUserService(&stubAvatarStore{})
		var verr *domain.ValidationError
		_, err := svc.UploadAvatar(context.Background(), "client-1", ports.AvatarUpload{ContentType: "application/pdf"})
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}
