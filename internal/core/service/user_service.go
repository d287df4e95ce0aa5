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

const recentRequestsLimit = 5

type userService struct {
	users         ports.UserRepository
	requests      ports.ServiceRequestRepository
	notifications ports.NotificationRepository
	hasher        ports.PasswordHasher
	avatars       ports.AvatarStore
	activity      ports.ActivityRecorder
	now           func() time.Time
	log           zerolog.Logger
}

// NewUserService returns the admin user management service. avatars may be
// nil when object storage is not configured.
func NewUserService(
	users ports.UserRepository,
	requests ports.ServiceRequestRepository,
	notifications ports.NotificationRepository,
	hasher ports.PasswordHasher,
	avatars ports.AvatarStore,
	activity ports.ActivityRecorder,
	log zerolog.Logger,
) ports.UserService {
	return &userService{
		users:         users,
		requests:      requests,
		notifications: notifications,
		hasher:        hasher,
		avatars:       avatars,
		activity:      activity,
		now:           time.Now,
		log:           log,
	}
}

func (s *userService) List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, domain.Pagination, error) {
	filter.Page = filter.Page.Normalize(domain.DefaultPageLimit)
	filter.Search = strings.TrimSpace(filter.Search)

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("list users: %w", err)
	}
	for i, u := range users {
		users[i] = u.Sanitized()
	}
	return users, domain.NewPagination(filter.Page, total), nil
}

func (s *userService) Get(ctx context.Context, id string) (*ports.UserDetail, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	recent, _, err := s.requests.List(ctx, domain.ServiceRequestFilter{
		UserID: id,
		Page:   domain.Page{Number: 1, Limit: recentRequestsLimit},
	})
	if err != nil {
		return nil, fmt.Errorf("recent requests: %w", err)
	}

	total, pending, completed, err := s.requests.CountByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("request counts: %w", err)
	}
	unread, err := s.notifications.CountUnread(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("unread notifications: %w", err)
	}

	return &ports.UserDetail{
		User:           user.Sanitized(),
		RecentRequests: recent,
		Stats: domain.UserActivityStats{
			TotalRequests:       total,
			PendingRequests:     pending,
			CompletedRequests:   completed,
			UnreadNotifications: unread,
		},
	}, nil
}

func (s *userService) Create(ctx context.Context, actor ports.Actor, in ports.CreateUserInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if name == "" || email == "" || in.Password == "" {
		return nil, domain.NewValidationError("user", "name, email and password are required")
	}

	role := in.Role
	if role == "" {
		role = domain.RoleClient
	}
	if !role.Valid() {
		return nil, domain.NewValidationError("role", "role must be one of: client admin super_admin")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("create user: %w", err)
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
		Role:         role,
		Status:       domain.StatusActive,
		Phone:        strings.TrimSpace(in.Phone),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.record(ctx, actor, domain.ActionUserCreate, user.ID, "created "+user.Email)
	return user.Sanitized(), nil
}

func (s *userService) Update(ctx context.Context, actor ports.Actor, id string, in ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			user.Name = name
		}
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, domain.NewValidationError("role", "role must be one of: client admin super_admin")
		}
		user.Role = *in.Role
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, domain.NewValidationError("status", "status must be one of: active inactive suspended")
		}
		user.Status = *in.Status
	}
	if in.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*in.AvatarURL)
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.record(ctx, actor, domain.ActionUserUpdate, user.ID, "updated "+user.Email)
	return user.Sanitized(), nil
}

// Delete removes an account. Admins cannot delete themselves.
func (s *userService) Delete(ctx context.Context, actor ports.Actor, id string) error {
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}
	if actor.UserID == id {
		return domain.ErrCannotDeleteSelf
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.record(ctx, actor, domain.ActionUserDelete, id, "")
	return nil
}

func (s *userService) Stats(ctx context.Context) (*domain.UserStats, error) {
	stats, err := s.users.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("user stats: %w", err)
	}
	return stats, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID string, in ports.AvatarUpload) (*domain.User, error) {
	if s.avatars == nil {
		return nil, domain.ErrStorageUnavailable
	}
	if !strings.HasPrefix(in.ContentType, "image/") {
		return nil, domain.NewValidationError("avatar", "avatar must be an image")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.avatars.PutAvatar(ctx, userID, in.Body, in.Size, in.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}

	user.AvatarURL = url
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user.Sanitized(), nil
}

func (s *userService) Activity(ctx context.Context, userID string, limit int) ([]*domain.ActivityLog, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	if s.activity == nil {
		return []*domain.ActivityLog{}, nil
	}
	return s.activity.List(ctx, userID, limit)
}

func (s *userService) record(ctx context.Context, actor ports.Actor, action, targetID, description string) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, domain.ActivityLog{
		UserID:      actor.UserID,
		Action:      action,
		EntityType:  "user",
		EntityID:    targetID,
		Description: description,
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
}
