package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

const maxNotificationTitle = 255

type notificationService struct {
	repo  ports.NotificationRepository
	users ports.UserRepository
	now   func() time.Time
	log   zerolog.Logger
}

func NewNotificationService(repo ports.NotificationRepository, users ports.UserRepository, log zerolog.Logger) ports.NotificationService {
	return &notificationService{repo: repo, users: users, now: time.Now, log: log}
}

func (s *notificationService) List(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, domain.Pagination, error) {
	filter.Page = filter.Page.Normalize(20)
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("list notifications: %w", err)
	}
	return items, domain.NewPagination(filter.Page, total), nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error) {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	s.log.Debug().Str("user_id", userID).Int64("updated", n).Msg("notifications marked read")
	return nil
}

func (s *notificationService) Delete(ctx context.Context, id, userID string) error {
	return s.repo.Delete(ctx, id, userID)
}

func (s *notificationService) Create(ctx context.Context, in ports.CreateNotificationInput) (*domain.Notification, error) {
	title := strings.TrimSpace(in.Title)
	message := strings.TrimSpace(in.Message)
	switch {
	case in.UserID == "":
		return nil, domain.NewValidationError("userId", "userId is required")
	case title == "" || utf8.RuneCountInString(title) > maxNotificationTitle:
		return nil, domain.NewValidationError("title", "title must be between 1 and 255 characters")
	case message == "":
		return nil, domain.NewValidationError("message", "message is required")
	}

	kind := in.Type
	if kind == "" {
		kind = domain.NotificationInfo
	}
	if !kind.Valid() {
		return nil, domain.NewValidationError("type", "type must be one of: info success warning error")
	}

	if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
		return nil, err
	}

	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Title:     title,
		Message:   message,
		Type:      kind,
		Link:      strings.TrimSpace(in.Link),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}
