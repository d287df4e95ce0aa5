package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

type activityService struct {
	repo ports.ActivityRepository
	now  func() time.Time
	log  zerolog.Logger
}

// NewActivityService returns an ActivityRecorder backed by repo. A nil repo
// discards entries and lists nothing.
func NewActivityService(repo ports.ActivityRepository, log zerolog.Logger) ports.ActivityRecorder {
	return &activityService{repo: repo, now: time.Now, log: log}
}

// Record persists entry. Failures are logged and swallowed.
func (s *activityService) Record(ctx context.Context, entry domain.ActivityLog) {
	if s.repo == nil {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	if err := s.repo.Insert(ctx, &entry); err != nil {
		s.log.Warn().Err(err).
			Str("user_id", entry.UserID).
			Str("action", entry.Action).
			Msg("failed to record activity")
	}
}

func (s *activityService) List(ctx context.Context, userID string, limit int) ([]*domain.ActivityLog, error) {
	if s.repo == nil {
		return []*domain.ActivityLog{}, nil
	}
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	return s.repo.ListByUser(ctx, userID, limit)
}
