package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

type serviceRequestService struct {
	repo          ports.ServiceRequestRepository
	users         ports.UserRepository
	notifications ports.NotificationRepository
	activity      ports.ActivityRecorder
	now           func() time.Time
	log           zerolog.Logger
}

// NewServiceRequestService returns the service request use cases. Clients only
// ever see and edit their own requests; staff see all of them.
func NewServiceRequestService(
	repo ports.ServiceRequestRepository,
	users ports.UserRepository,
	notifications ports.NotificationRepository,
	activity ports.ActivityRecorder,
	log zerolog.Logger,
) ports.ServiceRequestService {
	return &serviceRequestService{
		repo:          repo,
		users:         users,
		notifications: notifications,
		activity:      activity,
		now:           time.Now,
		log:           log,
	}
}

func (s *serviceRequestService) Create(ctx context.Context, actor ports.Actor, in ports.CreateServiceRequestInput) (*domain.ServiceRequest, error) {
	projectName := strings.TrimSpace(in.ProjectName)
	serviceType := strings.TrimSpace(in.ServiceType)
	description := strings.TrimSpace(in.Description)
	switch {
	case utf8.RuneCountInString(projectName) < 3 || utf8.RuneCountInString(projectName) > 255:
		return nil, domain.NewValidationError("projectName", "Project name must be between 3 and 255 characters")
	case serviceType == "":
		return nil, domain.NewValidationError("serviceType", "Service type is required")
	case utf8.RuneCountInString(description) < 10:
		return nil, domain.NewValidationError("description", "Description must be at least 10 characters")
	}

	now := s.now().UTC()
	req := &domain.ServiceRequest{
		ID:               uuid.NewString(),
		UserID:           actor.UserID,
		ProjectName:      projectName,
		ServiceType:      serviceType,
		Description:      description,
		BudgetRange:      strings.TrimSpace(in.BudgetRange),
		ExpectedTimeline: strings.TrimSpace(in.ExpectedTimeline),
		Status:           domain.RequestPending,
		Priority:         domain.PriorityNormal,
		Progress:         0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create service request: %w", err)
	}

	s.log.Info().Str("request_id", req.ID).Str("user_id", actor.UserID).Msg("service request created")
	return req, nil
}

func (s *serviceRequestService) List(ctx context.Context, actor ports.Actor, status domain.RequestStatus, page domain.Page) ([]*domain.ServiceRequest, domain.Pagination, error) {
	if status != "" && !status.Valid() {
		return nil, domain.Pagination{}, domain.NewValidationError("status", "invalid status filter")
	}

	filter := domain.ServiceRequestFilter{
		Status: status,
		Page:   page.Normalize(domain.DefaultPageLimit),
	}
	if !actor.Role.IsStaff() {
		filter.UserID = actor.UserID
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("list service requests: %w", err)
	}
	return items, domain.NewPagination(filter.Page, total), nil
}

func (s *serviceRequestService) Get(ctx context.Context, actor ports.Actor, id string) (*domain.ServiceRequest, error) {
	return s.load(ctx, actor, id)
}

// Update applies the subset of patch the actor's role may change. Fields
// outside that subset are ignored.
func (s *serviceRequestService) Update(ctx context.Context, actor ports.Actor, id string, patch ports.ServiceRequestPatch) (*domain.ServiceRequest, error) {
	req, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if actor.Role.IsStaff() {
		if err := s.applyStaffPatch(ctx, req, patch); err != nil {
			return nil, err
		}
	} else {
		if patch.Description != nil {
			desc := strings.TrimSpace(*patch.Description)
			if utf8.RuneCountInString(desc) < 10 {
				return nil, domain.NewValidationError("description", "Description must be at least 10 characters")
			}
			req.Description = desc
		}
		if patch.BudgetRange != nil {
			req.BudgetRange = strings.TrimSpace(*patch.BudgetRange)
		}
	}
	req.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("update service request: %w", err)
	}
	s.recordUpdate(ctx, actor, req.ID, "updated")
	return s.repo.FindByID(ctx, id)
}

func (s *serviceRequestService) Delete(ctx context.Context, actor ports.Actor, id string) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete service request: %w", err)
	}
	return nil
}

func (s *serviceRequestService) UpdateStatus(ctx context.Context, actor ports.Actor, id string, status domain.RequestStatus) (*domain.ServiceRequest, error) {
	if !actor.Role.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "status must be one of: pending in-progress review completed cancelled")
	}

	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status == status {
		return req, nil
	}

	req.Status = status
	req.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	kind := domain.NotificationInfo
	if status == domain.RequestCompleted {
		kind = domain.NotificationSuccess
	}
	s.notify(ctx, req.UserID, "Service request updated",
		fmt.Sprintf("Your request %q is now %s.", req.ProjectName, status), kind, req.ID)
	s.recordUpdate(ctx, actor, req.ID, "status "+string(status))

	return req, nil
}

func (s *serviceRequestService) Assign(ctx context.Context, actor ports.Actor, id, assigneeID string) (*domain.ServiceRequest, error) {
	if !actor.Role.IsStaff() {
		return nil, domain.ErrForbidden
	}

	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, assigneeID); err != nil {
		return nil, err
	}

	req.AssignedTo = assigneeID
	req.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("assign service request: %w", err)
	}

	s.notify(ctx, assigneeID, "New assignment",
		fmt.Sprintf("You have been assigned to %q.", req.ProjectName), domain.NotificationInfo, req.ID)
	s.recordUpdate(ctx, actor, req.ID, "assigned "+assigneeID)

	return s.repo.FindByID(ctx, id)
}

func (s *serviceRequestService) Stats(ctx context.Context) (*domain.ServiceRequestStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("service request stats: %w", err)
	}
	return stats, nil
}

// load fetches a request and enforces ownership for non-staff actors.
func (s *serviceRequestService) load(ctx context.Context, actor ports.Actor, id string) (*domain.ServiceRequest, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStaff() && !req.OwnedBy(actor.UserID) {
		return nil, domain.ErrForbidden
	}
	return req, nil
}

func (s *serviceRequestService) applyStaffPatch(ctx context.Context, req *domain.ServiceRequest, patch ports.ServiceRequestPatch) error {
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return domain.NewValidationError("status", "status must be one of: pending in-progress review completed cancelled")
		}
		req.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return domain.NewValidationError("priority", "priority must be one of: low normal high urgent")
		}
		req.Priority = *patch.Priority
	}
	if patch.Progress != nil {
		if *patch.Progress < 0 || *patch.Progress > 100 {
			return domain.NewValidationError("progress", "progress must be between 0 and 100")
		}
		req.Progress = *patch.Progress
	}
	if patch.AssignedTo != nil {
		if *patch.AssignedTo != "" {
			if err := s.checkAssignee(ctx, *patch.AssignedTo); err != nil {
				return err
			}
		}
		req.AssignedTo = *patch.AssignedTo
	}
	if patch.EstimatedCompletion != nil {
		req.EstimatedCompletion = patch.EstimatedCompletion
	}
	if patch.ActualCompletion != nil {
		req.ActualCompletion = patch.ActualCompletion
	}
	if patch.Notes != nil {
		req.Notes = *patch.Notes
	}
	return nil
}

func (s *serviceRequestService) checkAssignee(ctx context.Context, assigneeID string) error {
	assignee, err := s.users.FindByID(ctx, assigneeID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.NewValidationError("assignedTo", "assignee not found")
	}
	if err != nil {
		return err
	}
	if !assignee.Role.IsStaff() {
		return domain.NewValidationError("assignedTo", "assignee must be a staff member")
	}
	return nil
}

func (s *serviceRequestService) notify(ctx context.Context, userID, title, message string, kind domain.NotificationType, requestID string) {
	if s.notifications == nil || userID == "" {
		return
	}
	n := &domain.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      kind,
		Link:      "/dashboard/requests/" + requestID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Str("request_id", requestID).Msg("failed to create notification")
	}
}

func (s *serviceRequestService) recordUpdate(ctx context.Context, actor ports.Actor, requestID, description string) {
	if s.activity == nil {
		return
	}
	s.activity.Record(ctx, domain.ActivityLog{
		UserID:      actor.UserID,
		Action:      domain.ActionRequestUpdate,
		EntityType:  "service_request",
		EntityID:    requestID,
		Description: description,
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
}
