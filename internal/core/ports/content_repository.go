package ports

import (
	"context"

	"github.com/devagency/agency-api/internal/core/domain"
)

// ServiceRequestRepository defines persistence operations for service requests.
type ServiceRequestRepository interface {
	Create(ctx context.Context, req *domain.ServiceRequest) error
	// FindByID returns the request with its owner and assignee projections.
	FindByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	List(ctx context.Context, filter domain.ServiceRequestFilter) ([]*domain.ServiceRequest, int64, error)
	Update(ctx context.Context, req *domain.ServiceRequest) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*domain.ServiceRequestStats, error)
	CountByUser(ctx context.Context, userID string) (total, pending, completed int64, err error)
}

// NotificationRepository defines persistence operations for notifications.
// Every mutating call is scoped to the owning user.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id, userID string) error
}

// ContactRepository defines persistence operations for contact submissions.
type ContactRepository interface {
	Create(ctx context.Context, c *domain.Contact) error
	FindByID(ctx context.Context, id string) (*domain.Contact, error)
	List(ctx context.Context, filter domain.ContactFilter) ([]*domain.Contact, int64, error)
	UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) (*domain.Contact, error)
	Delete(ctx context.Context, id string) error
}

// ProjectRepository defines persistence operations for portfolio projects.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, int64, error)
	ListFeatured(ctx context.Context, limit int) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
	ToggleFeatured(ctx context.Context, id string) (*domain.Project, error)
}

// ActivityRepository persists the audit trail.
type ActivityRepository interface {
	Insert(ctx context.Context, entry *domain.ActivityLog) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.ActivityLog, error)
}
