package ports

import (
	"context"
	"io"
	"time"

	"github.com/devagency/agency-api/internal/core/domain"
)

// CreateUserInput is the admin form for provisioning an account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
	Phone    string
}

// UpdateUserInput holds admin-editable fields; nil means unchanged.
type UpdateUserInput struct {
	Name      *string
	Phone     *string
	Role      *domain.Role
	Status    *domain.UserStatus
	AvatarURL *string
}

// UserDetail is the admin view of a single account.
type UserDetail struct {
	User           *domain.User
	RecentRequests []*domain.ServiceRequest
	Stats          domain.UserActivityStats
}

// AvatarUpload is an image received from the client.
type AvatarUpload struct {
	Body        io.Reader
	Size        int64
	ContentType string
}

// UserService covers administrative account management.
type UserService interface {
	List(ctx context.Context, filter domain.UserFilter) ([]*domain.User, domain.Pagination, error)
	Get(ctx context.Context, id string) (*UserDetail, error)
	Create(ctx context.Context, actor Actor, in CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, actor Actor, id string, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor Actor, id string) error
	Stats(ctx context.Context) (*domain.UserStats, error)
	UploadAvatar(ctx context.Context, userID string, in AvatarUpload) (*domain.User, error)
	Activity(ctx context.Context, userID string, limit int) ([]*domain.ActivityLog, error)
}

// CreateServiceRequestInput is the client's request form.
type CreateServiceRequestInput struct {
	ProjectName      string
	ServiceType      string
	Description      string
	BudgetRange      string
	ExpectedTimeline string
}

// ServiceRequestPatch holds updatable fields; nil means unchanged. Which
// fields apply depends on the actor's role.
type ServiceRequestPatch struct {
	Description         *string
	BudgetRange         *string
	Status              *domain.RequestStatus
	Priority            *domain.RequestPriority
	Progress            *int
	AssignedTo          *string
	EstimatedCompletion *time.Time
	ActualCompletion    *time.Time
	Notes               *string
}

// ServiceRequestService covers the service request lifecycle.
type ServiceRequestService interface {
	Create(ctx context.Context, actor Actor, in CreateServiceRequestInput) (*domain.ServiceRequest, error)
	List(ctx context.Context, actor Actor, status domain.RequestStatus, page domain.Page) ([]*domain.ServiceRequest, domain.Pagination, error)
	Get(ctx context.Context, actor Actor, id string) (*domain.ServiceRequest, error)
	Update(ctx context.Context, actor Actor, id string, patch ServiceRequestPatch) (*domain.ServiceRequest, error)
	Delete(ctx context.Context, actor Actor, id string) error
	UpdateStatus(ctx context.Context, actor Actor, id string, status domain.RequestStatus) (*domain.ServiceRequest, error)
	Assign(ctx context.Context, actor Actor, id, assigneeID string) (*domain.ServiceRequest, error)
	Stats(ctx context.Context) (*domain.ServiceRequestStats, error)
}

// CreateNotificationInput is the staff form for messaging a user.
type CreateNotificationInput struct {
	UserID  string
	Title   string
	Message string
	Type    domain.NotificationType
	Link    string
}

// NotificationService covers in-app notifications.
type NotificationService interface {
	List(ctx context.Context, filter domain.NotificationFilter) ([]*domain.Notification, domain.Pagination, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id, userID string) error
	Create(ctx context.Context, in CreateNotificationInput) (*domain.Notification, error)
}

// SubmitContactInput is the public contact form.
type SubmitContactInput struct {
	Name    string
	Email   string
	Message string
	Phone   string
	Company string
	RequestMeta
}

// ContactService covers contact form submissions.
type ContactService interface {
	Submit(ctx context.Context, in SubmitContactInput) (*domain.Contact, error)
	List(ctx context.Context, filter domain.ContactFilter) ([]*domain.Contact, domain.Pagination, error)
	Get(ctx context.Context, id string) (*domain.Contact, error)
	UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) (*domain.Contact, error)
	Delete(ctx context.Context, id string) error
}

// ProjectInput is the admin form for a portfolio entry.
type ProjectInput struct {
	Title            string
	Description      string
	ShortDescription string
	Category         domain.ProjectCategory
	Technologies     []string
	ImageURL         string
	ProjectURL       string
	GithubURL        string
	ClientName       string
	CompletionDate   *time.Time
	Featured         bool
	Status           domain.ProjectStatus
	DisplayOrder     int
}

// ProjectService covers the public portfolio.
type ProjectService interface {
	List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, domain.Pagination, error)
	Featured(ctx context.Context) ([]*domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	Create(ctx context.Context, in ProjectInput) (*domain.Project, error)
	Update(ctx context.Context, id string, in ProjectInput) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
	ToggleFeatured(ctx context.Context, id string) (*domain.Project, error)
}

// ActivityRecorder writes and reads the audit trail. Record never fails the
// calling use case.
type ActivityRecorder interface {
	Record(ctx context.Context, entry domain.ActivityLog)
	List(ctx context.Context, userID string, limit int) ([]*domain.ActivityLog, error)
}
