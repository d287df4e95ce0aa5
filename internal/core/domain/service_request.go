package domain

import "time"

// RequestStatus represents the lifecycle state of a service request.
type RequestStatus string

const (
	RequestPending    RequestStatus = "pending"
	RequestInProgress RequestStatus = "in-progress"
	RequestReview     RequestStatus = "review"
	RequestCompleted  RequestStatus = "completed"
	RequestCancelled  RequestStatus = "cancelled"
)

// Valid reports whether s is a known request status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestInProgress, RequestReview, RequestCompleted, RequestCancelled:
		return true
	}
	return false
}

// RequestPriority ranks service requests for staff triage.
type RequestPriority string

const (
	PriorityLow    RequestPriority = "low"
	PriorityNormal RequestPriority = "normal"
	PriorityHigh   RequestPriority = "high"
	PriorityUrgent RequestPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p RequestPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// UserRef is the public projection of a user embedded in other resources.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ServiceRequest is a client's request for agency work.
type ServiceRequest struct {
	ID                  string          `json:"id"`
	UserID              string          `json:"userId"`
	ProjectName         string          `json:"projectName"`
	ServiceType         string          `json:"serviceType"`
	Description         string          `json:"description"`
	BudgetRange         string          `json:"budgetRange,omitempty"`
	ExpectedTimeline    string          `json:"expectedTimeline,omitempty"`
	Status              RequestStatus   `json:"status"`
	Priority            RequestPriority `json:"priority"`
	Progress            int             `json:"progress"`
	AssignedTo          string          `json:"assignedTo,omitempty"`
	EstimatedCompletion *time.Time      `json:"estimatedCompletion,omitempty"`
	ActualCompletion    *time.Time      `json:"actualCompletion,omitempty"`
	Notes               string          `json:"notes,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`

	User         *UserRef `json:"user,omitempty"`
	AssignedUser *UserRef `json:"assignedUser,omitempty"`
}

// OwnedBy reports whether userID created the request.
func (r *ServiceRequest) OwnedBy(userID string) bool {
	return r.UserID == userID
}

// ServiceRequestFilter narrows a service request listing.
// An empty UserID means no owner restriction.
type ServiceRequestFilter struct {
	UserID string
	Status RequestStatus
	Page   Page
}

// ServiceRequestStats counts requests by status.
type ServiceRequestStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	Review     int64 `json:"review"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
}
