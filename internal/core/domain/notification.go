package domain

import "time"

// NotificationType drives how the client renders a notification.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError:
		return true
	}
	return false
}

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"userId" db:"user_id"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Type      NotificationType `json:"type" db:"type"`
	Read      bool             `json:"read" db:"read"`
	Link      string           `json:"link,omitempty" db:"link"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
}

// NotificationFilter narrows a user's notification listing.
type NotificationFilter struct {
	UserID string
	Read   *bool
	Page   Page
}
