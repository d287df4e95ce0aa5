package domain

import "time"

// Activity actions recorded in the audit trail.
const (
	ActionRegister      = "register"
	ActionLogin         = "login"
	ActionLogout        = "logout"
	ActionUserCreate    = "user.create"
	ActionUserUpdate    = "user.update"
	ActionUserDelete    = "user.delete"
	ActionRequestUpdate = "service_request.update"
)

// ActivityLog is one entry of a user's audit trail.
type ActivityLog struct {
	UserID      string         `json:"userId,omitempty"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entityType,omitempty"`
	EntityID    string         `json:"entityId,omitempty"`
	Description string         `json:"description,omitempty"`
	IPAddress   string         `json:"ipAddress,omitempty"`
	UserAgent   string         `json:"userAgent,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
