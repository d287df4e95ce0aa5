package domain

import (
	"strings"
	"time"
)

// UserStatus is the account state checked by the access gate.
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusSuspended UserStatus = "suspended"
)

// Valid reports whether s is one of the known account states.
func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// User models an authenticated actor in the system.
type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	Role          Role       `json:"role"`
	Status        UserStatus `json:"status"`
	EmailVerified bool       `json:"emailVerified"`
	Phone         string     `json:"phone,omitempty"`
	AvatarURL     string     `json:"avatarUrl,omitempty"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// IsActive reports whether the account may use authenticated endpoints.
func (u *User) IsActive() bool {
	return u != nil && u.Status == StatusActive
}

// Sanitized returns a copy of u without the password hash.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Role   Role
	Status UserStatus
	Search string
	Page   Page
}

// UserStats is the admin overview of the user base.
type UserStats struct {
	TotalUsers    int64 `json:"totalUsers"`
	TotalClients  int64 `json:"totalClients"`
	TotalAdmins   int64 `json:"totalAdmins"`
	ActiveUsers   int64 `json:"activeUsers"`
	InactiveUsers int64 `json:"inactiveUsers"`
}

// UserActivityStats summarises one user's footprint for the admin detail view.
type UserActivityStats struct {
	TotalRequests       int64 `json:"totalRequests"`
	PendingRequests     int64 `json:"pendingRequests"`
	CompletedRequests   int64 `json:"completedRequests"`
	UnreadNotifications int64 `json:"unreadNotifications"`
}
