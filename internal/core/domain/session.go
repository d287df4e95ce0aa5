package domain

import "time"

// DefaultSessionTTL is the absolute lifetime of a login session.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Session binds an opaque bearer token to a user until ExpiresAt.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Token     string    `json:"-"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`

	// User is populated by lookups that join the owning account.
	User *User `json:"user,omitempty"`
}

// ExpiredAt reports whether the session is no longer valid at now.
// A session is valid only while now < ExpiresAt.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
