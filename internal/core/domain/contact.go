package domain

import "time"

// ContactStatus tracks how far staff got with a contact form submission.
type ContactStatus string

const (
	ContactNew      ContactStatus = "new"
	ContactRead     ContactStatus = "read"
	ContactReplied  ContactStatus = "replied"
	ContactArchived ContactStatus = "archived"
)

// Valid reports whether s is a known contact status.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactNew, ContactRead, ContactReplied, ContactArchived:
		return true
	}
	return false
}

// Contact is a submission from the public contact form.
type Contact struct {
	ID        string        `json:"id" db:"id"`
	Name      string        `json:"name" db:"name"`
	Email     string        `json:"email" db:"email"`
	Message   string        `json:"message" db:"message"`
	Phone     string        `json:"phone,omitempty" db:"phone"`
	Company   string        `json:"company,omitempty" db:"company"`
	Status    ContactStatus `json:"status" db:"status"`
	IPAddress string        `json:"ipAddress,omitempty" db:"ip_address"`
	UserAgent string        `json:"userAgent,omitempty" db:"user_agent"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time     `json:"updatedAt" db:"updated_at"`
}

// ContactFilter narrows the admin contact listing.
type ContactFilter struct {
	Status ContactStatus
	Page   Page
}
