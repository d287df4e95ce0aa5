package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidRole        = errors.New("invalid role")
	ErrCannotDeleteSelf   = errors.New("cannot delete own account")

	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	ErrForbidden       = errors.New("access forbidden")
	ErrAccountInactive = errors.New("account is not active")

	ErrServiceRequestNotFound = errors.New("service request not found")
	ErrNotificationNotFound   = errors.New("notification not found")
	ErrContactNotFound        = errors.New("contact not found")
	ErrProjectNotFound        = errors.New("project not found")

	ErrStorageUnavailable = errors.New("object storage not configured")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for malformed input and rendered as 400.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
