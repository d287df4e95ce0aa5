package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/devagency/agency-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"success": false, "message": "..."}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	fail := func(code int, msg string) (int, errorResponse) {
		return code, errorResponse{Message: msg}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch he.Code {
		case http.StatusNotFound:
			if errors.Is(err, echo.ErrNotFound) {
				return fail(http.StatusNotFound, "Route not found")
			}
		case http.StatusMethodNotAllowed:
			return fail(http.StatusMethodNotAllowed, "Method not allowed")
		}
		if he.Code >= http.StatusInternalServerError && he.Internal != nil {
			log.Error().Err(he.Internal).Str("path", c.Path()).Msg("request failed")
		}
		return fail(he.Code, fmt.Sprintf("%v", he.Message))
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorResponse{Message: "Validation failed", Errors: ve.Fields}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fail(http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionExpired):
		return fail(http.StatusUnauthorized, "Invalid or expired session")
	case errors.Is(err, domain.ErrForbidden):
		return fail(http.StatusForbidden, "Access denied")
	case errors.Is(err, domain.ErrAccountInactive):
		return fail(http.StatusForbidden, "Account is not active")
	case errors.Is(err, domain.ErrInvalidRole):
		return fail(http.StatusBadRequest, "Invalid role")
	case errors.Is(err, domain.ErrCannotDeleteSelf):
		return fail(http.StatusBadRequest, "Cannot delete your own account")
	case errors.Is(err, domain.ErrUserExists):
		return fail(http.StatusConflict, "User with this email already exists")
	case errors.Is(err, domain.ErrUserNotFound):
		return fail(http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrServiceRequestNotFound):
		return fail(http.StatusNotFound, "Service request not found")
	case errors.Is(err, domain.ErrNotificationNotFound):
		return fail(http.StatusNotFound, "Notification not found")
	case errors.Is(err, domain.ErrContactNotFound):
		return fail(http.StatusNotFound, "Contact not found")
	case errors.Is(err, domain.ErrProjectNotFound):
		return fail(http.StatusNotFound, "Project not found")
	case errors.Is(err, domain.ErrStorageUnavailable):
		return fail(http.StatusServiceUnavailable, "File storage is not configured")
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return fail(http.StatusInternalServerError, "Internal server error")
}
