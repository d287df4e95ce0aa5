package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/devagency/agency-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"route not found", echo.ErrNotFound, http.StatusNotFound, "Route not found"},
		{"gate rejection", echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions"), http.StatusForbidden, "Insufficient permissions"},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"expired session", fmt.Errorf("validate: %w", domain.ErrSessionExpired), http.StatusUnauthorized, "Invalid or expired session"},
		{"ownership", domain.ErrForbidden, http.StatusForbidden, "Access denied"},
		{"inactive", domain.ErrAccountInactive, http.StatusForbidden, "Account is not active"},
		{"duplicate", domain.ErrUserExists, http.StatusConflict, "User with this email already exists"},
		{"self delete", domain.ErrCannotDeleteSelf, http.StatusBadRequest, "Cannot delete your own account"},
		{"missing request", fmt.Errorf("get: %w", domain.ErrServiceRequestNotFound), http.StatusNotFound, "Service request not found"},
		{"storage", domain.ErrStorageUnavailable, http.StatusServiceUnavailable, "File storage is not configured"},
		{"unexpected", errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"), http.StatusInternalServerError, "Internal server error"},
	}

	handler := NewHTTPErrorHandler(zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handler(tt.err, c)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Success {
				t.Errorf("expected success=false")
			}
			if resp.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, resp.Message)
			}
		})
	}
}

func TestHTTPErrorHandler_ValidationErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	NewHTTPErrorHandler(zerolog.Nop())(&domain.ValidationError{Fields: []domain.FieldError{
		{Field: "email", Message: "email must be a valid email"},
		{Field: "password", Message: "password must be at least 6 characters"},
	}}, c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "Validation failed" || len(resp.Errors) != 2 || resp.Errors[0].Field != "email" {
		t.Fatalf("unexpected body: %+v", resp)
	}
}
