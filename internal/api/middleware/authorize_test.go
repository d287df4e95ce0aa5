package middleware

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/devagency/agency-api/internal/core/domain"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		user     *domain.User
		allowed  []domain.Role
		wantCode int
		wantMsg  string
	}{
		{name: "admin on staff route", user: &domain.User{Role: domain.RoleAdmin}, allowed: domain.StaffRoles, wantCode: http.StatusOK},
		{name: "super admin on staff route", user: &domain.User{Role: domain.RoleSuperAdmin}, allowed: domain.StaffRoles, wantCode: http.StatusOK},
		{name: "client on staff route", user: &domain.User{Role: domain.RoleClient}, allowed: domain.StaffRoles, wantCode: http.StatusForbidden, wantMsg: MsgInsufficientPermissions},
		{name: "unknown role", user: &domain.User{Role: "guest"}, allowed: []domain.Role{domain.RoleClient}, wantCode: http.StatusForbidden, wantMsg: MsgInsufficientPermissions},
		{name: "empty allow-list", user: &domain.User{Role: domain.RoleSuperAdmin}, wantCode: http.StatusForbidden, wantMsg: MsgInsufficientPermissions},
		{name: "not authenticated", wantCode: http.StatusUnauthorized, wantMsg: MsgAuthRequired, allowed: domain.StaffRoles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext("")
			if tt.user != nil {
				c.Set(userKey, tt.user)
			}

			called := false
			err := Authorize(tt.allowed...)(func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusOK)
			})(c)

			if tt.wantCode == http.StatusOK {
				if err != nil || !called || rec.Code != http.StatusOK {
					t.Fatalf("expected pass-through, got err=%v called=%v code=%d", err, called, rec.Code)
				}
				return
			}
			if called {
				t.Fatalf("should not reach next")
			}
			assertHTTPError(t, err, tt.wantCode, tt.wantMsg)
		})
	}
}

func TestRequireActive(t *testing.T) {
	tests := []struct {
		status   domain.UserStatus
		wantPass bool
	}{
		{domain.StatusActive, true},
		{domain.StatusInactive, false},
		{domain.StatusSuspended, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			c, _ := newContext("")
			c.Set(userKey, &domain.User{Role: domain.RoleClient, Status: tt.status})

			called := false
			err := RequireActive()(func(echo.Context) error {
				called = true
				return nil
			})(c)

			if called != tt.wantPass {
				t.Fatalf("expected pass=%v, got %v", tt.wantPass, called)
			}
			if !tt.wantPass {
				assertHTTPError(t, err, http.StatusForbidden, MsgAccountInactive)
			}
		})
	}
}
