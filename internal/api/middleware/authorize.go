package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devagency/agency-api/internal/core/domain"
)

const (
	MsgInsufficientPermissions = "Insufficient permissions"
	MsgAccountInactive         = "Account is not active"
)

// Authorize enforces role-based access control. It must run after
// Authenticate.
func Authorize(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := append([]domain.Role(nil), roles...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, MsgAuthRequired)
			}
			if !domain.IsAuthorized(user.Role, allowed) {
				return echo.NewHTTPError(http.StatusForbidden, MsgInsufficientPermissions)
			}
			return next(c)
		}
	}
}

// RequireActive rejects users whose account is not active.
func RequireActive() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, MsgAuthRequired)
			}
			if !user.IsActive() {
				return echo.NewHTTPError(http.StatusForbidden, MsgAccountInactive)
			}
			return next(c)
		}
	}
}
