package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/devagency/agency-api/internal/api/metrics"
	"github.com/devagency/agency-api/internal/core/domain"
)

const (
	userKey    = "auth.user"
	sessionKey = "auth.session"
	tokenKey   = "auth.token"

	MsgAuthRequired   = "Authentication required"
	MsgInvalidSession = "Invalid or expired session"
	MsgAuthFailed     = "Authentication failed"
)

// SessionValidator resolves a bearer token to a live session joined with its
// owner.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*domain.Session, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// Authenticate validates the bearer token against the session store and binds
// the session, its user and the raw token to the request context.
func Authenticate(sessions SessionValidator, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := BearerToken(c.Request())
			if !ok {
				metrics.SessionRejectionsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, MsgAuthRequired)
			}

			session, err := sessions.Validate(c.Request().Context(), token)
			switch {
			case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionExpired):
				metrics.SessionRejectionsTotal.WithLabelValues("invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidSession)
			case err != nil:
				metrics.SessionRejectionsTotal.WithLabelValues("error").Inc()
				log.Error().Err(err).Str("path", c.Path()).Msg("session validation failed")
				return echo.NewHTTPError(http.StatusInternalServerError, MsgAuthFailed)
			case session.User == nil:
				metrics.SessionRejectionsTotal.WithLabelValues("error").Inc()
				log.Error().Str("session_id", session.ID).Msg("session has no user")
				return echo.NewHTTPError(http.StatusInternalServerError, MsgAuthFailed)
			}

			c.Set(userKey, session.User)
			c.Set(sessionKey, session)
			c.Set(tokenKey, token)
			return next(c)
		}
	}
}

// CurrentUser returns the user bound by Authenticate.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	u, ok := c.Get(userKey).(*domain.User)
	return u, ok && u != nil
}

// CurrentSession returns the session bound by Authenticate.
func CurrentSession(c echo.Context) (*domain.Session, bool) {
	s, ok := c.Get(sessionKey).(*domain.Session)
	return s, ok && s != nil
}

// CurrentToken returns the bearer token that authenticated the request.
func CurrentToken(c echo.Context) string {
	t, _ := c.Get(tokenKey).(string)
	return t
}
