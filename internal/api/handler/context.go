package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/devagency/agency-api/internal/api/middleware"
	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

// actorFrom builds the use-case actor from the user bound by the
// Authenticate middleware. A missing user means the route was mounted
// without the gate.
func actorFrom(c echo.Context) (ports.Actor, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, middleware.MsgAuthRequired)
	}
	return ports.Actor{
		UserID:      user.ID,
		Role:        user.Role,
		RequestMeta: requestMeta(c),
	}, nil
}

// pathID returns the :id path parameter. Every entity is keyed by UUID, so
// anything else is rejected before it reaches the store.
func pathID(c echo.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", domain.NewValidationError("id", "id must be a valid UUID")
	}
	return id, nil
}

func requestMeta(c echo.Context) ports.RequestMeta {
	return ports.RequestMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

// pageFrom reads the page and limit query parameters. Malformed values fall
// back to the defaults applied by the services.
func pageFrom(c echo.Context) domain.Page {
	return domain.Page{
		Number: queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}
}

func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}

// queryBool parses an optional boolean filter; anything unparsable is
// treated as absent.
func queryBool(c echo.Context, name string) *bool {
	v := c.QueryParam(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil
	}
	return &b
}

// bindAndValidate decodes the request body into req and runs struct validation.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	return c.Validate(req)
}
