package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	// ServiceName and Version are reported by the root endpoint.
	ServiceName = "Dev Agency API"
	Version     = "1.0.0"

	probeTimeout = 3 * time.Second
)

// Pinger is implemented by every datastore the service depends on.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check names a dependency probed by the readiness endpoint.
type Check struct {
	Name   string
	Pinger Pinger
}

// HealthHandler serves the liveness probe and the root banner.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Root godoc
// @Summary  Service banner
// @Tags     health
// @Produce  json
// @Success  200 {object} map[string]string
// @Router   / [get]
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": ServiceName,
		"version": Version,
		"status":  "running",
	})
}

// HealthDependenciesHandler serves the readiness probe and GET /api/health.
type HealthDependenciesHandler struct {
	database Pinger
	checks   []Check
	started  time.Time
	now      func() time.Time
}

// NewHealthDependenciesHandler probes database (the primary store) and every
// extra check. started is the process start time used for uptime.
func NewHealthDependenciesHandler(database Pinger, started time.Time, checks ...Check) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{
		database: database,
		checks:   checks,
		started:  started,
		now:      time.Now,
	}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness godoc
// @Summary  Readiness probe
// @Tags     health
// @Produce  json
// @Success  200 {object} readinessResponse
// @Failure  503 {object} readinessResponse
// @Router   /health/ready [get]
func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	healthy := true

	all := append([]Check{{Name: "postgres", Pinger: h.database}}, h.checks...)
	for _, check := range all {
		if err := check.Pinger.Ping(ctx); err != nil {
			deps[check.Name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[check.Name] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}

type apiHealthResponse struct {
	Success   bool      `json:"success"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
	Uptime    float64   `json:"uptime"`
}

// APIHealth godoc
// @Summary  Database health
// @Tags     health
// @Produce  json
// @Success  200 {object} apiHealthResponse
// @Failure  503 {object} apiHealthResponse
// @Router   /api/health [get]
func (h *HealthDependenciesHandler) APIHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), probeTimeout)
	defer cancel()

	now := h.now()
	resp := apiHealthResponse{
		Success:   true,
		Status:    "healthy",
		Timestamp: now.UTC(),
		Database:  "connected",
		Uptime:    now.Sub(h.started).Seconds(),
	}
	if err := h.database.Ping(ctx); err != nil {
		resp.Success = false
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
