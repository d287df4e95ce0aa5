package http

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/devagency/agency-api/internal/infrastructure/http/handlers"
)

// RegisterProbes mounts the banner, liveness, readiness and /api/health
// endpoints. None of them require authentication.
func RegisterProbes(e *echo.Echo, database handlers.Pinger, started time.Time, checks ...handlers.Check) {
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(database, started, checks...)

	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Liveness)           // is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // are dependencies up?
	e.GET("/api/health", healthDepsHandler.APIHealth)
}
