package api

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/devagency/agency-api/internal/api/handler"
	"github.com/devagency/agency-api/internal/api/middleware"
	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
	httpinfra "github.com/devagency/agency-api/internal/infrastructure/http"
	"github.com/devagency/agency-api/internal/infrastructure/http/handlers"
	"github.com/devagency/agency-api/internal/infrastructure/telemetry"
)

const bodyLimit = "10M"

// RateLimit caps requests per client IP on /api.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

// Dependencies is everything the router needs to serve requests.
type Dependencies struct {
	Auth            ports.AuthService
	Sessions        ports.SessionService
	Users           ports.UserService
	ServiceRequests ports.ServiceRequestService
	Notifications   ports.NotificationService
	Contacts        ports.ContactService
	Projects        ports.ProjectService

	// Database is probed by /health/ready and /api/health; Checks are
	// additional readiness probes (Redis, MongoDB).
	Database handlers.Pinger
	Checks   []handlers.Check

	Log         zerolog.Logger
	FrontendURL string
	RateLimit   RateLimit
	// Tracing wraps every request in an otelhttp span.
	Tracing bool
	// Metrics exposes Prometheus request metrics and /metrics.
	Metrics bool
	Started time.Time
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string { return ksuid.New().String() },
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echomiddleware.Gzip())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     []string{deps.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	if deps.Tracing {
		e.Use(echo.WrapMiddleware(telemetry.Middleware("agency-api")))
	}
	if deps.Metrics {
		e.Use(echoprometheus.NewMiddleware("agency"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Docs and probes (no auth required) ---
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	started := deps.Started
	if started.IsZero() {
		started = time.Now()
	}
	httpinfra.RegisterProbes(e, deps.Database, started, deps.Checks...)

	api := e.Group("/api")
	if deps.RateLimit.Requests > 0 {
		api.Use(rateLimiter(deps.RateLimit))
	}

	authenticate := middleware.Authenticate(deps.Sessions, deps.Log)
	active := middleware.RequireActive()
	staff := middleware.Authorize(domain.StaffRoles...)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Users)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me, authenticate, active)
	auth.PUT("/profile", authHandler.UpdateProfile, authenticate, active)
	auth.POST("/avatar", authHandler.UploadAvatar, authenticate, active)
	auth.GET("/sessions", authHandler.Sessions, authenticate, active)

	// --- Users (staff only) ---
	userHandler := handler.NewUserHandler(deps.Users)
	users := api.Group("/users", authenticate, active, staff)
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/stats/overview", userHandler.Stats)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)
	users.GET("/:id/activity", userHandler.Activity)

	// --- Service requests ---
	requestHandler := handler.NewServiceRequestHandler(deps.ServiceRequests)
	requests := api.Group("/service-requests", authenticate, active)
	requests.POST("", requestHandler.Create)
	requests.GET("", requestHandler.List)
	requests.GET("/stats/overview", requestHandler.Stats, staff)
	requests.GET("/:id", requestHandler.Get)
	requests.PUT("/:id", requestHandler.Update)
	requests.DELETE("/:id", requestHandler.Delete)
	requests.PATCH("/:id/status", requestHandler.UpdateStatus, staff)
	requests.PATCH("/:id/assign", requestHandler.Assign, staff)

	// --- Notifications ---
	notificationHandler := handler.NewNotificationHandler(deps.Notifications)
	notifications := api.Group("/notifications", authenticate, active)
	notifications.GET("", notificationHandler.List)
	notifications.POST("", notificationHandler.Create, staff)
	notifications.GET("/unread-count", notificationHandler.UnreadCount)
	notifications.PATCH("/mark-all-read", notificationHandler.MarkAllRead)
	notifications.PATCH("/:id/read", notificationHandler.MarkRead)
	notifications.DELETE("/:id", notificationHandler.Delete)

	// --- Contact ---
	contactHandler := handler.NewContactHandler(deps.Contacts)
	contact := api.Group("/contact")
	contact.POST("", contactHandler.Submit)
	contact.GET("", contactHandler.List, authenticate, active, staff)
	contact.GET("/:id", contactHandler.Get, authenticate, active, staff)
	contact.PATCH("/:id/status", contactHandler.UpdateStatus, authenticate, active, staff)
	contact.DELETE("/:id", contactHandler.Delete, authenticate, active, staff)

	// --- Projects ---
	projectHandler := handler.NewProjectHandler(deps.Projects)
	projects := api.Group("/projects")
	projects.GET("", projectHandler.List)
	projects.GET("/featured", projectHandler.Featured)
	projects.GET("/:id", projectHandler.Get)
	projects.POST("", projectHandler.Create, authenticate, active, staff)
	projects.PUT("/:id", projectHandler.Update, authenticate, active, staff)
	projects.DELETE("/:id", projectHandler.Delete, authenticate, active, staff)
	projects.PATCH("/:id/featured", projectHandler.ToggleFeatured, authenticate, active, staff)

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= http.StatusInternalServerError {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

// rateLimiter limits /api by client IP and answers in the error envelope.
func rateLimiter(cfg RateLimit) echo.MiddlewareFunc {
	limiter := httprate.Limit(cfg.Requests, cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"success":false,"message":"Too many requests, please try again later"}`))
		}),
	)
	return echo.WrapMiddleware(limiter)
}
