// @title                       Dev Agency API
// @version                     1.0.0
// @description                 Client portal, service requests and portfolio for a software agency.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	_ "github.com/devagency/agency-api/docs"
	"github.com/devagency/agency-api/internal/api"
	"github.com/devagency/agency-api/internal/core/ports"
	"github.com/devagency/agency-api/internal/core/service"
	mongoinfra "github.com/devagency/agency-api/internal/infrastructure/db/mongo"
	"github.com/devagency/agency-api/internal/infrastructure/db/postgres"
	redisinfra "github.com/devagency/agency-api/internal/infrastructure/db/redis"
	"github.com/devagency/agency-api/internal/infrastructure/http/handlers"
	"github.com/devagency/agency-api/internal/infrastructure/jobs"
	"github.com/devagency/agency-api/internal/infrastructure/mail"
	"github.com/devagency/agency-api/internal/infrastructure/queue"
	"github.com/devagency/agency-api/internal/infrastructure/storage"
	"github.com/devagency/agency-api/internal/infrastructure/telemetry"
	"github.com/devagency/agency-api/internal/pkg/config"
	"github.com/devagency/agency-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, nil)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "agency-api",
		Version: handlers.Version,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
	log.Info().Msg("server exited cleanly")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	started := time.Now()

	// --- Datastores ---
	db := postgres.New(postgres.Config{
		DSN:             cfg.Postgres.DSN,
		MaxConns:        cfg.Postgres.MaxConns,
		MinConns:        cfg.Postgres.MinConns,
		MaxConnLifetime: cfg.Postgres.MaxConnLifetime,
	})
	if err := db.Open(ctx); err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db.Pool()); err != nil {
		return err
	}
	log.Info().Msg("postgres ready")

	var (
		checks   []handlers.Check
		locker   ports.Locker
		activity ports.ActivityRepository
		avatars  ports.AvatarStore
	)

	if cfg.Redis.Addr != "" {
		rdb, err := redisinfra.Connect(ctx, redisinfra.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error().Err(err).Msg("redis close error")
			}
		}()
		locker = redisinfra.NewLocker(rdb)
		checks = append(checks, handlers.Check{Name: "redis", Pinger: redisinfra.Pinger{Client: rdb}})
	} else {
		log.Warn().Msg("REDIS_ADDR not set, session sweep runs without a lock")
	}

	if cfg.Mongo.URI != "" {
		client, mdb, err := mongoinfra.Connect(ctx, mongoinfra.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				log.Error().Err(err).Msg("mongo disconnect error")
			}
		}()
		repo := mongoinfra.NewActivityRepository(mdb)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("ensure activity indexes failed")
		}
		activity = repo
		checks = append(checks, handlers.Check{Name: "mongo", Pinger: mongoinfra.Pinger{Client: client}})
	} else {
		log.Warn().Msg("MONGO_URI not set, activity log disabled")
	}

	if cfg.Storage.Endpoint != "" {
		store, err := storage.NewObjectStore(storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			UseSSL:    cfg.Storage.UseSSL,
			PublicURL: cfg.Storage.PublicURL,
		})
		if err != nil {
			return err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			log.Warn().Err(err).Msg("ensure bucket failed")
		}
		avatars = store
	}

	// --- Tracing ---
	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := telemetry.Init(ctx, "agency-api", handlers.Version, cfg.OTELEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			tctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(tctx); err != nil {
				log.Error().Err(err).Msg("tracer shutdown error")
			}
		}()
	}

	// --- Mail ---
	var mailer ports.Mailer = mail.NewLogMailer(log)
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}
	mailCtx, stopMail := context.WithCancel(context.Background())
	defer stopMail()
	dispatcher := queue.NewDispatcher(cfg.SMTP.Workers, mailer, log)
	dispatcher.Start(mailCtx)

	// --- Services ---
	pool := db.Pool()
	userRepo := postgres.NewUserRepository(pool)
	requestRepo := postgres.NewServiceRequestRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)

	issuer := service.NewJWTIssuer(cfg.Auth.JWTSecret)
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	recorder := service.NewActivityService(activity, log)
	sessions := service.NewSessionService(postgres.NewSessionRepository(pool), cfg.Auth.SessionTTL, log,
		service.WithTokenVerifier(issuer))

	router := api.NewRouter(api.Dependencies{
		Auth:            service.NewAuthService(userRepo, sessions, issuer, hasher, recorder, cfg.Auth.SessionTTL, log),
		Sessions:        sessions,
		Users:           service.NewUserService(userRepo, requestRepo, notificationRepo, hasher, avatars, recorder, log),
		ServiceRequests: service.NewServiceRequestService(requestRepo, userRepo, notificationRepo, recorder, log),
		Notifications:   service.NewNotificationService(notificationRepo, userRepo, log),
		Contacts:        service.NewContactService(postgres.NewContactRepository(pool), dispatcher, cfg.ContactInbox, log),
		Projects:        service.NewProjectService(postgres.NewProjectRepository(pool), log),
		Database:        db,
		Checks:          checks,
		Log:             log,
		FrontendURL:     cfg.FrontendURL,
		RateLimit:       api.RateLimit{Requests: cfg.RateLimit.Requests, Window: cfg.RateLimit.Window},
		Tracing:         cfg.OTELEndpoint != "",
		Metrics:         true,
		Started:         started,
	})

	// --- Background jobs ---
	scheduler := jobs.NewScheduler(sessions, locker, cfg.Auth.SweepSchedule, log)
	if err := scheduler.Start(); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
	runErr := serve(ctx, srv, log)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn().Msg("session sweep still running at shutdown")
	}

	stopMail()
	dispatcher.Wait()

	// Deferred calls close the tracer, then the datastores.
	return runErr
}

// serve runs srv until ctx is cancelled or the listener fails. A listener
// failure is returned so the process exits non-zero.
func serve(ctx context.Context, srv *http.Server, log zerolog.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
		return nil
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("http server failed")
		}
		return err
	}
}
