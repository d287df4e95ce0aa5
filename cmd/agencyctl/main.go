package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
	"github.com/devagency/agency-api/internal/core/service"
	"github.com/devagency/agency-api/internal/infrastructure/db/postgres"
	"github.com/devagency/agency-api/internal/pkg/config"
	"github.com/devagency/agency-api/pkg/logger"
)

const adminPasswordEnv = "AGENCY_ADMIN_PASSWORD"

func main() {
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "agencyctl",
		Short:         "Maintenance commands for the agency API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newCreateAdminCommand(connect))
	cmd.AddCommand(newSweepSessionsCommand(connect))
	return cmd
}

// backend is what the commands need from the datastore.
type backend struct {
	users    ports.UserService
	sessions ports.SessionService
	close    func()
}

type connector func(ctx context.Context) (*backend, error)

func connect(ctx context.Context) (*backend, error) {
	cfg, err := config.Load(ctx, nil)
	if err != nil {
		return nil, err
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "agencyctl"})

	db := postgres.New(postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: 2})
	if err := db.Open(ctx); err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, db.Pool()); err != nil {
		db.Close()
		return nil, err
	}

	pool := db.Pool()
	userRepo := postgres.NewUserRepository(pool)
	recorder := service.NewActivityService(nil, zerolog.Nop())
	return &backend{
		users: service.NewUserService(userRepo,
			postgres.NewServiceRequestRepository(pool),
			postgres.NewNotificationRepository(pool),
			service.NewBcryptHasher(cfg.Auth.BcryptCost), nil, recorder, log),
		sessions: service.NewSessionService(postgres.NewSessionRepository(pool), cfg.Auth.SessionTTL, log),
		close:    db.Close,
	}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newCreateAdminCommand(open connector) *cobra.Command {
	var (
		name     string
		email    string
		password string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account if the email is not taken",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv(adminPasswordEnv)
			}
			if password == "" {
				return fmt.Errorf("--password or %s is required", adminPasswordEnv)
			}
			parsed, err := domain.ParseRole(role)
			if err != nil {
				return err
			}
			if !parsed.IsStaff() {
				return fmt.Errorf("role must be admin or super_admin, got %q", role)
			}

			ctx := commandContext(cmd)
			b, err := open(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			return createAdmin(ctx, b.users, ports.CreateUserInput{
				Name:     name,
				Email:    email,
				Password: password,
				Role:     parsed,
			}, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&name, "name", "Administrator", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Initial password (defaults to $"+adminPasswordEnv+")")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleSuperAdmin), "admin or super_admin")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// createAdmin provisions the account. An existing email is reported and left
// untouched.
func createAdmin(ctx context.Context, users ports.UserService, in ports.CreateUserInput, out io.Writer) error {
	user, err := users.Create(ctx, ports.Actor{}, in)
	if errors.Is(err, domain.ErrUserExists) {
		fmt.Fprintf(out, "user %s already exists, nothing to do\n", domain.NormalizeEmail(in.Email))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created %s %s (%s)\n", user.Role, user.Email, user.ID)
	return nil
}

func newSweepSessionsCommand(open connector) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-sessions",
		Short: "Delete expired sessions once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			b, err := open(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			n, err := b.sessions.SweepExpired(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired sessions\n", n)
			return nil
		},
	}
}
