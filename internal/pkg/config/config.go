package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT, default=5000"`
	Env      string `env:"ENV, default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	FrontendURL  string `env:"FRONTEND_URL, default=http://localhost:3000"`
	ContactInbox string `env:"CONTACT_INBOX"`
	OTELEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	Auth      AuthConfig
	Postgres  PostgresConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	SMTP      SMTPConfig
	Storage   StorageConfig
}

type AuthConfig struct {
	JWTSecret     string        `env:"JWT_SECRET, required"`
	SessionTTL    time.Duration `env:"SESSION_TTL, default=168h"`
	BcryptCost    int           `env:"BCRYPT_COST, default=10"`
	SweepSchedule string        `env:"SESSION_SWEEP_SCHEDULE, default=0 */15 * * * *"`
}

type PostgresConfig struct {
	DSN             string        `env:"DATABASE_URL, required"`
	MaxConns        int32         `env:"DB_MAX_CONNS, default=10"`
	MinConns        int32         `env:"DB_MIN_CONNS, default=1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME, default=1h"`
}

// MongoConfig configures the activity log store. An empty URI disables it.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=agency"`
}

// RedisConfig configures the sweep lock. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type RateLimitConfig struct {
	Requests int           `env:"RATE_LIMIT_MAX_REQUESTS, default=100"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW, default=15m"`
}

// SMTPConfig configures outgoing mail. An empty Host logs mail instead.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"SMTP_FROM, default=Dev Agency <noreply@devagency.local>"`
	Workers  int    `env:"MAIL_WORKERS, default=4"`
}

// StorageConfig configures avatar uploads. An empty Endpoint disables them.
type StorageConfig struct {
	Endpoint  string `env:"STORAGE_ENDPOINT"`
	AccessKey string `env:"STORAGE_ACCESS_KEY"`
	SecretKey string `env:"STORAGE_SECRET_KEY"`
	Bucket    string `env:"STORAGE_BUCKET, default=avatars"`
	Region    string `env:"STORAGE_REGION, default=us-east-1"`
	UseSSL    bool   `env:"STORAGE_USE_SSL, default=false"`
	PublicURL string `env:"STORAGE_PUBLIC_URL"`
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables using go-envconfig.
// A nil lookuper reads the process environment.
func Load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}

	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if len(cfg.Auth.JWTSecret) < 16 && cfg.IsProduction() {
		return nil, fmt.Errorf("config: JWT_SECRET must be at least 16 characters in production")
	}
	if cfg.Auth.BcryptCost < 4 || cfg.Auth.BcryptCost > 31 {
		return nil, fmt.Errorf("config: BCRYPT_COST must be between 4 and 31")
	}
	return &cfg, nil
}
