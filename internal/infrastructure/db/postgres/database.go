package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultTimeout = 5 * time.Second
	connectTimeout = 10 * time.Second

	uniqueViolation = "23505"
)

// DB is the subset of pgxpool.Pool used by the repositories. pgxmock pools
// satisfy it as well.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config captures the connection pool settings.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// Database owns the process-wide connection pool. Open is safe to call more
// than once; only the first call connects.
type Database struct {
	cfg  Config
	once sync.Once
	pool *pgxpool.Pool
	err  error
}

func New(cfg Config) *Database {
	return &Database{cfg: cfg}
}

// Open connects the pool and verifies it with a ping.
func (d *Database) Open(ctx context.Context) error {
	d.once.Do(func() {
		d.pool, d.err = connect(ctx, d.cfg)
	})
	return d.err
}

func connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	poolConfig.HealthCheckPeriod = 30 * time.Second

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Pool returns the connected pool, or nil before a successful Open.
func (d *Database) Pool() *pgxpool.Pool {
	return d.pool
}

// Ping reports whether the database is reachable.
func (d *Database) Ping(ctx context.Context) error {
	if d.pool == nil {
		return errors.New("postgres: not connected")
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return d.pool.Ping(ctx)
}

func (d *Database) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
