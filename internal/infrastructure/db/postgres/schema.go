package postgres

import (
	"context"
	"fmt"
	"time"
)

// schema is applied in order by EnsureSchema. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id             UUID PRIMARY KEY,
		name           VARCHAR(100) NOT NULL,
		email          VARCHAR(255) NOT NULL,
		password_hash  VARCHAR(255) NOT NULL,
		role           VARCHAR(20)  NOT NULL DEFAULT 'client' CHECK (role IN ('client', 'admin', 'super_admin')),
		status         VARCHAR(20)  NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive', 'suspended')),
		email_verified BOOLEAN      NOT NULL DEFAULT FALSE,
		phone          VARCHAR(20),
		avatar_url     VARCHAR(500),
		last_login     TIMESTAMPTZ,
		created_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (LOWER(email))`,
	`CREATE INDEX IF NOT EXISTS users_role_idx ON users (role)`,
	`CREATE INDEX IF NOT EXISTS users_status_idx ON users (status)`,

	`CREATE TABLE IF NOT EXISTS sessions (
		id         UUID PRIMARY KEY,
		user_id    UUID         NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		token      VARCHAR(500) NOT NULL UNIQUE,
		ip_address VARCHAR(45),
		user_agent TEXT,
		expires_at TIMESTAMPTZ  NOT NULL,
		created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_user_id_idx ON sessions (user_id)`,
	`CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at)`,

	`CREATE TABLE IF NOT EXISTS service_requests (
		id                   UUID PRIMARY KEY,
		user_id              UUID         NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		project_name         VARCHAR(255) NOT NULL,
		service_type         VARCHAR(50)  NOT NULL,
		description          TEXT         NOT NULL,
		budget_range         VARCHAR(50),
		expected_timeline    VARCHAR(50),
		status               VARCHAR(20)  NOT NULL DEFAULT 'pending',
		priority             VARCHAR(20)  NOT NULL DEFAULT 'normal',
		progress             INTEGER      NOT NULL DEFAULT 0 CHECK (progress BETWEEN 0 AND 100),
		assigned_to          UUID REFERENCES users (id) ON DELETE SET NULL,
		estimated_completion TIMESTAMPTZ,
		actual_completion    TIMESTAMPTZ,
		notes                TEXT,
		created_at           TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at           TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS service_requests_user_id_idx ON service_requests (user_id)`,
	`CREATE INDEX IF NOT EXISTS service_requests_status_idx ON service_requests (status)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id         UUID PRIMARY KEY,
		user_id    UUID         NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		title      VARCHAR(255) NOT NULL,
		message    TEXT         NOT NULL,
		type       VARCHAR(20)  NOT NULL DEFAULT 'info',
		read       BOOLEAN      NOT NULL DEFAULT FALSE,
		link       VARCHAR(500) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_user_read_idx ON notifications (user_id, read)`,

	`CREATE TABLE IF NOT EXISTS contacts (
		id         UUID PRIMARY KEY,
		name       VARCHAR(100) NOT NULL,
		email      VARCHAR(255) NOT NULL,
		message    TEXT         NOT NULL,
		phone      VARCHAR(20)  NOT NULL DEFAULT '',
		company    VARCHAR(100) NOT NULL DEFAULT '',
		status     VARCHAR(20)  NOT NULL DEFAULT 'new',
		ip_address VARCHAR(45)  NOT NULL DEFAULT '',
		user_agent TEXT         NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS contacts_status_idx ON contacts (status)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id                UUID PRIMARY KEY,
		title             VARCHAR(200) NOT NULL,
		description       TEXT         NOT NULL,
		short_description VARCHAR(500) NOT NULL DEFAULT '',
		category          VARCHAR(20)  NOT NULL DEFAULT 'web',
		technologies      TEXT[]       NOT NULL DEFAULT '{}',
		image_url         VARCHAR(500) NOT NULL DEFAULT '',
		project_url       VARCHAR(500) NOT NULL DEFAULT '',
		github_url        VARCHAR(500) NOT NULL DEFAULT '',
		client_name       VARCHAR(100) NOT NULL DEFAULT '',
		completion_date   TIMESTAMPTZ,
		featured          BOOLEAN      NOT NULL DEFAULT FALSE,
		status            VARCHAR(20)  NOT NULL DEFAULT 'completed',
		display_order     INTEGER      NOT NULL DEFAULT 0,
		created_at        TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS projects_featured_idx ON projects (featured, status)`,
}

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, db DB) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
