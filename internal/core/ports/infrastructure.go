package ports

import (
	"context"
	"io"
	"time"
)

// PasswordHasher is the one-way salted hashing primitive.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	// Compare returns nil only when plain matches hash.
	Compare(hash, plain string) error
}

// TokenIssuer mints bearer tokens bound to a user.
type TokenIssuer interface {
	Issue(userID string, expiresAt time.Time) (string, error)
}

// TokenVerifier checks a bearer token's signature and returns its subject.
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}

// Locker provides a short-lived mutual exclusion across replicas.
type Locker interface {
	// Acquire returns ok=false without error when the lock is held elsewhere.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// AvatarStore persists profile images and returns their public URL.
type AvatarStore interface {
	PutAvatar(ctx context.Context, userID string, body io.Reader, size int64, contentType string) (string, error)
}

// MailMessage is a plain-text email.
type MailMessage struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// MailQueue accepts messages for asynchronous delivery.
type MailQueue interface {
	// Enqueue reports false when the message was dropped.
	Enqueue(msg MailMessage) bool
}
