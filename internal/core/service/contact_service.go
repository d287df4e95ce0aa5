package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

// ContactService stores contact form submissions and queues the related mail.
type ContactService struct {
	repo  ports.ContactRepository
	mail  ports.MailQueue
	inbox string
	now   func() time.Time
	log   zerolog.Logger
}

// NewContactService builds a ContactService. When mail is nil or inbox is
// empty no admin notification is sent.
func NewContactService(repo ports.ContactRepository, mail ports.MailQueue, inbox string, log zerolog.Logger) *ContactService {
	return &ContactService{repo: repo, mail: mail, inbox: inbox, now: time.Now, log: log}
}

func (s *ContactService) Submit(ctx context.Context, in ports.SubmitContactInput) (*domain.Contact, error) {
	name := strings.TrimSpace(in.Name)
	email := domain.NormalizeEmail(in.Email)
	message := strings.TrimSpace(in.Message)
	switch {
	case utf8.RuneCountInString(name) < 2 || utf8.RuneCountInString(name) > 100:
		return nil, domain.NewValidationError("name", "Name must be between 2 and 100 characters")
	case email == "":
		return nil, domain.NewValidationError("email", "Email is required")
	case utf8.RuneCountInString(message) < 10 || utf8.RuneCountInString(message) > 5000:
		return nil, domain.NewValidationError("message", "Message must be between 10 and 5000 characters")
	}

	now := s.now().UTC()
	contact := &domain.Contact{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Message:   message,
		Phone:     strings.TrimSpace(in.Phone),
		Company:   strings.TrimSpace(in.Company),
		Status:    domain.ContactNew,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	s.queueMail(contact)
	return contact, nil
}

// queueMail never blocks the submission; dropped messages are only logged.
func (s *ContactService) queueMail(c *domain.Contact) {
	if s.mail == nil {
		return
	}

	if s.inbox != "" {
		ok := s.mail.Enqueue(ports.MailMessage{
			To:      s.inbox,
			ReplyTo: c.Email,
			Subject: "New contact form submission from " + c.Name,
			Body:    adminContactBody(c),
		})
		if !ok {
			s.log.Error().Str("contact_id", c.ID).Msg("admin contact mail dropped")
		}
	}

	ok := s.mail.Enqueue(ports.MailMessage{
		To:      c.Email,
		Subject: "Thank you for contacting us",
		Body: fmt.Sprintf("Hi %s,\n\nThanks for reaching out. We received your message and will get back to you within 24 hours.\n\nYour message:\n%s\n",
			c.Name, c.Message),
	})
	if !ok {
		s.log.Error().Str("contact_id", c.ID).Msg("contact auto-reply dropped")
	}
}

func adminContactBody(c *domain.Contact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", c.Name)
	fmt.Fprintf(&b, "Email: %s\n", c.Email)
	if c.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", c.Phone)
	}
	if c.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", c.Company)
	}
	fmt.Fprintf(&b, "\n%s\n", c.Message)
	return b.String()
}

func (s *ContactService) List(ctx context.Context, filter domain.ContactFilter) ([]*domain.Contact, domain.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Pagination{}, domain.NewValidationError("status", "invalid status filter")
	}
	filter.Page = filter.Page.Normalize(20)

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("list contacts: %w", err)
	}
	return items, domain.NewPagination(filter.Page, total), nil
}

func (s *ContactService) Get(ctx context.Context, id string) (*domain.Contact, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ContactService) UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) (*domain.Contact, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "status must be one of: new read replied archived")
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
