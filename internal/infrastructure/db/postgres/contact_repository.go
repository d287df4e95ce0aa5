package postgres

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/devagency/agency-api/internal/core/domain"
)

const contactColumns = `id, name, email, message, phone, company, status, ip_address, user_agent, created_at, updated_at`

// ContactRepository implements ports.ContactRepository on PostgreSQL.
type ContactRepository struct {
	db DB
}

func NewContactRepository(db DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, c *domain.Contact) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `INSERT INTO contacts (` + contactColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.Name,
		c.Email,
		c.Message,
		c.Phone,
		c.Company,
		c.Status,
		c.IPAddress,
		c.UserAgent,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (r *ContactRepository) FindByID(ctx context.Context, id string) (*domain.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Contact
	if err := pgxscan.Get(ctx, r.db, &c, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrContactNotFound
		}
		return nil, fmt.Errorf("find contact: %w", err)
	}
	return &c, nil
}

func (r *ContactRepository) List(ctx context.Context, filter domain.ContactFilter) ([]*domain.Contact, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	where := ""
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = ` WHERE status = $1`
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM contacts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	page := filter.Page.Normalize(domain.DefaultPageLimit)
	args = append(args, page.Limit, page.Offset())
	query := fmt.Sprintf(`SELECT %s FROM contacts%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		contactColumns, where, len(args)-1, len(args))

	items := []*domain.Contact{}
	if err := pgxscan.Select(ctx, r.db, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}
	return items, total, nil
}

func (r *ContactRepository) UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) (*domain.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `UPDATE contacts SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + contactColumns
	var c domain.Contact
	if err := pgxscan.Get(ctx, r.db, &c, query, id, status); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrContactNotFound
		}
		return nil, fmt.Errorf("update contact status: %w", err)
	}
	return &c, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrContactNotFound
	}
	return nil
}
