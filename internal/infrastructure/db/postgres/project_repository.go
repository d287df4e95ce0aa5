package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/devagency/agency-api/internal/core/domain"
)

const projectColumns = `id, title, description, short_description, category, technologies, image_url,
	project_url, github_url, client_name, completion_date, featured, status, display_order,
	created_at, updated_at`

const projectOrder = ` ORDER BY display_order ASC, created_at DESC`

// ProjectRepository implements ports.ProjectRepository on PostgreSQL.
type ProjectRepository struct {
	db DB
}

func NewProjectRepository(db DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.db.Exec(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.ShortDescription,
		p.Category,
		p.Technologies,
		p.ImageURL,
		p.ProjectURL,
		p.GithubURL,
		p.ClientName,
		p.CompletionDate,
		p.Featured,
		p.Status,
		p.DisplayOrder,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Project
	if err := pgxscan.Get(ctx, r.db, &p, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return &p, nil
}

func (r *ProjectRepository) List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		conds []string
		args  []any
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, "category = $"+strconv.Itoa(len(args)))
	}
	if filter.Featured != nil {
		args = append(args, *filter.Featured)
		conds = append(conds, "featured = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM projects`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	page := filter.Page.Normalize(domain.DefaultPageLimit)
	args = append(args, page.Limit, page.Offset())
	query := `SELECT ` + projectColumns + ` FROM projects` + where + projectOrder +
		` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	items := []*domain.Project{}
	if err := pgxscan.Select(ctx, r.db, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	return items, total, nil
}

// ListFeatured returns completed projects flagged as featured.
func (r *ProjectRepository) ListFeatured(ctx context.Context, limit int) ([]*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `SELECT ` + projectColumns + ` FROM projects WHERE featured AND status = 'completed'` +
		projectOrder + ` LIMIT $1`
	items := []*domain.Project{}
	if err := pgxscan.Select(ctx, r.db, &items, query, limit); err != nil {
		return nil, fmt.Errorf("list featured projects: %w", err)
	}
	return items, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const query = `
		UPDATE projects
		SET title = $2, description = $3, short_description = $4, category = $5, technologies = $6,
		    image_url = $7, project_url = $8, github_url = $9, client_name = $10, completion_date = $11,
		    featured = $12, status = $13, display_order = $14, updated_at = $15
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.ShortDescription,
		p.Category,
		p.Technologies,
		p.ImageURL,
		p.ProjectURL,
		p.GithubURL,
		p.ClientName,
		p.CompletionDate,
		p.Featured,
		p.Status,
		p.DisplayOrder,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) ToggleFeatured(ctx context.Context, id string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `UPDATE projects SET featured = NOT featured, updated_at = NOW() WHERE id = $1 RETURNING ` + projectColumns
	var p domain.Project
	if err := pgxscan.Get(ctx, r.db, &p, query, id); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("toggle featured: %w", err)
	}
	return &p, nil
}
