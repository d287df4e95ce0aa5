package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/devagency/agency-api/internal/core/domain"
)

const serviceRequestSelect = `
	SELECT r.id, r.user_id, r.project_name, r.service_type, r.description,
	       COALESCE(r.budget_range, ''), COALESCE(r.expected_timeline, ''),
	       r.status, r.priority, r.progress, COALESCE(r.assigned_to::text, ''),
	       r.estimated_completion, r.actual_completion, COALESCE(r.notes, ''),
	       r.created_at, r.updated_at,
	       o.name, o.email,
	       COALESCE(a.name, ''), COALESCE(a.email, '')
	FROM service_requests r
	JOIN users o ON o.id = r.user_id
	LEFT JOIN users a ON a.id = r.assigned_to`

// ServiceRequestRepository implements ports.ServiceRequestRepository on PostgreSQL.
type ServiceRequestRepository struct {
	db DB
}

func NewServiceRequestRepository(db DB) *ServiceRequestRepository {
	return &ServiceRequestRepository{db: db}
}

func scanServiceRequest(row pgx.Row) (*domain.ServiceRequest, error) {
	var (
		req                      domain.ServiceRequest
		owner                    domain.UserRef
		assigneeName, assigneeEm string
	)
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.ProjectName,
		&req.ServiceType,
		&req.Description,
		&req.BudgetRange,
		&req.ExpectedTimeline,
		&req.Status,
		&req.Priority,
		&req.Progress,
		&req.AssignedTo,
		&req.EstimatedCompletion,
		&req.ActualCompletion,
		&req.Notes,
		&req.CreatedAt,
		&req.UpdatedAt,
		&owner.Name,
		&owner.Email,
		&assigneeName,
		&assigneeEm,
	)
	if err != nil {
		return nil, err
	}
	owner.ID = req.UserID
	req.User = &owner
	if req.AssignedTo != "" {
		req.AssignedUser = &domain.UserRef{ID: req.AssignedTo, Name: assigneeName, Email: assigneeEm}
	}
	return &req, nil
}

func (r *ServiceRequestRepository) Create(ctx context.Context, req *domain.ServiceRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const query = `
		INSERT INTO service_requests (
			id, user_id, project_name, service_type, description, budget_range, expected_timeline,
			status, priority, progress, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10, $11, $12
		)
	`
	_, err := r.db.Exec(ctx, query,
		req.ID,
		req.UserID,
		req.ProjectName,
		req.ServiceType,
		req.Description,
		req.BudgetRange,
		req.ExpectedTimeline,
		req.Status,
		req.Priority,
		req.Progress,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert service request: %w", err)
	}
	return nil
}

func (r *ServiceRequestRepository) FindByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	req, err := scanServiceRequest(r.db.QueryRow(ctx, serviceRequestSelect+` WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrServiceRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find service request: %w", err)
	}
	return req, nil
}

func (r *ServiceRequestRepository) List(ctx context.Context, filter domain.ServiceRequestFilter) ([]*domain.ServiceRequest, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		conds []string
		args  []any
	)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, "r.user_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "r.status = $"+strconv.Itoa(len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM service_requests r`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count service requests: %w", err)
	}

	page := filter.Page.Normalize(domain.DefaultPageLimit)
	args = append(args, page.Limit, page.Offset())
	query := serviceRequestSelect + where +
		` ORDER BY r.created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list service requests: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.ServiceRequest, 0, page.Limit)
	for rows.Next() {
		req, err := scanServiceRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan service request: %w", err)
		}
		items = append(items, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list service requests: %w", err)
	}
	return items, total, nil
}

func (r *ServiceRequestRepository) Update(ctx context.Context, req *domain.ServiceRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const query = `
		UPDATE service_requests
		SET description = $2,
		    budget_range = NULLIF($3, ''),
		    status = $4,
		    priority = $5,
		    progress = $6,
		    assigned_to = NULLIF($7, '')::uuid,
		    estimated_completion = $8,
		    actual_completion = $9,
		    notes = NULLIF($10, ''),
		    updated_at = $11
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		req.ID,
		req.Description,
		req.BudgetRange,
		req.Status,
		req.Priority,
		req.Progress,
		req.AssignedTo,
		req.EstimatedCompletion,
		req.ActualCompletion,
		req.Notes,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update service request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrServiceRequestNotFound
	}
	return nil
}

func (r *ServiceRequestRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM service_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrServiceRequestNotFound
	}
	return nil
}

func (r *ServiceRequestRepository) Stats(ctx context.Context) (*domain.ServiceRequestStats, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const query = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'in-progress'),
			COUNT(*) FILTER (WHERE status = 'review'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'cancelled')
		FROM service_requests
	`
	var s domain.ServiceRequestStats
	err := r.db.QueryRow(ctx, query).Scan(
		&s.Total,
		&s.Pending,
		&s.InProgress,
		&s.Review,
		&s.Completed,
		&s.Cancelled,
	)
	if err != nil {
		return nil, fmt.Errorf("service request stats: %w", err)
	}
	return &s, nil
}

func (r *ServiceRequestRepository) CountByUser(ctx context.Context, userID string) (total, pending, completed int64, err error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	const query = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'completed')
		FROM service_requests
		WHERE user_id = $1
	`
	if err = r.db.QueryRow(ctx, query, userID).Scan(&total, &pending, &completed); err != nil {
		return 0, 0, 0, fmt.Errorf("count user requests: %w", err)
	}
	return total, pending, completed, nil
}
