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

type projectService struct {
	repo ports.ProjectRepository
	now  func() time.Time
	log  zerolog.Logger
}

func NewProjectService(repo ports.ProjectRepository, log zerolog.Logger) ports.ProjectService {
	return &projectService{repo: repo, now: time.Now, log: log}
}

func (s *projectService) List(ctx context.Context, filter domain.ProjectFilter) ([]*domain.Project, domain.Pagination, error) {
	filter.Page = filter.Page.Normalize(12)
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("list projects: %w", err)
	}
	return items, domain.NewPagination(filter.Page, total), nil
}

func (s *projectService) Featured(ctx context.Context) ([]*domain.Project, error) {
	return s.repo.ListFeatured(ctx, domain.FeaturedProjectsLimit)
}

func (s *projectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *projectService) Create(ctx context.Context, in ports.ProjectInput) (*domain.Project, error) {
	if err := validateProject(&in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &domain.Project{ID: uuid.NewString(), CreatedAt: now}
	applyProjectInput(p, in)
	p.UpdatedAt = now

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.log.Info().Str("project_id", p.ID).Msg("project created")
	return p, nil
}

func (s *projectService) Update(ctx context.Context, id string, in ports.ProjectInput) (*domain.Project, error) {
	if err := validateProject(&in); err != nil {
		return nil, err
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProjectInput(p, in)
	p.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

func (s *projectService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *projectService) ToggleFeatured(ctx context.Context, id string) (*domain.Project, error) {
	return s.repo.ToggleFeatured(ctx, id)
}

// validateProject trims the input and fills defaults in place.
func validateProject(in *ports.ProjectInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(in.Title) < 3 || utf8.RuneCountInString(in.Title) > 200 {
		return domain.NewValidationError("title", "Title must be between 3 and 200 characters")
	}
	if in.Description == "" {
		return domain.NewValidationError("description", "Description is required")
	}

	if in.Category == "" {
		in.Category = domain.CategoryWeb
	}
	switch in.Category {
	case domain.CategoryWeb, domain.CategoryMobile, domain.CategoryDesign, domain.CategoryConsulting, domain.CategoryOther:
	default:
		return domain.NewValidationError("category", "category must be one of: web mobile design consulting other")
	}

	if in.Status == "" {
		in.Status = domain.ProjectCompleted
	}
	switch in.Status {
	case domain.ProjectPlanning, domain.ProjectInProgress, domain.ProjectCompleted, domain.ProjectArchived:
	default:
		return domain.NewValidationError("status", "status must be one of: planning in-progress completed archived")
	}

	if in.Technologies == nil {
		in.Technologies = []string{}
	}
	return nil
}

func applyProjectInput(p *domain.Project, in ports.ProjectInput) {
	p.Title = in.Title
	p.Description = in.Description
	p.ShortDescription = strings.TrimSpace(in.ShortDescription)
	p.Category = in.Category
	p.Technologies = in.Technologies
	p.ImageURL = strings.TrimSpace(in.ImageURL)
	p.ProjectURL = strings.TrimSpace(in.ProjectURL)
	p.GithubURL = strings.TrimSpace(in.GithubURL)
	p.ClientName = strings.TrimSpace(in.ClientName)
	p.CompletionDate = in.CompletionDate
	p.Featured = in.Featured
	p.Status = in.Status
	p.DisplayOrder = in.DisplayOrder
}
