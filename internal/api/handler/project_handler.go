package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

type ProjectHandler struct {
	service ports.ProjectService
}

func NewProjectHandler(service ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

type projectRequest struct {
	Title            string                 `json:"title"            validate:"required,min=3,max=200"`
	Description      string                 `json:"description"      validate:"required"`
	ShortDescription string                 `json:"shortDescription" validate:"omitempty,max=500"`
	Category         domain.ProjectCategory `json:"category"         validate:"omitempty,oneof=web mobile design consulting other"`
	Technologies     []string               `json:"technologies"`
	ImageURL         string                 `json:"imageUrl"         validate:"omitempty,url"`
	ProjectURL       string                 `json:"projectUrl"       validate:"omitempty,url"`
	GithubURL        string                 `json:"githubUrl"        validate:"omitempty,url"`
	ClientName       string                 `json:"clientName"       validate:"omitempty,max=255"`
	CompletionDate   *time.Time             `json:"completionDate"`
	Featured         bool                   `json:"featured"`
	Status           domain.ProjectStatus   `json:"status"           validate:"omitempty,oneof=planning in-progress completed archived"`
	DisplayOrder     int                    `json:"displayOrder"     validate:"min=0"`
}

func (r projectRequest) input() ports.ProjectInput {
	return ports.ProjectInput{
		Title:            r.Title,
		Description:      r.Description,
		ShortDescription: r.ShortDescription,
		Category:         r.Category,
		Technologies:     r.Technologies,
		ImageURL:         r.ImageURL,
		ProjectURL:       r.ProjectURL,
		GithubURL:        r.GithubURL,
		ClientName:       r.ClientName,
		CompletionDate:   r.CompletionDate,
		Featured:         r.Featured,
		Status:           r.Status,
		DisplayOrder:     r.DisplayOrder,
	}
}

// List godoc
// @Summary   List portfolio projects
// @Tags      projects
// @Produce   json
// @Param     category  query  string  false  "web | mobile | design | consulting | other"
// @Param     featured  query  bool    false  "Only featured"
// @Param     status    query  string  false  "planning | in-progress | completed | archived"
// @Param     page      query  int     false  "Page number"
// @Param     limit     query  int     false  "Page size"
// @Success   200  {object}  successResponse{data=[]domain.Project}
// @Router    /api/projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	items, page, err := h.service.List(c.Request().Context(), domain.ProjectFilter{
		Category: domain.ProjectCategory(c.QueryParam("category")),
		Featured: queryBool(c, "featured"),
		Status:   domain.ProjectStatus(c.QueryParam("status")),
		Page:     pageFrom(c),
	})
	if err != nil {
		return err
	}
	return respondList(c, items, page)
}

// Featured godoc
// @Summary   Featured completed projects
// @Tags      projects
// @Produce   json
// @Success   200  {object}  successResponse{data=[]domain.Project}
// @Router    /api/projects/featured [get]
func (h *ProjectHandler) Featured(c echo.Context) error {
	items, err := h.service.Featured(c.Request().Context())
	if err != nil {
		return err
	}
	return respondOK(c, items)
}

// Get godoc
// @Summary   Get a project
// @Tags      projects
// @Produce   json
// @Param     id   path  string  true  "Project ID"
// @Success   200  {object}  successResponse{data=domain.Project}
// @Failure   404  {object}  errorResponse
// @Router    /api/projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondOK(c, p)
}

// Create godoc
// @Summary   Create a project (staff)
// @Tags      projects
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body  projectRequest  true  "Project"
// @Success   201  {object}  successResponse{data=domain.Project}
// @Failure   400  {object}  errorResponse
// @Router    /api/projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	var req projectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.service.Create(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return respondCreated(c, "Project created successfully", p)
}

// Update godoc
// @Summary   Replace a project (staff)
// @Tags      projects
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path  string          true  "Project ID"
// @Param     body  body  projectRequest  true  "Project"
// @Success   200  {object}  successResponse{data=domain.Project}
// @Router    /api/projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	var req projectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := h.service.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return err
	}
	return respondMessage(c, "Project updated successfully", p)
}

// Delete godoc
// @Summary   Delete a project (staff)
// @Tags      projects
// @Produce   json
// @Security  BearerAuth
// @Param     id   path  string  true  "Project ID"
// @Success   200  {object}  successResponse
// @Router    /api/projects/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respondMessage(c, "Project deleted successfully", nil)
}

// ToggleFeatured godoc
// @Summary   Toggle the featured flag (staff)
// @Tags      projects
// @Produce   json
// @Security  BearerAuth
// @Param     id   path  string  true  "Project ID"
// @Success   200  {object}  successResponse{data=domain.Project}
// @Router    /api/projects/{id}/featured [patch]
func (h *ProjectHandler) ToggleFeatured(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := h.service.ToggleFeatured(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondMessage(c, "Project featured status updated", p)
}
