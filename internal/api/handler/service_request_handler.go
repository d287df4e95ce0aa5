package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/devagency/agency-api/internal/api/metrics"
	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

// ServiceRequestHandler serves /api/service-requests.
type ServiceRequestHandler struct {
	service ports.ServiceRequestService
}

func NewServiceRequestHandler(service ports.ServiceRequestService) *ServiceRequestHandler {
	return &ServiceRequestHandler{service: service}
}

type createServiceRequestRequest struct {
	ProjectName      string `json:"projectName"      validate:"required,min=3,max=255"`
	ServiceType      string `json:"serviceType"      validate:"required,max=100"`
	Description      string `json:"description"      validate:"required,min=10"`
	BudgetRange      string `json:"budgetRange"      validate:"omitempty,max=50"`
	ExpectedTimeline string `json:"expectedTimeline" validate:"omitempty,max=100"`
}

// updateServiceRequestRequest accepts every updatable field; the service
// drops the ones the caller's role may not change.
type updateServiceRequestRequest struct {
	Description         *string                 `json:"description"`
	BudgetRange         *string                 `json:"budgetRange"`
	Status              *domain.RequestStatus   `json:"status"`
	Priority            *domain.RequestPriority `json:"priority"`
	Progress            *int                    `json:"progress"`
	AssignedTo          *string                 `json:"assignedTo"          validate:"omitempty,uuid"`
	EstimatedCompletion *time.Time              `json:"estimatedCompletion"`
	ActualCompletion    *time.Time              `json:"actualCompletion"`
	Notes               *string                 `json:"notes"`
}

type statusRequest struct {
	Status domain.RequestStatus `json:"status" validate:"required"`
}

type assignRequest struct {
	AssignedTo string `json:"assignedTo" validate:"required,uuid"`
}

// Create godoc
// @Summary   Submit a service request
// @Tags      service-requests
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body  createServiceRequestRequest  true  "Request details"
// @Success   201  {object}  successResponse{data=domain.ServiceRequest}
// @Failure   400  {object}  errorResponse
// @Router    /api/service-requests [post]
func (h *ServiceRequestHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req createServiceRequestRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sr, err := h.service.Create(c.Request().Context(), actor, ports.CreateServiceRequestInput{
		ProjectName:      req.ProjectName,
		ServiceType:      req.ServiceType,
		Description:      req.Description,
		BudgetRange:      req.BudgetRange,
		ExpectedTimeline: req.ExpectedTimeline,
	})
	if err != nil {
		return err
	}

	metrics.ServiceRequestsCreatedTotal.WithLabelValues(sr.ServiceType).Inc()
	return respondCreated(c, "Service request created successfully", sr)
}

// List godoc
// @Summary   List service requests
// @Description Clients see their own requests; staff see all of them.
// @Tags      service-requests
// @Produce   json
// @Security  BearerAuth
// @Param     status  query  string  false  "pending | in-progress | review | completed | cancelled"
// @Param     page    query  int     false  "Page number"
// @Param     limit   query  int     false  "Page size"
// @Success   200  {object}  successResponse{data=[]domain.ServiceRequest}
// @Router    /api/service-requests [get]
func (h *ServiceRequestHandler) List(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	items, page, err := h.service.List(c.Request().Context(), actor, domain.RequestStatus(c.QueryParam("status")), pageFrom(c))
	if err != nil {
		return err
	}
	return respondList(c, items, page)
}

// Get godoc
// @Summary   Get a service request
// @Tags      service-requests
// @Produce   json
// @Security  BearerAuth
// @Param     id   path  string  true  "Request ID"
// @Success   200  {object}  successResponse{data=domain.ServiceRequest}
// @Failure   403  {object}  errorResponse
// @Failure   404  {object}  errorResponse
// @Router    /api/service-requests/{id} [get]
func (h *ServiceRequestHandler) Get(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	sr, err := h.service.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return respondOK(c, sr)
}

// Update godoc
// @Summary   Update a service request
// @Description Clients may change description and budgetRange; staff may change status, priority, progress, assignedTo, dates and notes.
// @Tags      service-requests
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path  string                       true  "Request ID"
// @Param     body  body  updateServiceRequestRequest  true  "Fields to change"
// @Success   200  {object}  successResponse{data=domain.ServiceRequest}
// @Failure   400  {object}  errorResponse
// @Failure   403  {object}  errorResponse
// @Router    /api/service-requests/{id} [put]
func (h *ServiceRequestHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req updateServiceRequestRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}
	sr, err := h.service.Update(c.Request().Context(), actor, id, ports.ServiceRequestPatch{
		Description:         req.Description,
		BudgetRange:         req.BudgetRange,
		Status:              req.Status,
		Priority:            req.Priority,
		Progress:            req.Progress,
		AssignedTo:          req.AssignedTo,
		EstimatedCompletion: req.EstimatedCompletion,
		ActualCompletion:    req.ActualCompletion,
		Notes:               req.Notes,
	})
	if err != nil {
		return err
	}
	return respondMessage(c, "Service request updated successfully", sr)
}

// Delete godoc
// @Summary   Delete a service request
// @Tags      service-requests
// @Produce   json
// @Security  BearerAuth
// @Param     id   path  string  true  "Request ID"
// @Success   200  {object}  successResponse
// @Failure   403  {object}  errorResponse
// @Router    /api/service-requests/{id} [delete]
func (h *ServiceRequestHandler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return respondMessage(c, "Service request deleted successfully", nil)
}

// UpdateStatus godoc
// @Summary   Change request status (staff)
// @Tags      service-requests
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path  string         true  "Request ID"
// @Param     body  body  statusRequest  true  "New status"
// @Success   200  {object}  successResponse{data=domain.ServiceRequest}
// @Router    /api/service-requests/{id}/status [patch]
func (h *ServiceRequestHandler) UpdateStatus(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	sr, err := h.service.UpdateStatus(c.Request().Context(), actor, id, req.Status)
	if err != nil {
		return err
	}
	return respondMessage(c, "Status updated successfully", sr)
}

// Assign godoc
// @Summary   Assign a request to a staff member
// @Tags      service-requests
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path  string         true  "Request ID"
// @Param     body  body  assignRequest  true  "Assignee"
// @Success   200  {object}  successResponse{data=domain.ServiceRequest}
// @Router    /api/service-requests/{id}/assign [patch]
func (h *ServiceRequestHandler) Assign(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req assignRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	sr, err := h.service.Assign(c.Request().Context(), actor, id, req.AssignedTo)
	if err != nil {
		return err
	}
	return respondMessage(c, "Request assigned successfully", sr)
}

// Stats godoc
// @Summary   Request counts by status (staff)
// @Tags      service-requests
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  successResponse{data=domain.ServiceRequestStats}
// @Router    /api/service-requests/stats/overview [get]
func (h *ServiceRequestHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respondOK(c, stats)
}
