package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

type ContactHandler struct {
	service ports.ContactService
}

func NewContactHandler(service ports.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

type contactRequest struct {
	Name    string `json:"name"    validate:"required,min=2,max=100"`
	Email   string `json:"email"   validate:"required,email"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
	Phone   string `json:"phone"   validate:"omitempty,max=20"`
	Company string `json:"company" validate:"omitempty,max=255"`
}

type contactStatusRequest struct {
	Status domain.ContactStatus `json:"status" validate:"required"`
}

// Submit godoc
// @Summary   Submit the contact form
// @Tags      contact
// @Accept    json
// @Produce   json
// @Param     body  body  contactRequest  true  "Message"
// @Success   201  {object}  successResponse
// @Failure   400  {object}  errorResponse
// @Router    /api/contact [post]
func (h *ContactHandler) Submit(c echo.Context) error {
	var req contactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	contact, err := h.service.Submit(c.Request().Context(), ports.SubmitContactInput{
		Name:        req.Name,
		Email:       req.Email,
		Message:     req.Message,
		Phone:       req.Phone,
		Company:     req.Company,
		RequestMeta: requestMeta(c),
	})
	if err != nil {
		return err
	}
	return respondCreated(c, "Thank you for contacting us! We will get back to you soon.", map[string]string{"id": contact.ID})
}

// List godoc
// @Summary   List contact submissions (staff)
// @Tags      contact
// @Produce   json
// @Security  BearerAuth
// @Param     status  query  string  false  "new | read | replied | archived"
// @Param     page    query  int     false  "Page number"
// @Param     limit   query  int     false  "Page size"
// @Success   200  {object}  successResponse{data=[]domain.Contact}
// @Router    /api/contact [get]
func (h *ContactHandler) List(c echo.Context) error {
	items, page, err := h.service.List(c.Request().Context(), domain.ContactFilter{
		Status: domain.ContactStatus(c.QueryParam("status")),
		Page:   pageFrom(c),
	})
	if err != nil {
		return err
	}
	return respondList(c, items, page)
}

// Get godoc
// @Summary   Get a contact submission (staff)
// @Tags      contact
// @Produce   json
// @Security  BearerAuth
// @Param     id   path  string  true  "Contact ID"
// @Success   200  {object}  successResponse{data=domain.Contact}
// @Failure   404  {object}  errorResponse
// @Router    /api/contact/{id} [get]
func (h *ContactHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	contact, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondOK(c, contact)
}

// UpdateStatus godoc
// @Summary   Change contact status (staff)
// @Tags      contact
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path  string                true  "Contact ID"
// @Param     body  body  contactStatusRequest  true  "New status"
// @Success   200  {object}  successResponse{data=domain.Contact}
// @Router    /api/contact/{id}/status [patch]
func (h *ContactHandler) UpdateStatus(c echo.Context) error {
	var req contactStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	contact, err := h.service.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return respondMessage(c, "Contact status updated", contact)
}

// Delete godoc
// @Summary   Delete a contact submission (staff)
// @Tags      contact
// @Produce   json
// @Security  BearerAuth
// @Param     id   path  string  true  "Contact ID"
// @Success   200  {object}  successResponse
// @Router    /api/contact/{id} [delete]
func (h *ContactHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respondMessage(c, "Contact deleted successfully", nil)
}
