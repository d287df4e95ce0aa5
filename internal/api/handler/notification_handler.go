package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type createNotificationRequest struct {
	UserID  string                  `json:"userId"  validate:"required,uuid"`
	Title   string                  `json:"title"   validate:"required,max=255"`
	Message string                  `json:"message" validate:"required"`
	Type    domain.NotificationType `json:"type"    validate:"omitempty,oneof=info success warning error"`
	Link    string                  `json:"link"    validate:"omitempty,max=500"`
}

// List godoc
// @Summary   List own notifications
// @Tags      notifications
// @Produce   json
// @Security  BearerAuth
// @Param     read   query  bool  false  "Filter by read state"
// @Param     page   query  int   false  "Page number"
// @Param     limit  query  int   false  "Page size"
// @Success   200  {object}  successResponse{data=[]domain.Notification}
// @Router    /api/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	items, page, err := h.service.List(c.Request().Context(), domain.NotificationFilter{
		UserID: actor.UserID,
		Read:   queryBool(c, "read"),
		Page:   pageFrom(c),
	})
	if err != nil {
		return err
	}
	return respondList(c, items, page)
}

// UnreadCount godoc
// @Summary   Count unread notifications
// @Tags      notifications
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  successResponse
// @Router    /api/notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	n, err := h.service.UnreadCount(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}
	return respondOK(c, map[string]int64{"count": n})
}

// MarkRead godoc
// @Summary   Mark a notification as read
// @Tags      notifications
// @Produce   json
// @Security  BearerAuth
// @Param     id   path  string  true  "Notification ID"
// @Success   200  {object}  successResponse{data=domain.Notification}
// @Failure   404  {object}  errorResponse
// @Router    /api/notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	n, err := h.service.MarkRead(c.Request().Context(), id, actor.UserID)
	if err != nil {
		return err
	}
	return respondMessage(c, "Notification marked as read", n)
}

// MarkAllRead godoc
// @Summary   Mark every notification as read
// @Tags      notifications
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  successResponse
// @Router    /api/notifications/mark-all-read [patch]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.MarkAllRead(c.Request().Context(), actor.UserID); err != nil {
		return err
	}
	return respondMessage(c, "All notifications marked as read", nil)
}

// Delete godoc
// @Summary   Delete a notification
// @Tags      notifications
// @Produce   json
// @Security  BearerAuth
// @Param     id   path  string  true  "Notification ID"
// @Success   200  {object}  successResponse
// @Failure   404  {object}  errorResponse
// @Router    /api/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id, actor.UserID); err != nil {
		return err
	}
	return respondMessage(c, "Notification deleted successfully", nil)
}

// Create godoc
// @Summary   Send a notification to a user (staff)
// @Tags      notifications
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body  createNotificationRequest  true  "Notification"
// @Success   201  {object}  successResponse{data=domain.Notification}
// @Failure   400  {object}  errorResponse
// @Router    /api/notifications [post]
func (h *NotificationHandler) Create(c echo.Context) error {
	var req createNotificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	n, err := h.service.Create(c.Request().Context(), ports.CreateNotificationInput{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
		Link:    req.Link,
	})
	if err != nil {
		return err
	}
	return respondCreated(c, "Notification created successfully", n)
}
