package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

// UserHandler serves the admin user management routes.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type createUserRequest struct {
	Name     string      `json:"name"     validate:"required,min=2,max=100"`
	Email    string      `json:"email"    validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     domain.Role `json:"role"     validate:"omitempty,oneof=client admin super_admin"`
	Phone    string      `json:"phone"    validate:"omitempty,max=20"`
}

type updateUserRequest struct {
	Name      *string            `json:"name"      validate:"omitempty,min=2,max=100"`
	Phone     *string            `json:"phone"     validate:"omitempty,max=20"`
	Role      *domain.Role       `json:"role"      validate:"omitempty,oneof=client admin super_admin"`
	Status    *domain.UserStatus `json:"status"    validate:"omitempty,oneof=active inactive suspended"`
	AvatarURL *string            `json:"avatarUrl" validate:"omitempty,max=500"`
}

// List godoc
// @Summary   List users
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Param     role    query  string  false  "client | admin | super_admin"
// @Param     status  query  string  false  "active | inactive | suspended"
// @Param     search  query  string  false  "Matches name or email"
// @Param     page    query  int     false  "Page number"
// @Param     limit   query  int     false  "Page size"
// @Success   200  {object}  successResponse{data=[]domain.User}
// @Failure   403  {object}  errorResponse
// @Router    /api/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, page, err := h.service.List(c.Request().Context(), domain.UserFilter{
		Role:   domain.Role(c.QueryParam("role")),
		Status: domain.UserStatus(c.QueryParam("status")),
		Search: c.QueryParam("search"),
		Page:   pageFrom(c),
	})
	if err != nil {
		return err
	}
	return respondList(c, users, page)
}

// Get godoc
// @Summary   Get user with activity stats
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Param     id   path  string  true  "User ID"
// @Success   200  {object}  successResponse
// @Failure   404  {object}  errorResponse
// @Router    /api/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	detail, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondOK(c, map[string]any{
		"user":           detail.User,
		"recentRequests": detail.RecentRequests,
		"stats":          detail.Stats,
	})
}

// Create godoc
// @Summary   Create user
// @Tags      users
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body  createUserRequest  true  "New account"
// @Success   201  {object}  successResponse{data=domain.User}
// @Failure   400  {object}  errorResponse
// @Failure   409  {object}  errorResponse
// @Router    /api/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req createUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.service.Create(c.Request().Context(), actor, ports.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
	})
	if err != nil {
		return err
	}
	return respondCreated(c, "User created successfully", user)
}

// Update godoc
// @Summary   Update user
// @Tags      users
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path  string             true  "User ID"
// @Param     body  body  updateUserRequest  true  "Fields to change"
// @Success   200  {object}  successResponse{data=domain.User}
// @Failure   400  {object}  errorResponse
// @Failure   404  {object}  errorResponse
// @Router    /api/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.service.Update(c.Request().Context(), actor, id, ports.UpdateUserInput{
		Name:      req.Name,
		Phone:     req.Phone,
		Role:      req.Role,
		Status:    req.Status,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return err
	}
	return respondMessage(c, "User updated successfully", user)
}

// Delete godoc
// @Summary   Delete user
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Param     id   path  string  true  "User ID"
// @Success   200  {object}  successResponse
// @Failure   400  {object}  errorResponse
// @Failure   404  {object}  errorResponse
// @Router    /api/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
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
	return respondMessage(c, "User deleted successfully", nil)
}

// Stats godoc
// @Summary   User statistics
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Success   200  {object}  successResponse{data=domain.UserStats}
// @Router    /api/users/stats/overview [get]
func (h *UserHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respondOK(c, stats)
}

// Activity godoc
// @Summary   Recent activity of a user
// @Tags      users
// @Produce   json
// @Security  BearerAuth
// @Param     id     path   string  true   "User ID"
// @Param     limit  query  int     false  "Max entries (default 20)"
// @Success   200  {object}  successResponse{data=[]domain.ActivityLog}
// @Router    /api/users/{id}/activity [get]
func (h *UserHandler) Activity(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	entries, err := h.service.Activity(c.Request().Context(), id, queryInt(c, "limit"))
	if err != nil {
		return err
	}
	return respondOK(c, entries)
}
