package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devagency/agency-api/internal/api/metrics"
	"github.com/devagency/agency-api/internal/api/middleware"
	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

const maxAvatarBytes = 5 << 20

type AuthHandler struct {
	authService ports.AuthService
	userService ports.UserService
}

func NewAuthHandler(authService ports.AuthService, userService ports.UserService) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"    validate:"omitempty,max=20"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name      *string `json:"name"      validate:"omitempty,min=2,max=100"`
	Phone     *string `json:"phone"     validate:"omitempty,max=20"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,max=500"`
}

type authData struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates a new client account and opens a session for it.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  successResponse{data=authData}
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Phone:       req.Phone,
		RequestMeta: requestMeta(c),
	})
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "failure").Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	return respondCreated(c, "User registered successfully", authData{User: result.User, Token: result.Token})
}

// Login verifies credentials and returns a bearer token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  successResponse{data=authData}
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Email:       req.Email,
		Password:    req.Password,
		RequestMeta: requestMeta(c),
	})
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return respondMessage(c, "Login successful", authData{User: result.User, Token: result.Token})
}

// Logout revokes the presented session, if any. It always succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  successResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if token, ok := middleware.BearerToken(c.Request()); ok {
		if err := h.authService.Logout(c.Request().Context(), ports.LogoutInput{
			Token:       token,
			RequestMeta: requestMeta(c),
		}); err != nil {
			return err
		}
	}
	return respondMessage(c, "Logout successful", nil)
}

// Me returns the authenticated user's profile.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  successResponse{data=domain.User}
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	user, err := h.authService.Me(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}
	return respondOK(c, user)
}

// UpdateProfile edits the caller's own name, phone and avatar URL.
//
// @Summary      Update profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      profileRequest  true  "Profile fields"
// @Success      200   {object}  successResponse{data=domain.User}
// @Failure      400   {object}  errorResponse
// @Router       /api/auth/profile [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.authService.UpdateProfile(c.Request().Context(), actor.UserID, ports.ProfileInput{
		Name:      req.Name,
		Phone:     req.Phone,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return err
	}
	return respondMessage(c, "Profile updated successfully", user)
}

// UploadAvatar stores a profile image and sets it as the caller's avatar.
//
// @Summary      Upload avatar
// @Tags         auth
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar  formData  file  true  "Image file (max 5MB)"
// @Success      200     {object}  successResponse{data=domain.User}
// @Failure      400     {object}  errorResponse
// @Failure      503     {object}  errorResponse
// @Router       /api/auth/avatar [post]
func (h *AuthHandler) UploadAvatar(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return domain.NewValidationError("avatar", "avatar file is required")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart form")
	}
	if fh.Size > maxAvatarBytes {
		return domain.NewValidationError("avatar", "avatar must be at most 5MB")
	}

	file, err := fh.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	user, err := h.userService.UploadAvatar(c.Request().Context(), actor.UserID, ports.AvatarUpload{
		Body:        file,
		Size:        fh.Size,
		ContentType: fh.Header.Get(echo.HeaderContentType),
	})
	if err != nil {
		return err
	}
	return respondMessage(c, "Avatar uploaded successfully", user)
}

// Sessions lists the caller's active sessions.
//
// @Summary      Active sessions
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  successResponse{data=[]domain.Session}
// @Router       /api/auth/sessions [get]
func (h *AuthHandler) Sessions(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	sessions, err := h.authService.Sessions(c.Request().Context(), actor.UserID)
	if err != nil {
		return err
	}
	return respondOK(c, sessions)
}
