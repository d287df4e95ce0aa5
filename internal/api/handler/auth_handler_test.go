package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/devagency/agency-api/internal/api/middleware"
	"github.com/devagency/agency-api/internal/core/domain"
	"github.com/devagency/agency-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error)
	logoutFn   func(ctx context.Context, in ports.LogoutInput) error
	meFn       func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	return s.loginFn(ctx, in)
}

func (s *stubAuthService) Logout(ctx context.Context, in ports.LogoutInput) error {
	return s.logoutFn(ctx, in)
}

func (s *stubAuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.meFn(ctx, userID)
}

func (s *stubAuthService) UpdateProfile(context.Context, string, ports.ProfileInput) (*domain.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAuthService) Sessions(context.Context, string) ([]*domain.Session, error) {
	return nil, errors.New("not implemented")
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

type sessionFor struct {
	user *domain.User
}

func (s sessionFor) Validate(context.Context, string) (*domain.Session, error) {
	return &domain.Session{ID: "s-" + s.user.ID, UserID: s.user.ID, User: s.user}, nil
}

// authenticateAs runs the Authenticate middleware so that c carries user.
func authenticateAs(t *testing.T, c echo.Context, user *domain.User) {
	t.Helper()
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer test-token")
	err := middleware.Authenticate(sessionFor{user: user}, zerolog.Nop())(func(echo.Context) error { return nil })(c)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
}

func jsonRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Name != "Alice" || in.Email != "alice@example.com" || in.Password != "secret1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{
				User:  &domain.User{ID: "u1", Name: in.Name, Email: in.Email, Role: domain.RoleClient, PasswordHash: "leak"},
				Token: "token123",
			}, nil
		},
	}
	handler := NewAuthHandler(stub, nil)

	c, rec := jsonRequest(e, http.MethodPost, "/api/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret1"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["success"] != true {
		t.Fatalf("expected success=true: %+v", resp)
	}
	data, _ := resp["data"].(map[string]any)
	if data["token"] != "token123" {
		t.Fatalf("expected token in data: %+v", data)
	}
	user, _ := data["user"].(map[string]any)
	if user["email"] != "alice@example.com" || user["role"] != "client" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "leak") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, nil)

	c, _ := jsonRequest(e, http.MethodPost, "/api/auth/register", `{"name":"A","email":"not-an-email","password":"123"}`)
	err := handler.Register(c)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := map[string]bool{}
	for _, f := range ve.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"name", "email", "password"} {
		if !fields[want] {
			t.Errorf("expected field error for %s, got %+v", want, ve.Fields)
		}
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, nil)

	c, _ := jsonRequest(e, http.MethodPost, "/api/auth/register", "not-json")
	err := handler.Register(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub, nil)

	c, _ := jsonRequest(e, http.MethodPost, "/api/auth/register", `{"name":"Bob","email":"bob@example.com","password":"secret1"}`)
	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
			if in.Email != "alice@example.com" || in.Password != "secret" {
				t.Fatalf("unexpected args: %+v", in)
			}
			if in.UserAgent != "go-test" {
				t.Fatalf("expected user agent to be forwarded, got %q", in.UserAgent)
			}
			return &ports.AuthResult{Token: "token123", User: &domain.User{ID: "u1", Role: domain.RoleAdmin}}, nil
		},
	}
	handler := NewAuthHandler(stub, nil)

	c, rec := jsonRequest(e, http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"secret"}`)
	c.Request().Header.Set("User-Agent", "go-test")
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ := decode(t, rec)["data"].(map[string]any)
	if data["token"] != "token123" {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, ports.LoginInput) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub, nil)

	c, _ := jsonRequest(e, http.MethodPost, "/api/auth/login", `{"email":"alice@example.com","password":"wrong"}`)
	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
	}{
		{name: "with bearer", header: "Bearer tok123", wantToken: "tok123"},
		{name: "without bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEcho()
			var revoked string
			stub := &stubAuthService{
				logoutFn: func(_ context.Context, in ports.LogoutInput) error {
					revoked = in.Token
					return nil
				},
			}
			handler := NewAuthHandler(stub, nil)

			c, rec := jsonRequest(e, http.MethodPost, "/api/auth/logout", "")
			if tt.header != "" {
				c.Request().Header.Set("Authorization", tt.header)
			}
			if err := handler.Logout(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if revoked != tt.wantToken {
				t.Fatalf("expected revoked token %q, got %q", tt.wantToken, revoked)
			}
		})
	}
}

func TestAuthHandler_Me_RequiresBoundUser(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, nil)

	c, _ := jsonRequest(e, http.MethodGet, "/api/auth/me", "")
	err := handler.Me(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

type stubUserService struct {
	ports.UserService
	uploadFn func(ctx context.Context, userID string, in ports.AvatarUpload) (*domain.User, error)
}

func (s *stubUserService) UploadAvatar(ctx context.Context, userID string, in ports.AvatarUpload) (*domain.User, error) {
	return s.uploadFn(ctx, userID, in)
}

func TestAuthHandler_UploadAvatar(t *testing.T) {
	e := newEcho()
	users := &stubUserService{
		uploadFn: func(_ context.Context, userID string, in ports.AvatarUpload) (*domain.User, error) {
			if userID != "u1" || in.ContentType != "image/png" || in.Size != 4 {
				t.Fatalf("unexpected upload: %s %+v", userID, in)
			}
			return &domain.User{ID: "u1", AvatarURL: "https://cdn.example.com/avatars/u1/a.png"}, nil
		},
	}
	handler := NewAuthHandler(&stubAuthService{}, users)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="avatar"; filename="a.png"`)
	header.Set("Content-Type", "image/png")
	part, _ := mw.CreatePart(header)
	_, _ = part.Write([]byte("\x89PNG"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/avatar", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	authenticateAs(t, c, &domain.User{ID: "u1", Role: domain.RoleClient, Status: domain.StatusActive})

	if err := handler.UploadAvatar(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ := decode(t, rec)["data"].(map[string]any)
	if data["avatarUrl"] != "https://cdn.example.com/avatars/u1/a.png" {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestAuthHandler_UploadAvatar_MissingFile(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{}, &stubUserService{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("other", "x")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/avatar", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	c := e.NewContext(req, httptest.NewRecorder())
	authenticateAs(t, c, &domain.User{ID: "u1", Role: domain.RoleClient, Status: domain.StatusActive})

	var ve *domain.ValidationError
	if err := handler.UploadAvatar(c); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
