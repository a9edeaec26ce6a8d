package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/fluttercity/auth-backend/internal/domain"
	"github.com/fluttercity/auth-backend/internal/service"
	"github.com/fluttercity/auth-backend/internal/util"
)

var errSMTPDown = errors.New("smtp down")

type stubUserRepo struct {
	user       *domain.User
	createErr  error
	updateRows int64
}

func (s *stubUserRepo) Create(ctx context.Context, name, email string, passwordHash []byte) (*domain.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	u := &domain.User{ID: uuid.New(), Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	return u, nil
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, sql.ErrNoRows
	}
	clone := *s.user
	return &clone, nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, sql.ErrNoRows
	}
	clone := *s.user
	return &clone, nil
}

func (s *stubUserRepo) UpdatePassword(ctx context.Context, email string, passwordHash []byte) (int64, error) {
	return s.updateRows, nil
}

type stubResetRepo struct {
	active *domain.PasswordReset
}

func (s *stubResetRepo) Create(ctx context.Context, userID uuid.UUID, tokenHash []byte, expiresAt time.Time) (*domain.PasswordReset, error) {
	return &domain.PasswordReset{ID: 1, UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}, nil
}

func (s *stubResetRepo) FindActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.PasswordReset, error) {
	if s.active == nil {
		return nil, sql.ErrNoRows
	}
	clone := *s.active
	return &clone, nil
}

func (s *stubResetRepo) MarkConsumed(ctx context.Context, id int64) error { return nil }

func (s *stubResetRepo) ConsumeByUser(ctx context.Context, userID uuid.UUID) error { return nil }

type stubMailer struct {
	sent int
	err  error
}

func (s *stubMailer) SendPasswordReset(ctx context.Context, email, link string) error {
	s.sent++
	return s.err
}

func newTestServer(users *stubUserRepo, resets *stubResetRepo, mailer *stubMailer) (*echo.Echo, *service.AuthService) {
	if resets == nil {
		resets = &stubResetRepo{}
	}
	if mailer == nil {
		mailer = &stubMailer{}
	}
	jwtManager := util.NewJWTManager("test-secret", time.Hour)
	svc := service.NewAuthService(users, resets, mailer, jwtManager, "http://localhost:60966/reset-password", time.Hour, time.Second)
	e := NewRouter([]string{"*"})
	RegisterAuth(e, svc)
	return e, svc
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	e, _ := newTestServer(&stubUserRepo{}, nil, nil)

	rec := postJSON(e, "/register", `{"name":"Alice","email":"alice@gmail.com","password":"pass1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message string          `json:"message"`
		User    json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response did not decode: %v", err)
	}
	if resp.Message != "User registered successfully" {
		t.Fatalf("unexpected message %q", resp.Message)
	}
	if strings.Contains(string(resp.User), "password") || strings.Contains(string(resp.User), "hash") {
		t.Fatalf("credential material leaked in response: %s", resp.User)
	}
	if !strings.Contains(string(resp.User), "alice@gmail.com") {
		t.Fatalf("expected created user in response: %s", resp.User)
	}
}

func TestRegisterEndpointValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "missing name", body: `{"email":"alice@gmail.com","password":"pass1"}`},
		{name: "non-gmail email", body: `{"name":"Alice","email":"alice@example.com","password":"pass1"}`},
		{name: "short password", body: `{"name":"Alice","email":"alice@gmail.com","password":"pass"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, _ := newTestServer(&stubUserRepo{}, nil, nil)
			rec := postJSON(e, "/register", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRegisterEndpointDuplicateEmail(t *testing.T) {
	hash, _ := util.HashPassword("pass1")
	existing := &domain.User{ID: uuid.New(), Name: "Alice", Email: "alice@gmail.com", PasswordHash: hash}
	e, _ := newTestServer(&stubUserRepo{user: existing}, nil, nil)

	rec := postJSON(e, "/register", `{"name":"Alice","email":"alice@gmail.com","password":"pass1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Email already in use.") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestLoginEndpoint(t *testing.T) {
	hash, _ := util.HashPassword("pass1")
	user := &domain.User{ID: uuid.New(), Name: "Alice", Email: "alice@gmail.com", PasswordHash: hash}
	e, _ := newTestServer(&stubUserRepo{user: user}, nil, nil)

	rec := postJSON(e, "/login", `{"email":"alice@gmail.com","password":"pass1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response did not decode: %v", err)
	}
	if !resp.Success || resp.Token == "" {
		t.Fatalf("expected success with token, got %+v", resp)
	}

	t.Run("wrong password", func(t *testing.T) {
		rec := postJSON(e, "/login", `{"email":"alice@gmail.com","password":"wrong"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Invalid credentials") {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("unknown email looks identical", func(t *testing.T) {
		rec := postJSON(e, "/login", `{"email":"nobody@gmail.com","password":"pass1"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Invalid credentials") {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})
}

func TestSendResetLinkEndpoint(t *testing.T) {
	hash, _ := util.HashPassword("pass1")
	user := &domain.User{ID: uuid.New(), Name: "Alice", Email: "alice@gmail.com", PasswordHash: hash}

	t.Run("success", func(t *testing.T) {
		mailer := &stubMailer{}
		e, _ := newTestServer(&stubUserRepo{user: user}, nil, mailer)
		rec := postJSON(e, "/send-reset-link", `{"email":"alice@gmail.com"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if mailer.sent != 1 {
			t.Fatalf("expected one delivery, got %d", mailer.sent)
		}
		if !strings.Contains(rec.Body.String(), "Password reset link sent!") {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("invalid address", func(t *testing.T) {
		e, _ := newTestServer(&stubUserRepo{user: user}, nil, nil)
		rec := postJSON(e, "/send-reset-link", `{"email":"alice@example.com"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		mailer := &stubMailer{}
		e, _ := newTestServer(&stubUserRepo{}, nil, mailer)
		rec := postJSON(e, "/send-reset-link", `{"email":"nobody@gmail.com"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if mailer.sent != 0 {
			t.Fatal("expected no delivery for unknown email")
		}
	})

	t.Run("delivery failure", func(t *testing.T) {
		mailer := &stubMailer{err: errSMTPDown}
		e, _ := newTestServer(&stubUserRepo{user: user}, nil, mailer)
		rec := postJSON(e, "/send-reset-link", `{"email":"alice@gmail.com"}`)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Error sending email") {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})
}

func TestResetPasswordEndpoint(t *testing.T) {
	hash, _ := util.HashPassword("pass1")
	user := &domain.User{ID: uuid.New(), Name: "Alice", Email: "alice@gmail.com", PasswordHash: hash}
	tokenHash, _ := util.HashPassword("link-token")
	active := &domain.PasswordReset{ID: 1, UserID: user.ID, TokenHash: tokenHash, ExpiresAt: time.Now().Add(10 * time.Minute)}

	t.Run("success", func(t *testing.T) {
		e, _ := newTestServer(&stubUserRepo{user: user, updateRows: 1}, &stubResetRepo{active: active}, nil)
		rec := postJSON(e, "/reset-password", `{"email":"alice@gmail.com","token":"link-token","newPassword":"pass2"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp TokenResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("response did not decode: %v", err)
		}
		if !resp.Success || resp.Token == "" {
			t.Fatalf("expected success with token, got %+v", resp)
		}
	})

	t.Run("short password", func(t *testing.T) {
		e, _ := newTestServer(&stubUserRepo{user: user, updateRows: 1}, &stubResetRepo{active: active}, nil)
		rec := postJSON(e, "/reset-password", `{"email":"alice@gmail.com","token":"link-token","newPassword":"pas"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("bad token", func(t *testing.T) {
		e, _ := newTestServer(&stubUserRepo{user: user, updateRows: 1}, &stubResetRepo{active: active}, nil)
		rec := postJSON(e, "/reset-password", `{"email":"alice@gmail.com","token":"guess","newPassword":"pass2"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		e, _ := newTestServer(&stubUserRepo{}, &stubResetRepo{active: active}, nil)
		rec := postJSON(e, "/reset-password", `{"email":"nobody@gmail.com","token":"link-token","newPassword":"pass2"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestMeEndpoint(t *testing.T) {
	hash, _ := util.HashPassword("pass1")
	user := &domain.User{ID: uuid.New(), Name: "Alice", Email: "alice@gmail.com", PasswordHash: hash}
	e, svc := newTestServer(&stubUserRepo{user: user}, nil, nil)

	result, err := svc.LoginWithEmail(context.Background(), "alice@gmail.com", "pass1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+result.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "alice@gmail.com") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("mangled token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
