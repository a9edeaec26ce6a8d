package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fluttercity/auth-backend/internal/domain"
	"github.com/fluttercity/auth-backend/internal/service"
	"github.com/fluttercity/auth-backend/internal/util"
)

// RegisterAuth wires the credential endpoints. Paths match the original
// client's expectations.
func RegisterAuth(e *echo.Echo, s *service.AuthService) {
	e.POST("/register", func(c echo.Context) error { return handleRegister(c, s) })
	e.POST("/login", func(c echo.Context) error { return handleLogin(c, s) })
	e.POST("/send-reset-link", func(c echo.Context) error { return handleSendResetLink(c, s) })
	e.POST("/reset-password", func(c echo.Context) error { return handleResetPassword(c, s) })
	e.GET("/api/v1/auth/me", handleMe, RequireAuth(s))
}

func handleRegister(c echo.Context, s *service.AuthService) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
	}

	user, err := s.RegisterWithEmail(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNameRequired),
			errors.Is(err, service.ErrInvalidEmail),
			errors.Is(err, service.ErrPasswordTooShort):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
		case errors.Is(err, service.ErrEmailAlreadyUsed):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Email already in use."})
		default:
			c.Logger().Errorf("register: %v", err)
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Server error"})
		}
	}

	return c.JSON(http.StatusCreated, RegisterResponse{
		Message: "User registered successfully",
		User:    toAuthUser(user),
	})
}

func handleLogin(c echo.Context, s *service.AuthService) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
	}

	result, err := s.LoginWithEmail(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, TokenResponse{Success: false, Message: "Invalid credentials"})
		}
		c.Logger().Errorf("login: %v", err)
		return c.JSON(http.StatusInternalServerError, TokenResponse{Success: false, Message: "Server error"})
	}

	return c.JSON(http.StatusOK, TokenResponse{
		Success:   true,
		Message:   "Login successful",
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.Format(time.RFC3339),
	})
}

func handleSendResetLink(c echo.Context, s *service.AuthService) error {
	var req ResetLinkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
	}

	if err := s.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid email address"})
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, ErrorResponse{Message: "We cannot find your email, re-check your email!!!"})
		case errors.Is(err, service.ErrMailDelivery):
			c.Logger().Errorf("send reset link: %v", err)
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Error sending email"})
		default:
			c.Logger().Errorf("send reset link: %v", err)
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Server error"})
		}
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Password reset link sent!"})
}

func handleResetPassword(c echo.Context, s *service.AuthService) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body"})
	}

	result, err := s.ConfirmPasswordReset(c.Request().Context(), req.Email, req.Token, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordTooShort):
			return c.JSON(http.StatusBadRequest, TokenResponse{Success: false, Message: "Password must be at least 5 characters long."})
		case errors.Is(err, service.ErrResetTokenInvalid), errors.Is(err, service.ErrResetTokenExpired):
			return c.JSON(http.StatusBadRequest, TokenResponse{Success: false, Message: "Invalid or expired reset link"})
		case errors.Is(err, service.ErrUserNotFound):
			return c.JSON(http.StatusNotFound, TokenResponse{Success: false, Message: "User not found"})
		default:
			c.Logger().Errorf("reset password: %v", err)
			return c.JSON(http.StatusInternalServerError, TokenResponse{Success: false, Message: "Error resetting password"})
		}
	}

	return c.JSON(http.StatusOK, TokenResponse{
		Success:   true,
		Message:   "Password has been reset successfully.",
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.Format(time.RFC3339),
	})
}

func handleMe(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	return c.JSON(http.StatusOK, MeResponse{User: toAuthUser(user)})
}

func toAuthUser(u *domain.User) AuthUser {
	return AuthUser{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
