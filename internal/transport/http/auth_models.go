package http

import "time"

// ErrorResponse represents a generic error payload.
type ErrorResponse struct {
	Message string `json:"message" example:"Server error"`
}

// AuthUser models the sanitized user representation returned by auth
// endpoints. The credential hash never appears here.
type AuthUser struct {
	ID        string    `json:"id" example:"9fd13fd2-63c5-4f29-a210-4a1a8e285f74"`
	Name      string    `json:"name" example:"Alice"`
	Email     string    `json:"email" example:"alice@gmail.com"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-01T12:00:00Z"`
	UpdatedAt time.Time `json:"updated_at" example:"2024-01-02T09:30:00Z"`
}

// RegisterRequest carries the registration fields.
type RegisterRequest struct {
	Name     string `json:"name" example:"Alice"`
	Email    string `json:"email" example:"alice@gmail.com"`
	Password string `json:"password" example:"pass1"`
}

// RegisterResponse is returned on successful registration.
type RegisterResponse struct {
	Message string   `json:"message" example:"User registered successfully"`
	User    AuthUser `json:"user"`
}

// LoginRequest carries the login fields.
type LoginRequest struct {
	Email    string `json:"email" example:"alice@gmail.com"`
	Password string `json:"password" example:"pass1"`
}

// TokenResponse is returned by endpoints that issue a JWT.
type TokenResponse struct {
	Success   bool   `json:"success" example:"true"`
	Message   string `json:"message" example:"Login successful"`
	Token     string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt string `json:"expires_at" example:"2024-01-01T13:00:00Z"`
}

// ResetLinkRequest carries the email a reset link should go to.
type ResetLinkRequest struct {
	Email string `json:"email" example:"alice@gmail.com"`
}

// MessageResponse denotes a simple confirmation message.
type MessageResponse struct {
	Message string `json:"message" example:"Password reset link sent!"`
}

// ResetPasswordRequest carries the payload for completing a reset. The token
// is the secret delivered inside the emailed link.
type ResetPasswordRequest struct {
	Email       string `json:"email" example:"alice@gmail.com"`
	Token       string `json:"token" example:"3q2-8fKzXhYB..."`
	NewPassword string `json:"newPassword" example:"pass2"`
}

// MeResponse wraps the authenticated user.
type MeResponse struct {
	User AuthUser `json:"user"`
}
