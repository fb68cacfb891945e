// Package transport defines request and response DTOs for authentication.
package transport

// RegisterRequest creates a new client account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Surname  string `json:"surname" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Position string `json:"position" validate:"omitempty,max=100"`
	Company  string `json:"company" validate:"required,min=1,max=200"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest authenticates a client or an agent by email and password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest exchanges a refresh token for a new token pair.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest revokes the current session.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// VerifyEmailRequest confirms an email address.
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// ForgotPasswordRequest asks for a password reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest sets a new password using the emailed token.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

// TokenPairResponse carries a freshly issued access and refresh token.
type TokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
