// Package transport defines request and response DTOs for client profiles.
package transport

import "github.com/google/uuid"

// UpdateProfileRequest updates the caller's profile fields. Empty fields
// are left unchanged.
type UpdateProfileRequest struct {
	Name     string `json:"name" validate:"omitempty,max=100"`
	Surname  string `json:"surname" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Position string `json:"position" validate:"omitempty,max=100"`
}

// UpdateRoleRequest changes a colleague's company role.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=ADMIN USER"`
}

// ChangePasswordRequest replaces the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

// ProfileResponse is the caller's profile with company and photo URL resolved.
type ProfileResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Surname    string    `json:"surname"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Position   string    `json:"position"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"isVerified"`
	Company    string    `json:"company"`
	PhotoURL   string    `json:"photoUrl,omitempty"`
}
