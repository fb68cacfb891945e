package service

import (
	"context"

	"meetingease_backend/internal/clients/repository"

	"github.com/google/uuid"
)

// ProfileStore is the client registry surface the profile service needs.
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Client, error)
	GetCompanyByID(ctx context.Context, id uuid.UUID) (*repository.Company, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name, surname, phone, position string) error
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	SetPhotoKey(ctx context.Context, id uuid.UUID, key string) error
}
