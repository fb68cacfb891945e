// Package service implements client profile management.
package service

import (
	"context"
	"fmt"
	"io"

	"meetingease_backend/internal/clients/repository"
	"meetingease_backend/internal/clients/transport"
	"meetingease_backend/internal/storage"
	"meetingease_backend/platform/apperr"
	"meetingease_backend/platform/logger"
	"meetingease_backend/platform/phone"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service manages client profiles.
type Service struct {
	repo    ProfileStore
	storage storage.StorageService
	bucket  string
	log     *logger.Logger
}

// New creates a new clients service. The storage service may be nil when
// MinIO is not configured, in which case photo uploads are rejected.
func New(repo ProfileStore, storageSvc storage.StorageService, bucket string, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		storage: storageSvc,
		bucket:  bucket,
		log:     log,
	}
}

// GetProfile returns the caller's profile with company name and a presigned
// photo URL when a photo is stored.
func (s *Service) GetProfile(ctx context.Context, clientID uuid.UUID) (*transport.ProfileResponse, error) {
	client, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	company, err := s.repo.GetCompanyByID(ctx, client.CompanyID)
	if err != nil {
		return nil, err
	}

	resp := &transport.ProfileResponse{
		ID:         client.ID,
		Name:       client.Name,
		Surname:    client.Surname,
		Email:      client.Email,
		Phone:      client.Phone,
		Position:   client.Position,
		Role:       client.Role,
		IsVerified: client.IsVerified,
		Company:    company.Name,
	}

	if client.PhotoKey != nil && s.storage != nil {
		presigned, err := s.storage.GenerateDownloadURL(ctx, s.bucket, *client.PhotoKey)
		if err != nil {
			s.log.Warn("failed to presign profile photo", "client_id", client.ID, "error", err)
		} else {
			resp.PhotoURL = presigned.URL
		}
	}

	return resp, nil
}

// UpdateProfile updates the caller's profile fields. Empty fields keep
// their current value. Phone numbers are normalized to E.164 where
// possible. Changing the email resets the verification flag until the new
// address is confirmed.
func (s *Service) UpdateProfile(ctx context.Context, clientID uuid.UUID, req transport.UpdateProfileRequest) (*transport.ProfileResponse, error) {
	client, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	name := client.Name
	if req.Name != "" {
		name = req.Name
	}
	surname := client.Surname
	if req.Surname != "" {
		surname = req.Surname
	}
	phoneNumber := client.Phone
	if req.Phone != "" {
		phoneNumber = phone.NormalizeE164(req.Phone)
	}
	position := client.Position
	if req.Position != "" {
		position = req.Position
	}

	if err := s.repo.UpdateProfile(ctx, clientID, name, surname, phoneNumber, position); err != nil {
		return nil, err
	}

	if req.Email != "" && req.Email != client.Email {
		taken, err := s.repo.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.Conflict("Client with this email already exists.")
		}
		if err := s.repo.UpdateEmail(ctx, clientID, req.Email); err != nil {
			return nil, err
		}
	}

	return s.GetProfile(ctx, clientID)
}

// UpdateRole lets a company admin change a colleague's role.
func (s *Service) UpdateRole(ctx context.Context, callerID, targetID uuid.UUID, role string) (*transport.ProfileResponse, error) {
	caller, err := s.repo.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if caller.Role == repository.RoleUser || caller.CompanyID != target.CompanyID {
		return nil, apperr.Forbidden("You don't have the rights to update data for this client.")
	}

	if err := s.repo.UpdateRole(ctx, targetID, role); err != nil {
		return nil, err
	}

	return s.GetProfile(ctx, targetID)
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, clientID uuid.UUID, req transport.ChangePasswordRequest) error {
	client, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperr.Unauthorized("Current password is incorrect.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, clientID, string(hash))
}

// UploadPhoto stores a profile photo in object storage and records its key.
func (s *Service) UploadPhoto(ctx context.Context, clientID uuid.UUID, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	if s.storage == nil {
		return "", apperr.Validation("Photo uploads are not available.")
	}

	if err := s.storage.ValidateContentType(contentType); err != nil {
		return "", apperr.Validation("Photo must be a JPEG, PNG or WebP image.")
	}
	if err := s.storage.ValidateFileSize(size); err != nil {
		return "", apperr.Validation("Photo must be smaller than 5 MB.")
	}

	client, err := s.repo.GetByID(ctx, clientID)
	if err != nil {
		return "", err
	}

	folder := clientID.String()
	key, err := s.storage.UploadFile(ctx, s.bucket, folder, fileName, contentType, reader, size)
	if err != nil {
		return "", apperr.Wrap(apperr.KindValidation, "Could not upload photo.", err)
	}

	if err := s.repo.SetPhotoKey(ctx, clientID, key); err != nil {
		return "", err
	}

	if client.PhotoKey != nil {
		if err := s.storage.DeleteObject(ctx, s.bucket, *client.PhotoKey); err != nil {
			s.log.Warn("failed to delete replaced profile photo", "client_id", clientID, "error", err)
		}
	}

	presigned, err := s.storage.GenerateDownloadURL(ctx, s.bucket, key)
	if err != nil {
		// Key is stored; the URL can be fetched again from the profile.
		s.log.Warn("failed to presign uploaded photo", "client_id", clientID, "error", err)
		return "", nil
	}
	return presigned.URL, nil
}
