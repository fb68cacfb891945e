package service

import (
	"context"
	"time"

	agentsrepo "meetingease_backend/internal/agents/repository"
	"meetingease_backend/internal/auth/repository"
	clientsrepo "meetingease_backend/internal/clients/repository"

	"github.com/google/uuid"
)

// TokenStore persists hashed one-time tokens (refresh, email verification,
// password reset).
type TokenStore interface {
	Store(ctx context.Context, tokenHash string, subjectID uuid.UUID, tokenType string, isClient bool, expiresAt time.Time) error
	Get(ctx context.Context, tokenHash, tokenType string) (*repository.StoredToken, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteBySubject(ctx context.Context, subjectID uuid.UUID, tokenType string) error
}

// ClientAccounts is the client registry surface used during registration,
// login and credential recovery.
type ClientAccounts interface {
	Create(ctx context.Context, c *clientsrepo.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*clientsrepo.Client, error)
	FindByEmail(ctx context.Context, email string) (*clientsrepo.Client, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	FindCompanyByName(ctx context.Context, name string) (*clientsrepo.Company, error)
	FindOrCreateCompany(ctx context.Context, name string) (*clientsrepo.Company, error)
}

// AgentAccounts resolves agent principals at login.
type AgentAccounts interface {
	GetByID(ctx context.Context, id uuid.UUID) (*agentsrepo.Agent, error)
	FindByEmail(ctx context.Context, email string) (*agentsrepo.Agent, error)
}
