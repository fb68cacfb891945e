package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrTokenNotFound = errors.New("token not found")

const (
	TokenTypeRefresh       = "REFRESH"
	TokenTypeEmailVerify   = "EMAIL_VERIFY"
	TokenTypePasswordReset = "PASSWORD_RESET"
)

// StoredToken is a persisted opaque token record, keyed by its hash.
type StoredToken struct {
	SubjectID uuid.UUID
	TokenType string
	IsClient  bool
	ExpiresAt time.Time
}

// Repository persists hashed refresh and verification tokens.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new auth repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Store saves a token hash for the subject.
func (r *Repository) Store(ctx context.Context, tokenHash string, subjectID uuid.UUID, tokenType string, isClient bool, expiresAt time.Time) error {
	query := `
		INSERT INTO auth_tokens (token_hash, subject_id, token_type, is_client, expires_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, tokenHash, subjectID, tokenType, isClient, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Get looks up a token record by hash and type.
func (r *Repository) Get(ctx context.Context, tokenHash, tokenType string) (*StoredToken, error) {
	var t StoredToken
	query := `SELECT subject_id, token_type, is_client, expires_at FROM auth_tokens WHERE token_hash = $1 AND token_type = $2`

	err := r.pool.QueryRow(ctx, query, tokenHash, tokenType).Scan(&t.SubjectID, &t.TokenType, &t.IsClient, &t.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &t, nil
}

// Delete removes a single token record.
func (r *Repository) Delete(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

// DeleteBySubject removes all tokens of a type for a subject, used when
// rotating credentials.
func (r *Repository) DeleteBySubject(ctx context.Context, subjectID uuid.UUID, tokenType string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE subject_id = $1 AND token_type = $2`, subjectID, tokenType)
	if err != nil {
		return fmt.Errorf("failed to delete subject tokens: %w", err)
	}
	return nil
}

// DeleteExpired prunes expired token records.
func (r *Repository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM auth_tokens WHERE expires_at < now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
