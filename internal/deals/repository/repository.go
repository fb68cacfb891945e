package repository

import (
	"context"
	"errors"
	"fmt"

	"meetingease_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deal is a catalog entry looked up by its type label. The required
// documents list is stored as jsonb and is immutable from the scheduling
// engine's perspective.
type Deal struct {
	ID                uuid.UUID `db:"id" json:"id"`
	Type              string    `db:"type" json:"type"`
	RequiredDocuments []string  `db:"required_documents" json:"requiredDocuments"`
}

// Repository provides read access to the deal catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new deals repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByType retrieves a deal by its type label.
func (r *Repository) FindByType(ctx context.Context, dealType string) (*Deal, error) {
	var deal Deal
	query := `SELECT id, type, required_documents FROM deals WHERE type = $1`

	err := r.pool.QueryRow(ctx, query, dealType).Scan(&deal.ID, &deal.Type, &deal.RequiredDocuments)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Deal with this type not found.")
		}
		return nil, fmt.Errorf("failed to get deal by type: %w", err)
	}

	return &deal, nil
}

// GetByID retrieves a deal by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Deal, error) {
	var deal Deal
	query := `SELECT id, type, required_documents FROM deals WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(&deal.ID, &deal.Type, &deal.RequiredDocuments)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Deal with this id not found.")
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}

	return &deal, nil
}

// List returns the full catalog ordered by type.
func (r *Repository) List(ctx context.Context) ([]Deal, error) {
	query := `SELECT id, type, required_documents FROM deals ORDER BY type`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	defer rows.Close()

	var deals []Deal
	for rows.Next() {
		var deal Deal
		if err := rows.Scan(&deal.ID, &deal.Type, &deal.RequiredDocuments); err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}
		deals = append(deals, deal)
	}

	return deals, rows.Err()
}
