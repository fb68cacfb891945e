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

// Role values for clients. ADMIN clients may manage meetings for their company.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Client is an employee of a company who participates in meetings.
type Client struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Surname      string    `db:"surname" json:"surname"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone"`
	Position     string    `db:"position" json:"position"`
	Role         string    `db:"role" json:"role"`
	PasswordHash string    `db:"password_hash" json:"-"`
	PhotoKey     *string   `db:"photo_key" json:"-"`
	IsVerified   bool      `db:"is_verified" json:"isVerified"`
	CompanyID    uuid.UUID `db:"company_id" json:"companyId"`
}

// Company groups clients that schedule meetings together.
type Company struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
}

const clientColumns = `id, name, surname, email, phone_number, position, role, password_hash, photo, is_verified, company_id`

// Repository provides access to clients and companies.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new clients repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.Surname, &c.Email, &c.Phone, &c.Position,
		&c.Role, &c.PasswordHash, &c.PhotoKey, &c.IsVerified, &c.CompanyID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new client.
func (r *Repository) Create(ctx context.Context, c *Client) error {
	query := `
		INSERT INTO clients (id, name, surname, email, phone_number, position, role, password_hash, is_verified, company_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		c.ID, c.Name, c.Surname, c.Email, c.Phone, c.Position, c.Role, c.PasswordHash, c.IsVerified, c.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// GetByID retrieves a client by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	c, err := scanClient(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Client with this id not found.")
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// FindByEmail retrieves a client by email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE email = $1`

	c, err := scanClient(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Client with this email not found.")
		}
		return nil, fmt.Errorf("failed to get client by email: %w", err)
	}
	return c, nil
}

// ExistsByEmail reports whether a client with this email is already registered.
func (r *Repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM clients WHERE email = $1)`

	if err := r.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check client email: %w", err)
	}
	return exists, nil
}

// MarkVerified flips the verification flag after email confirmation.
func (r *Repository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE clients SET is_verified = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark client verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Client not found.")
	}
	return nil
}

// UpdateProfile updates the mutable profile fields.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, name, surname, phone, position string) error {
	query := `UPDATE clients SET name = $2, surname = $3, phone_number = $4, position = $5, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, name, surname, phone, position)
	if err != nil {
		return fmt.Errorf("failed to update client profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Client not found.")
	}
	return nil
}

// UpdateEmail changes the login email. The new address starts unverified
// and must be confirmed again.
func (r *Repository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	query := `UPDATE clients SET email = $2, is_verified = FALSE, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, email)
	if err != nil {
		return fmt.Errorf("failed to update client email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Client not found.")
	}
	return nil
}

// UpdateRole changes a client's company role.
func (r *Repository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE clients SET role = $2, updated_at = now() WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("failed to update client role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Client not found.")
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE clients SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update client password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Client not found.")
	}
	return nil
}

// SetPhotoKey stores the object storage key of the profile photo.
func (r *Repository) SetPhotoKey(ctx context.Context, id uuid.UUID, key string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE clients SET photo = $2, updated_at = now() WHERE id = $1`, id, key)
	if err != nil {
		return fmt.Errorf("failed to set client photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Client not found.")
	}
	return nil
}

// GetCompanyByID retrieves a company.
func (r *Repository) GetCompanyByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	var company Company
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM companies WHERE id = $1`, id).Scan(&company.ID, &company.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Company not found.")
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &company, nil
}

// FindCompanyByName retrieves a company by its exact name.
func (r *Repository) FindCompanyByName(ctx context.Context, name string) (*Company, error) {
	var company Company
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM companies WHERE name = $1`, name).Scan(&company.ID, &company.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Company not found.")
		}
		return nil, fmt.Errorf("failed to get company by name: %w", err)
	}
	return &company, nil
}

// FindOrCreateCompany returns the company with the given name, creating it
// on first registration.
func (r *Repository) FindOrCreateCompany(ctx context.Context, name string) (*Company, error) {
	var company Company
	query := `
		INSERT INTO companies (id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name`

	err := r.pool.QueryRow(ctx, query, uuid.New(), name).Scan(&company.ID, &company.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to find or create company: %w", err)
	}
	return &company, nil
}
