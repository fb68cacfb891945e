package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"meetingease_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Agent is a field employee who attends meetings in a single city.
type Agent struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Surname      string    `db:"surname" json:"surname"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone_number" json:"phone"`
	City         string    `db:"city" json:"city"`
	PasswordHash string    `db:"password_hash" json:"-"`
}

// BookedSlot is a scheduled meeting commitment attached to an agent.
type BookedSlot struct {
	MeetingID uuid.UUID `json:"meetingId"`
	Date      time.Time `json:"date"`
}

// Schedule is an agent together with their pending meeting commitments,
// loaded in one round trip for availability scans.
type Schedule struct {
	Agent  Agent        `json:"agent"`
	Booked []BookedSlot `json:"booked"`
}

// Repository provides access to agents and their schedules.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new agents repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID retrieves an agent by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Agent, error) {
	var a Agent
	query := `SELECT id, name, surname, email, phone_number, city, password_hash FROM agents WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Surname, &a.Email, &a.Phone, &a.City, &a.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Agent not found.")
		}
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}

	return &a, nil
}

// FindByEmail retrieves an agent by email for authentication.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Agent, error) {
	var a Agent
	query := `SELECT id, name, surname, email, phone_number, city, password_hash FROM agents WHERE email = $1`

	err := r.pool.QueryRow(ctx, query, email).Scan(&a.ID, &a.Name, &a.Surname, &a.Email, &a.Phone, &a.City, &a.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Agent with this email not found.")
		}
		return nil, fmt.Errorf("failed to get agent by email: %w", err)
	}

	return &a, nil
}

// ListByCity returns every agent working in the given city.
func (r *Repository) ListByCity(ctx context.Context, city string) ([]Agent, error) {
	query := `SELECT id, name, surname, email, phone_number, city, password_hash FROM agents WHERE city = $1 ORDER BY surname, name`

	rows, err := r.pool.Query(ctx, query, city)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents by city: %w", err)
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		var a Agent
		if err := rows.Scan(&a.ID, &a.Name, &a.Surname, &a.Email, &a.Phone, &a.City, &a.PasswordHash); err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, a)
	}

	return agents, rows.Err()
}

// ListSchedulesByCity loads every agent in the city together with their
// pending meetings. Agents with no pending meetings are included with an
// empty slot list so availability scans can pick them immediately.
func (r *Repository) ListSchedulesByCity(ctx context.Context, city string) ([]Schedule, error) {
	query := `
		SELECT a.id, a.name, a.surname, a.email, a.phone_number, a.city, a.password_hash,
		       m.id, m.date
		FROM agents a
		LEFT JOIN meetings m ON m.agent_id = a.id AND m.status = 'IN_WAITING'
		WHERE a.city = $1
		ORDER BY a.surname, a.name, m.date`

	rows, err := r.pool.Query(ctx, query, city)
	if err != nil {
		return nil, fmt.Errorf("failed to list agent schedules: %w", err)
	}
	defer rows.Close()

	var schedules []Schedule
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var a Agent
		var meetingID *uuid.UUID
		var meetingDate *time.Time
		if err := rows.Scan(&a.ID, &a.Name, &a.Surname, &a.Email, &a.Phone, &a.City, &a.PasswordHash, &meetingID, &meetingDate); err != nil {
			return nil, fmt.Errorf("failed to scan agent schedule: %w", err)
		}

		i, ok := index[a.ID]
		if !ok {
			schedules = append(schedules, Schedule{Agent: a})
			i = len(schedules) - 1
			index[a.ID] = i
		}
		if meetingID != nil && meetingDate != nil {
			schedules[i].Booked = append(schedules[i].Booked, BookedSlot{MeetingID: *meetingID, Date: *meetingDate})
		}
	}

	return schedules, rows.Err()
}
