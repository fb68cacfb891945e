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

// Meeting status values. IN_WAITING is the only non-terminal state.
const (
	StatusInWaiting = "IN_WAITING"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

// ErrSlotTaken is returned by CreateScheduled when the agent picked by the
// caller was booked concurrently for an overlapping window. The service
// retries the next candidate agent.
var ErrSlotTaken = errors.New("agent already booked for an overlapping window")

// Participant is a client attached to a meeting, in attachment order.
type Participant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Position  string    `json:"position"`
	CompanyID uuid.UUID `json:"companyId"`
}

// AgentInfo is the assigned agent enclosed in a meeting read.
type AgentInfo struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Surname string    `json:"surname"`
	Phone   string    `json:"phone"`
	City    string    `json:"city"`
}

// DealInfo is the deal enclosed in a meeting read.
type DealInfo struct {
	ID                uuid.UUID `json:"id"`
	Type              string    `json:"type"`
	RequiredDocuments []string  `json:"requiredDocuments"`
}

// Meeting is the central scheduling entity. Address fields are a snapshot
// taken at resolution time and are never used to re-resolve.
type Meeting struct {
	ID          uuid.UUID `json:"id"`
	Date        time.Time `json:"date"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Street      string    `json:"street"`
	HouseNumber string    `json:"houseNumber"`
	Status      string    `json:"status"`
	AgentID     uuid.UUID `json:"agentId"`
	DealID      uuid.UUID `json:"dealId"`

	Agent   *AgentInfo    `json:"agent,omitempty"`
	Deal    *DealInfo     `json:"deal,omitempty"`
	Clients []Participant `json:"clients,omitempty"`
}

// Repository provides durable storage for meetings.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new meetings repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateScheduled persists a new IN_WAITING meeting for the chosen agent.
// The insert runs in a transaction that serializes bookings per agent with
// an advisory lock and re-checks the overlap window; a concurrent booking
// of the same agent surfaces as ErrSlotTaken. The meeting row and its
// participant rows commit atomically.
func (r *Repository) CreateScheduled(ctx context.Context, m *Meeting, clientIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin booking transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text))`, m.AgentID); err != nil {
		return fmt.Errorf("failed to lock agent schedule: %w", err)
	}

	// Closed-interval overlap: the candidate conflicts with any pending
	// meeting starting within the hour before it, boundaries included.
	var conflict bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM meetings
			WHERE agent_id = $1
			  AND status = $2
			  AND date >= $3::timestamptz - interval '1 hour'
			  AND date <= $3::timestamptz
		)`, m.AgentID, StatusInWaiting, m.Date).Scan(&conflict)
	if err != nil {
		return fmt.Errorf("failed to re-check agent availability: %w", err)
	}
	if conflict {
		return ErrSlotTaken
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO meetings (id, date, address, city, street, house_number, status, agent_id, deal_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.Date, m.Address, m.City, m.Street, m.HouseNumber, m.Status, m.AgentID, m.DealID)
	if err != nil {
		return fmt.Errorf("failed to insert meeting: %w", err)
	}

	for i, clientID := range clientIDs {
		_, err = tx.Exec(ctx, `
			INSERT INTO meeting_clients (meeting_id, client_id, position)
			VALUES ($1, $2, $3)`, m.ID, clientID, i)
		if err != nil {
			return fmt.Errorf("failed to attach meeting client: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil
}

const meetingSelect = `
	SELECT m.id, m.date, m.address, m.city, m.street, m.house_number, m.status, m.agent_id, m.deal_id,
	       a.name, a.surname, a.phone_number, a.city,
	       d.type, d.required_documents
	FROM meetings m
	JOIN agents a ON a.id = m.agent_id
	JOIN deals d ON d.id = m.deal_id`

func scanMeeting(row pgx.Row) (*Meeting, error) {
	var m Meeting
	var agent AgentInfo
	var deal DealInfo
	err := row.Scan(&m.ID, &m.Date, &m.Address, &m.City, &m.Street, &m.HouseNumber, &m.Status, &m.AgentID, &m.DealID,
		&agent.Name, &agent.Surname, &agent.Phone, &agent.City,
		&deal.Type, &deal.RequiredDocuments)
	if err != nil {
		return nil, err
	}
	agent.ID = m.AgentID
	deal.ID = m.DealID
	m.Agent = &agent
	m.Deal = &deal
	return &m, nil
}

// GetByID retrieves a meeting with its agent, deal and participants.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Meeting, error) {
	m, err := scanMeeting(r.pool.QueryRow(ctx, meetingSelect+` WHERE m.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Meeting with this id not found.")
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}

	clients, err := r.participantsFor(ctx, []uuid.UUID{m.ID})
	if err != nil {
		return nil, err
	}
	m.Clients = clients[m.ID]
	return m, nil
}

// ListScheduledByClient returns the client's IN_WAITING meetings ordered by date.
func (r *Repository) ListScheduledByClient(ctx context.Context, clientID uuid.UUID) ([]Meeting, error) {
	query := meetingSelect + `
		JOIN meeting_clients mc ON mc.meeting_id = m.id
		WHERE mc.client_id = $1 AND m.status = $2
		ORDER BY m.date`

	rows, err := r.pool.Query(ctx, query, clientID, StatusInWaiting)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled meetings: %w", err)
	}
	defer rows.Close()

	var meetings []Meeting
	var ids []uuid.UUID
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		meetings = append(meetings, *m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		participants, err := r.participantsFor(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range meetings {
			meetings[i].Clients = participants[meetings[i].ID]
		}
	}

	return meetings, nil
}

// ListDatesByCityAndStatus returns the start instants of all meetings in a
// city with the given status, used by the weekly free-slot view.
func (r *Repository) ListDatesByCityAndStatus(ctx context.Context, city, status string) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `SELECT date FROM meetings WHERE city = $1 AND status = $2`, city, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list meeting dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan meeting date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// UpdateStatus sets the meeting status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE meetings SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update meeting status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Meeting with this id not found.")
	}
	return nil
}

// UpdateLocation replaces the address snapshot fields after re-resolution.
func (r *Repository) UpdateLocation(ctx context.Context, id uuid.UUID, address, street, houseNumber string) error {
	query := `UPDATE meetings SET address = $2, street = $3, house_number = $4, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, address, street, houseNumber)
	if err != nil {
		return fmt.Errorf("failed to update meeting location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Meeting with this id not found.")
	}
	return nil
}

// UpdateDeal points the meeting at a different deal.
func (r *Repository) UpdateDeal(ctx context.Context, id, dealID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE meetings SET deal_id = $2, updated_at = now() WHERE id = $1`, id, dealID)
	if err != nil {
		return fmt.Errorf("failed to update meeting deal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Meeting with this id not found.")
	}
	return nil
}

// CountScheduledByClient counts the client's IN_WAITING meetings for the
// creation quota.
func (r *Repository) CountScheduledByClient(ctx context.Context, clientID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM meetings m
		JOIN meeting_clients mc ON mc.meeting_id = m.id
		WHERE mc.client_id = $1 AND m.status = $2`

	if err := r.pool.QueryRow(ctx, query, clientID, StatusInWaiting).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count scheduled meetings: %w", err)
	}
	return count, nil
}

func (r *Repository) participantsFor(ctx context.Context, meetingIDs []uuid.UUID) (map[uuid.UUID][]Participant, error) {
	query := `
		SELECT mc.meeting_id, c.id, c.name, c.surname, c.email, c.phone_number, c.position, c.company_id
		FROM meeting_clients mc
		JOIN clients c ON c.id = mc.client_id
		WHERE mc.meeting_id = ANY($1)
		ORDER BY mc.meeting_id, mc.position`

	rows, err := r.pool.Query(ctx, query, meetingIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load meeting participants: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]Participant)
	for rows.Next() {
		var meetingID uuid.UUID
		var p Participant
		if err := rows.Scan(&meetingID, &p.ID, &p.Name, &p.Surname, &p.Email, &p.Phone, &p.Position, &p.CompanyID); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		result[meetingID] = append(result[meetingID], p)
	}
	return result, rows.Err()
}
