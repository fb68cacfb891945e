package service

import (
	"context"
	"time"

	agentsrepo "meetingease_backend/internal/agents/repository"
	clientsrepo "meetingease_backend/internal/clients/repository"
	dealsrepo "meetingease_backend/internal/deals/repository"
	"meetingease_backend/internal/geocode"
	"meetingease_backend/internal/meetings/repository"
	"meetingease_backend/internal/scheduler"

	"github.com/google/uuid"
)

// AddressResolver normalizes a raw location into a canonical address. It is
// a live external lookup and is never called while a booking lock is held.
type AddressResolver interface {
	Resolve(ctx context.Context, city, street, houseNumber string) (*geocode.Address, error)
}

// AgentDirectory lists a city's agents with their pending commitments, in
// directory order.
type AgentDirectory interface {
	ListSchedulesByCity(ctx context.Context, city string) ([]agentsrepo.Schedule, error)
}

// DealCatalog looks up deals by their type label.
type DealCatalog interface {
	FindByType(ctx context.Context, dealType string) (*dealsrepo.Deal, error)
}

// ClientDirectory resolves the calling client principal.
type ClientDirectory interface {
	FindByEmail(ctx context.Context, email string) (*clientsrepo.Client, error)
}

// MeetingStore is the durable storage consumed by the scheduling engine.
type MeetingStore interface {
	CreateScheduled(ctx context.Context, m *repository.Meeting, clientIDs []uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Meeting, error)
	ListScheduledByClient(ctx context.Context, clientID uuid.UUID) ([]repository.Meeting, error)
	ListDatesByCityAndStatus(ctx context.Context, city, status string) ([]time.Time, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateLocation(ctx context.Context, id uuid.UUID, address, street, houseNumber string) error
	UpdateDeal(ctx context.Context, id, dealID uuid.UUID) error
	CountScheduledByClient(ctx context.Context, clientID uuid.UUID) (int, error)
}

// ReminderScheduler enqueues the pre-meeting reminder. Optional.
type ReminderScheduler = scheduler.ReminderScheduler
