// Package service implements the meeting scheduling engine: admission
// guards, free-agent selection, lifecycle transitions and the weekly
// free-slot view.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	agentsrepo "meetingease_backend/internal/agents/repository"
	clientsrepo "meetingease_backend/internal/clients/repository"
	"meetingease_backend/internal/geocode"
	"meetingease_backend/internal/meetings/repository"
	"meetingease_backend/internal/meetings/transport"
	"meetingease_backend/internal/scheduler"
	"meetingease_backend/platform/apperr"
	"meetingease_backend/platform/events"
	"meetingease_backend/platform/logger"

	"github.com/google/uuid"
)

// scheduledMeetingsCap is the quota compared with strictly-greater-than,
// so a client can hold up to 11 pending meetings.
const scheduledMeetingsCap = 10

const meetingWindow = time.Hour

// Service is the scheduling engine.
type Service struct {
	store    MeetingStore
	resolver AddressResolver
	agents   AgentDirectory
	deals    DealCatalog
	clients  ClientDirectory

	reminders ReminderScheduler
	bus       events.Bus

	loc *time.Location
	log *logger.Logger
	now func() time.Time
}

// New creates the scheduling engine. The reminder scheduler and the event
// bus may be nil; reminders and lifecycle events are then skipped.
func New(store MeetingStore, resolver AddressResolver, agents AgentDirectory, deals DealCatalog, clients ClientDirectory, reminders ReminderScheduler, bus events.Bus, loc *time.Location, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		resolver:  resolver,
		agents:    agents,
		deals:     deals,
		clients:   clients,
		reminders: reminders,
		bus:       bus,
		loc:       loc,
		log:       log,
		now:       time.Now,
	}
}

// Create schedules a new meeting for the caller's company. The guard chain
// runs in order: verified client, admin role, quota, business hours, deal
// lookup, address resolution, free-agent selection, guarded persist.
func (s *Service) Create(ctx context.Context, caller Caller, req transport.CreateMeetingRequest) (*repository.Meeting, error) {
	client, err := s.verifiedClient(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := authorize(client, ActionCreate, nil); err != nil {
		return nil, err
	}

	count, err := s.store.CountScheduledByClient(ctx, client.ID)
	if err != nil {
		return nil, err
	}
	if count > scheduledMeetingsCap {
		return nil, apperr.Validation("You have exceeded the limit for creating meetings. Maximum number of meetings: 10")
	}

	if !withinBusinessHours(req.Date.In(s.loc)) {
		return nil, apperr.Validation("Agents are available only from 8:00 to 18:00")
	}

	deal, err := s.deals.FindByType(ctx, req.DealType)
	if err != nil {
		return nil, err
	}

	// External I/O, strictly before the booking critical section.
	address, err := s.resolver.Resolve(ctx, req.City, req.Street, req.HouseNumber)
	if err != nil {
		return nil, err
	}

	meeting, err := s.bookFreeAgent(ctx, req.Date, address, client.ID, deal.ID)
	if err != nil {
		return nil, err
	}

	created, err := s.store.GetByID(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}

	s.notifyScheduled(ctx, created, client)
	s.scheduleReminder(ctx, created)

	return created, nil
}

// Cancel moves a meeting to CANCELLED. Repeating the transition is a no-op;
// a completed meeting cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, caller Caller, meetingID uuid.UUID) (*repository.Meeting, error) {
	meeting, client, err := s.meetingForMutation(ctx, caller, meetingID)
	if err != nil {
		return nil, err
	}

	switch meeting.Status {
	case repository.StatusCancelled:
		return meeting, nil
	case repository.StatusCompleted:
		return nil, apperr.Conflict("A completed meeting cannot be cancelled.")
	}

	if err := s.store.UpdateStatus(ctx, meetingID, repository.StatusCancelled); err != nil {
		return nil, err
	}

	s.notifyCancelled(ctx, meeting, client)

	return s.store.GetByID(ctx, meetingID)
}

// Complete moves a meeting to COMPLETED. Repeating the transition is a
// no-op; a cancelled meeting cannot be completed.
func (s *Service) Complete(ctx context.Context, caller Caller, meetingID uuid.UUID) (*repository.Meeting, error) {
	meeting, _, err := s.meetingForMutation(ctx, caller, meetingID)
	if err != nil {
		return nil, err
	}

	switch meeting.Status {
	case repository.StatusCompleted:
		return meeting, nil
	case repository.StatusCancelled:
		return nil, apperr.Conflict("A cancelled meeting cannot be completed.")
	}

	if err := s.store.UpdateStatus(ctx, meetingID, repository.StatusCompleted); err != nil {
		return nil, err
	}

	return s.store.GetByID(ctx, meetingID)
}

// ChangeStreet re-resolves the address with a new street and updates the
// snapshot fields. Allowed only while the meeting is pending.
func (s *Service) ChangeStreet(ctx context.Context, caller Caller, meetingID uuid.UUID, street string) (*repository.Meeting, error) {
	return s.relocate(ctx, caller, meetingID, func(m *repository.Meeting) (string, string, string) {
		return m.City, street, m.HouseNumber
	})
}

// ChangeHouseNumber re-resolves the address with a new house number and
// updates the snapshot fields. Allowed only while the meeting is pending.
func (s *Service) ChangeHouseNumber(ctx context.Context, caller Caller, meetingID uuid.UUID, houseNumber string) (*repository.Meeting, error) {
	return s.relocate(ctx, caller, meetingID, func(m *repository.Meeting) (string, string, string) {
		return m.City, m.Street, houseNumber
	})
}

// ChangeDeal points a pending meeting at a different deal type.
func (s *Service) ChangeDeal(ctx context.Context, caller Caller, meetingID uuid.UUID, dealType string) (*repository.Meeting, error) {
	meeting, _, err := s.meetingForMutation(ctx, caller, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Status != repository.StatusInWaiting {
		return nil, apperr.Conflict("Only pending meetings can be changed.")
	}

	deal, err := s.deals.FindByType(ctx, dealType)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateDeal(ctx, meetingID, deal.ID); err != nil {
		return nil, err
	}

	return s.store.GetByID(ctx, meetingID)
}

// GetByID fetches a meeting with its agent, deal and participants.
func (s *Service) GetByID(ctx context.Context, meetingID uuid.UUID) (*repository.Meeting, error) {
	return s.store.GetByID(ctx, meetingID)
}

// ListScheduled returns the caller's pending meetings.
func (s *Service) ListScheduled(ctx context.Context, caller Caller) ([]repository.Meeting, error) {
	client, err := s.verifiedClient(ctx, caller)
	if err != nil {
		return nil, err
	}
	if err := authorize(client, ActionList, nil); err != nil {
		return nil, err
	}

	return s.store.ListScheduledByClient(ctx, client.ID)
}

// FreeDatesForWeek computes the rolling weekly availability view for a
// city. The view is city-wide and does not model per-slot agent capacity.
func (s *Service) FreeDatesForWeek(ctx context.Context, city string) (map[int][]string, error) {
	booked, err := s.store.ListDatesByCityAndStatus(ctx, city, repository.StatusInWaiting)
	if err != nil {
		return nil, err
	}

	return freeDatesForWeek(s.now(), booked, s.loc), nil
}

func (s *Service) verifiedClient(ctx context.Context, caller Caller) (*clientsrepo.Client, error) {
	if !caller.IsClient {
		return nil, apperr.Forbidden("This feature is not allowed for agents")
	}

	client, err := s.clients.FindByEmail(ctx, caller.Email)
	if err != nil {
		return nil, err
	}

	if err := requireVerified(client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *Service) meetingForMutation(ctx context.Context, caller Caller, meetingID uuid.UUID) (*repository.Meeting, *clientsrepo.Client, error) {
	client, err := s.verifiedClient(ctx, caller)
	if err != nil {
		return nil, nil, err
	}

	meeting, err := s.store.GetByID(ctx, meetingID)
	if err != nil {
		return nil, nil, err
	}

	if err := authorize(client, ActionMutate, meeting); err != nil {
		return nil, nil, err
	}
	return meeting, client, nil
}

func (s *Service) relocate(ctx context.Context, caller Caller, meetingID uuid.UUID, fields func(m *repository.Meeting) (city, street, houseNumber string)) (*repository.Meeting, error) {
	meeting, _, err := s.meetingForMutation(ctx, caller, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Status != repository.StatusInWaiting {
		return nil, apperr.Conflict("Only pending meetings can be changed.")
	}

	city, street, houseNumber := fields(meeting)
	address, err := s.resolver.Resolve(ctx, city, street, houseNumber)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateLocation(ctx, meetingID, address.DisplayName, address.Street, address.HouseNumber); err != nil {
		return nil, err
	}

	return s.store.GetByID(ctx, meetingID)
}

// bookFreeAgent walks the city's agents in directory order, skips the ones
// with a conflicting pending meeting and persists against the first free
// one. A concurrent booking surfaces as ErrSlotTaken and moves the loop to
// the next candidate. No free candidate left means the city is at capacity.
func (s *Service) bookFreeAgent(ctx context.Context, date time.Time, address *geocode.Address, clientID, dealID uuid.UUID) (*repository.Meeting, error) {
	schedules, err := s.agents.ListSchedulesByCity(ctx, address.City)
	if err != nil {
		return nil, err
	}

	for _, candidate := range schedules {
		if hasConflict(date, candidate) {
			continue
		}

		meeting := &repository.Meeting{
			ID:          uuid.New(),
			Date:        date,
			Address:     address.DisplayName,
			City:        address.City,
			Street:      address.Street,
			HouseNumber: address.HouseNumber,
			Status:      repository.StatusInWaiting,
			AgentID:     candidate.Agent.ID,
			DealID:      dealID,
		}

		err := s.store.CreateScheduled(ctx, meeting, []uuid.UUID{clientID})
		if errors.Is(err, repository.ErrSlotTaken) {
			s.log.Info("agent booked concurrently, trying next candidate",
				"agent_id", candidate.Agent.ID, "date", date)
			continue
		}
		if err != nil {
			return nil, err
		}
		return meeting, nil
	}

	return nil, apperr.Capacity("Unfortunately, there are no agents available at the moment.")
}

// hasConflict checks the candidate start against the agent's pending
// meetings using the closed interval [start, start+1h]: a meeting starting
// exactly one hour before the candidate still conflicts.
func hasConflict(date time.Time, schedule agentsrepo.Schedule) bool {
	for _, booked := range schedule.Booked {
		if !date.Before(booked.Date) && !date.After(booked.Date.Add(meetingWindow)) {
			return true
		}
	}
	return false
}

func withinBusinessHours(local time.Time) bool {
	seconds := local.Hour()*3600 + local.Minute()*60 + local.Second()
	return seconds >= 8*3600 && seconds <= 18*3600
}

func (s *Service) notifyScheduled(ctx context.Context, meeting *repository.Meeting, client *clientsrepo.Client) {
	if s.bus == nil || meeting.Deal == nil {
		return
	}

	s.bus.Publish(ctx, MeetingScheduledEvent{
		BaseEvent:   events.NewBaseEvent(),
		MeetingID:   meeting.ID,
		ClientEmail: client.Email,
		ClientName:  strings.TrimSpace(fmt.Sprintf("%s %s", client.Name, client.Surname)),
		MeetingDate: meeting.Date.In(s.loc).Format("02.01.2006 15:04"),
		Address:     meeting.Address,
		DealType:    meeting.Deal.Type,
	})
}

func (s *Service) notifyCancelled(ctx context.Context, meeting *repository.Meeting, client *clientsrepo.Client) {
	if s.bus == nil {
		return
	}

	s.bus.Publish(ctx, MeetingCancelledEvent{
		BaseEvent:   events.NewBaseEvent(),
		MeetingID:   meeting.ID,
		ClientEmail: client.Email,
		ClientName:  strings.TrimSpace(fmt.Sprintf("%s %s", client.Name, client.Surname)),
		MeetingDate: meeting.Date.In(s.loc).Format("02.01.2006 15:04"),
	})
}

func (s *Service) scheduleReminder(ctx context.Context, meeting *repository.Meeting) {
	if s.reminders == nil {
		return
	}

	runAt := meeting.Date.Add(-24 * time.Hour)
	if runAt.Before(s.now()) {
		return
	}

	payload := scheduler.MeetingReminderPayload{MeetingID: meeting.ID.String()}
	if err := s.reminders.ScheduleMeetingReminder(ctx, payload, runAt); err != nil {
		s.log.Warn("failed to schedule meeting reminder", "meeting_id", meeting.ID, "error", err)
	}
}
