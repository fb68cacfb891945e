// Package notification delivers email side effects for domain events so
// the publishing modules never block on SMTP.
package notification

import (
	"context"
	"fmt"

	"meetingease_backend/internal/email"
	meetingsvc "meetingease_backend/internal/meetings/service"
	"meetingease_backend/platform/events"
	"meetingease_backend/platform/logger"
)

// Module subscribes to domain events and sends the matching emails. It is
// not HTTP-facing.
type Module struct {
	sender email.Sender
	log    *logger.Logger
}

// New creates the notification module.
func New(sender email.Sender, log *logger.Logger) *Module {
	return &Module{sender: sender, log: log}
}

// RegisterHandlers subscribes the module to the events it handles.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(meetingsvc.EventMeetingScheduled, events.HandlerFunc(m.handleMeetingScheduled))
	bus.Subscribe(meetingsvc.EventMeetingCancelled, events.HandlerFunc(m.handleMeetingCancelled))
}

func (m *Module) handleMeetingScheduled(ctx context.Context, event events.Event) error {
	e, ok := event.(meetingsvc.MeetingScheduledEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventName())
	}

	if err := m.sender.SendMeetingScheduledEmail(ctx, e.ClientEmail, e.ClientName, e.MeetingDate, e.Address, e.DealType); err != nil {
		return fmt.Errorf("meeting confirmation email for %s: %w", e.MeetingID, err)
	}

	m.log.Info("meeting confirmation email sent", "meeting_id", e.MeetingID, "email", e.ClientEmail)
	return nil
}

func (m *Module) handleMeetingCancelled(ctx context.Context, event events.Event) error {
	e, ok := event.(meetingsvc.MeetingCancelledEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventName())
	}

	if err := m.sender.SendMeetingCancelledEmail(ctx, e.ClientEmail, e.ClientName, e.MeetingDate); err != nil {
		return fmt.Errorf("meeting cancellation email for %s: %w", e.MeetingID, err)
	}

	m.log.Info("meeting cancellation email sent", "meeting_id", e.MeetingID, "email", e.ClientEmail)
	return nil
}
