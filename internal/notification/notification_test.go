package notification

import (
	"context"
	"testing"

	meetingsvc "meetingease_backend/internal/meetings/service"
	"meetingease_backend/platform/events"
	"meetingease_backend/platform/logger"

	"github.com/google/uuid"
)

type recordingSender struct {
	scheduledTo []string
	cancelledTo []string
}

func (s *recordingSender) SendVerificationEmail(context.Context, string, string) error {
	return nil
}

func (s *recordingSender) SendPasswordResetEmail(context.Context, string, string) error {
	return nil
}

func (s *recordingSender) SendMeetingScheduledEmail(_ context.Context, to, _, _, _, _ string) error {
	s.scheduledTo = append(s.scheduledTo, to)
	return nil
}

func (s *recordingSender) SendMeetingReminderEmail(context.Context, string, string, string, string) error {
	return nil
}

func (s *recordingSender) SendMeetingCancelledEmail(_ context.Context, to, _, _ string) error {
	s.cancelledTo = append(s.cancelledTo, to)
	return nil
}

func TestMeetingLifecycleEventsSendEmails(t *testing.T) {
	sender := &recordingSender{}
	bus := events.NewInMemoryBus(logger.New("test"))
	New(sender, logger.New("test")).RegisterHandlers(bus)

	scheduled := meetingsvc.MeetingScheduledEvent{
		BaseEvent:   events.NewBaseEvent(),
		MeetingID:   uuid.New(),
		ClientEmail: "anna@acme.test",
		ClientName:  "Anna Ivanova",
		MeetingDate: "12.03.2026 10:30",
		Address:     "Kazan, Baumana 10",
		DealType:    "CONSULTATION",
	}
	if err := bus.PublishSync(context.Background(), scheduled); err != nil {
		t.Fatalf("publish scheduled: %v", err)
	}

	cancelled := meetingsvc.MeetingCancelledEvent{
		BaseEvent:   events.NewBaseEvent(),
		MeetingID:   scheduled.MeetingID,
		ClientEmail: "anna@acme.test",
		ClientName:  "Anna Ivanova",
		MeetingDate: "12.03.2026 10:30",
	}
	if err := bus.PublishSync(context.Background(), cancelled); err != nil {
		t.Fatalf("publish cancelled: %v", err)
	}

	if len(sender.scheduledTo) != 1 || sender.scheduledTo[0] != "anna@acme.test" {
		t.Fatalf("scheduled emails = %v", sender.scheduledTo)
	}
	if len(sender.cancelledTo) != 1 || sender.cancelledTo[0] != "anna@acme.test" {
		t.Fatalf("cancelled emails = %v", sender.cancelledTo)
	}
}
