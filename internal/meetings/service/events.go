package service

import (
	"meetingease_backend/platform/events"

	"github.com/google/uuid"
)

// Event names published by the scheduling engine.
const (
	EventMeetingScheduled = "meetings.scheduled"
	EventMeetingCancelled = "meetings.cancelled"
)

// MeetingScheduledEvent is published after a meeting is persisted. The
// fields are a snapshot so subscribers never need a repository round trip.
type MeetingScheduledEvent struct {
	events.BaseEvent
	MeetingID   uuid.UUID `json:"meetingId"`
	ClientEmail string    `json:"clientEmail"`
	ClientName  string    `json:"clientName"`
	MeetingDate string    `json:"meetingDate"`
	Address     string    `json:"address"`
	DealType    string    `json:"dealType"`
}

// EventName returns the event type identifier.
func (MeetingScheduledEvent) EventName() string {
	return EventMeetingScheduled
}

// MeetingCancelledEvent is published after a meeting moves to CANCELLED.
type MeetingCancelledEvent struct {
	events.BaseEvent
	MeetingID   uuid.UUID `json:"meetingId"`
	ClientEmail string    `json:"clientEmail"`
	ClientName  string    `json:"clientName"`
	MeetingDate string    `json:"meetingDate"`
}

// EventName returns the event type identifier.
func (MeetingCancelledEvent) EventName() string {
	return EventMeetingCancelled
}
