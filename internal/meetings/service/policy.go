package service

import (
	clientsrepo "meetingease_backend/internal/clients/repository"
	"meetingease_backend/internal/meetings/repository"
	"meetingease_backend/platform/apperr"
)

// Caller is the authenticated principal acting on the engine.
type Caller struct {
	Email    string
	IsClient bool
}

// Action is a guarded scheduling operation.
type Action int

const (
	// ActionCreate schedules a new meeting.
	ActionCreate Action = iota
	// ActionMutate cancels, completes or edits an existing meeting.
	ActionMutate
	// ActionList reads the caller's own scheduled meetings.
	ActionList
)

// requireVerified rejects clients whose email confirmation is pending.
func requireVerified(client *clientsrepo.Client) error {
	if !client.IsVerified {
		return apperr.Forbidden("This feature is not allowed for unverified users. Please confirm your email.")
	}
	return nil
}

// authorize applies the role and company checks for an action. The meeting
// argument is only consulted for ActionMutate, where the caller must be a
// company admin of the same company as the meeting's first client.
func authorize(client *clientsrepo.Client, action Action, meeting *repository.Meeting) error {
	switch action {
	case ActionCreate:
		if client.Role == clientsrepo.RoleUser {
			return apperr.Forbidden("You don't have the rights to create a meeting.")
		}
	case ActionMutate:
		if client.Role == clientsrepo.RoleUser || !sameCompany(client, meeting) {
			return apperr.Forbidden("You don't have the rights to change this meeting.")
		}
	case ActionList:
		// Any verified client may list their own meetings.
	}
	return nil
}

func sameCompany(client *clientsrepo.Client, meeting *repository.Meeting) bool {
	if meeting == nil || len(meeting.Clients) == 0 {
		return false
	}
	return meeting.Clients[0].CompanyID == client.CompanyID
}
