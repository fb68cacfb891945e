package service

import (
	"errors"
	"testing"

	clientsrepo "meetingease_backend/internal/clients/repository"
	"meetingease_backend/internal/meetings/repository"
	"meetingease_backend/platform/apperr"

	"github.com/google/uuid"
)

func assertForbidden(t *testing.T, err error, message string) {
	t.Helper()
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("got %v, want *apperr.Error", err)
	}
	if appErr.Kind != apperr.KindForbidden {
		t.Fatalf("kind = %v, want KindForbidden", appErr.Kind)
	}
	if appErr.Message != message {
		t.Fatalf("message = %q, want %q", appErr.Message, message)
	}
}

func TestRequireVerified(t *testing.T) {
	if err := requireVerified(&clientsrepo.Client{IsVerified: true}); err != nil {
		t.Fatalf("verified client rejected: %v", err)
	}

	err := requireVerified(&clientsrepo.Client{IsVerified: false})
	assertForbidden(t, err, "This feature is not allowed for unverified users. Please confirm your email.")
}

func TestAuthorizeCreate(t *testing.T) {
	admin := &clientsrepo.Client{Role: clientsrepo.RoleAdmin}
	user := &clientsrepo.Client{Role: clientsrepo.RoleUser}

	if err := authorize(admin, ActionCreate, nil); err != nil {
		t.Fatalf("admin rejected: %v", err)
	}

	err := authorize(user, ActionCreate, nil)
	assertForbidden(t, err, "You don't have the rights to create a meeting.")
}

func TestAuthorizeMutate(t *testing.T) {
	companyID := uuid.New()
	otherCompanyID := uuid.New()
	meeting := &repository.Meeting{
		Clients: []repository.Participant{{CompanyID: companyID}},
	}

	admin := &clientsrepo.Client{Role: clientsrepo.RoleAdmin, CompanyID: companyID}
	if err := authorize(admin, ActionMutate, meeting); err != nil {
		t.Fatalf("same-company admin rejected: %v", err)
	}

	foreignAdmin := &clientsrepo.Client{Role: clientsrepo.RoleAdmin, CompanyID: otherCompanyID}
	err := authorize(foreignAdmin, ActionMutate, meeting)
	assertForbidden(t, err, "You don't have the rights to change this meeting.")

	user := &clientsrepo.Client{Role: clientsrepo.RoleUser, CompanyID: companyID}
	err = authorize(user, ActionMutate, meeting)
	assertForbidden(t, err, "You don't have the rights to change this meeting.")
}

func TestAuthorizeMutateMeetingWithoutParticipants(t *testing.T) {
	admin := &clientsrepo.Client{Role: clientsrepo.RoleAdmin, CompanyID: uuid.New()}

	err := authorize(admin, ActionMutate, &repository.Meeting{})
	assertForbidden(t, err, "You don't have the rights to change this meeting.")
}

func TestAuthorizeListAllowsAnyRole(t *testing.T) {
	user := &clientsrepo.Client{Role: clientsrepo.RoleUser}
	if err := authorize(user, ActionList, nil); err != nil {
		t.Fatalf("user rejected for list: %v", err)
	}
}
