package service

import (
	"context"
	"errors"
	"testing"

	"meetingease_backend/internal/clients/repository"
	"meetingease_backend/internal/clients/transport"
	"meetingease_backend/platform/apperr"
	"meetingease_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeProfileStore struct {
	byID      map[uuid.UUID]*repository.Client
	companies map[uuid.UUID]*repository.Company
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		byID:      make(map[uuid.UUID]*repository.Client),
		companies: make(map[uuid.UUID]*repository.Company),
	}
}

func (f *fakeProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*repository.Client, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("Client with this id not found.")
	}
	copied := *c
	return &copied, nil
}

func (f *fakeProfileStore) GetCompanyByID(ctx context.Context, id uuid.UUID) (*repository.Company, error) {
	company, ok := f.companies[id]
	if !ok {
		return nil, apperr.NotFound("Company not found.")
	}
	return company, nil
}

func (f *fakeProfileStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, c := range f.byID {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProfileStore) UpdateProfile(ctx context.Context, id uuid.UUID, name, surname, phone, position string) error {
	c, ok := f.byID[id]
	if !ok {
		return apperr.NotFound("Client not found.")
	}
	c.Name, c.Surname, c.Phone, c.Position = name, surname, phone, position
	return nil
}

func (f *fakeProfileStore) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	c, ok := f.byID[id]
	if !ok {
		return apperr.NotFound("Client not found.")
	}
	c.Email = email
	c.IsVerified = false
	return nil
}

func (f *fakeProfileStore) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	c, ok := f.byID[id]
	if !ok {
		return apperr.NotFound("Client not found.")
	}
	c.Role = role
	return nil
}

func (f *fakeProfileStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	c, ok := f.byID[id]
	if !ok {
		return apperr.NotFound("Client not found.")
	}
	c.PasswordHash = passwordHash
	return nil
}

func (f *fakeProfileStore) SetPhotoKey(ctx context.Context, id uuid.UUID, key string) error {
	c, ok := f.byID[id]
	if !ok {
		return apperr.NotFound("Client not found.")
	}
	c.PhotoKey = &key
	return nil
}

type profileTestEnv struct {
	svc    *Service
	store  *fakeProfileStore
	admin  *repository.Client
	member *repository.Client
}

func newProfileTestEnv(t *testing.T) *profileTestEnv {
	t.Helper()

	store := newFakeProfileStore()
	company := &repository.Company{ID: uuid.New(), Name: "Acme"}
	store.companies[company.ID] = company

	admin := &repository.Client{
		ID:         uuid.New(),
		Name:       "Anna",
		Surname:    "Petrova",
		Email:      "anna@acme.test",
		Phone:      "+79171234567",
		Position:   "Director",
		Role:       repository.RoleAdmin,
		IsVerified: true,
		CompanyID:  company.ID,
	}
	member := &repository.Client{
		ID:         uuid.New(),
		Name:       "Boris",
		Surname:    "Ivanov",
		Email:      "boris@acme.test",
		Role:       repository.RoleUser,
		IsVerified: true,
		CompanyID:  company.ID,
	}
	store.byID[admin.ID] = admin
	store.byID[member.ID] = member

	return &profileTestEnv{
		svc:    New(store, nil, "", logger.New("test")),
		store:  store,
		admin:  admin,
		member: member,
	}
}

func (env *profileTestEnv) addForeignAdmin(t *testing.T) *repository.Client {
	t.Helper()
	company := &repository.Company{ID: uuid.New(), Name: "Globex"}
	env.store.companies[company.ID] = company
	foreign := &repository.Client{
		ID:         uuid.New(),
		Name:       "Clara",
		Surname:    "Schmidt",
		Email:      "clara@globex.test",
		Role:       repository.RoleAdmin,
		IsVerified: true,
		CompanyID:  company.ID,
	}
	env.store.byID[foreign.ID] = foreign
	return foreign
}

func assertForbiddenMessage(t *testing.T, err error, message string) {
	t.Helper()
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Kind != apperr.KindForbidden {
		t.Fatalf("expected forbidden, got kind %v", appErr.Kind)
	}
	if appErr.Message != message {
		t.Fatalf("expected message %q, got %q", message, appErr.Message)
	}
}

func TestUpdateProfileKeepsFieldsWhenEmpty(t *testing.T) {
	env := newProfileTestEnv(t)

	resp, err := env.svc.UpdateProfile(context.Background(), env.admin.ID, transport.UpdateProfileRequest{
		Position: "Managing Director",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	if resp.Position != "Managing Director" {
		t.Fatalf("expected position updated, got %q", resp.Position)
	}
	if resp.Name != "Anna" || resp.Surname != "Petrova" || resp.Phone != "+79171234567" {
		t.Fatalf("expected untouched fields to survive, got %q %q %q", resp.Name, resp.Surname, resp.Phone)
	}
	if resp.Email != "anna@acme.test" || !resp.IsVerified {
		t.Fatal("expected email and verification untouched")
	}
}

func TestUpdateProfileEmailChangeResetsVerification(t *testing.T) {
	env := newProfileTestEnv(t)

	resp, err := env.svc.UpdateProfile(context.Background(), env.admin.ID, transport.UpdateProfileRequest{
		Email: "anna.petrova@acme.test",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	if resp.Email != "anna.petrova@acme.test" {
		t.Fatalf("expected email updated, got %q", resp.Email)
	}
	if resp.IsVerified {
		t.Fatal("expected the changed email to start unverified")
	}
}

func TestUpdateProfileSameEmailKeepsVerification(t *testing.T) {
	env := newProfileTestEnv(t)

	resp, err := env.svc.UpdateProfile(context.Background(), env.admin.ID, transport.UpdateProfileRequest{
		Email: env.admin.Email,
		Name:  "Annette",
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	if !resp.IsVerified {
		t.Fatal("expected verification to survive an unchanged email")
	}
	if resp.Name != "Annette" {
		t.Fatalf("expected name updated, got %q", resp.Name)
	}
}

func TestUpdateProfileRejectsTakenEmail(t *testing.T) {
	env := newProfileTestEnv(t)

	_, err := env.svc.UpdateProfile(context.Background(), env.admin.ID, transport.UpdateProfileRequest{
		Email: env.member.Email,
	})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict for a taken email, got %v", err)
	}
}

func TestUpdateRoleByCompanyAdmin(t *testing.T) {
	env := newProfileTestEnv(t)

	resp, err := env.svc.UpdateRole(context.Background(), env.admin.ID, env.member.ID, repository.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}

	if resp.Role != repository.RoleAdmin {
		t.Fatalf("expected role ADMIN, got %q", resp.Role)
	}
	if env.store.byID[env.member.ID].Role != repository.RoleAdmin {
		t.Fatal("expected the role change to be persisted")
	}
}

func TestUpdateRoleRejectsUserCaller(t *testing.T) {
	env := newProfileTestEnv(t)

	_, err := env.svc.UpdateRole(context.Background(), env.member.ID, env.admin.ID, repository.RoleUser)
	assertForbiddenMessage(t, err, "You don't have the rights to update data for this client.")
}

func TestUpdateRoleRejectsForeignCompanyAdmin(t *testing.T) {
	env := newProfileTestEnv(t)
	foreign := env.addForeignAdmin(t)

	_, err := env.svc.UpdateRole(context.Background(), foreign.ID, env.member.ID, repository.RoleAdmin)
	assertForbiddenMessage(t, err, "You don't have the rights to update data for this client.")
}

func TestUpdateRoleUnknownTarget(t *testing.T) {
	env := newProfileTestEnv(t)

	_, err := env.svc.UpdateRole(context.Background(), env.admin.ID, uuid.New(), repository.RoleAdmin)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for an unknown target, got %v", err)
	}
}
