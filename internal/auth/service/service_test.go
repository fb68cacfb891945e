package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	agentsrepo "meetingease_backend/internal/agents/repository"
	"meetingease_backend/internal/auth/repository"
	clientsrepo "meetingease_backend/internal/clients/repository"
	"meetingease_backend/internal/email"
	"meetingease_backend/platform/apperr"
	"meetingease_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type fakeTokens struct {
	records map[string]*repository.StoredToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{records: make(map[string]*repository.StoredToken)}
}

func (f *fakeTokens) Store(ctx context.Context, tokenHash string, subjectID uuid.UUID, tokenType string, isClient bool, expiresAt time.Time) error {
	f.records[tokenHash] = &repository.StoredToken{
		SubjectID: subjectID,
		TokenType: tokenType,
		IsClient:  isClient,
		ExpiresAt: expiresAt,
	}
	return nil
}

func (f *fakeTokens) Get(ctx context.Context, tokenHash, tokenType string) (*repository.StoredToken, error) {
	stored, ok := f.records[tokenHash]
	if !ok || stored.TokenType != tokenType {
		return nil, repository.ErrTokenNotFound
	}
	return stored, nil
}

func (f *fakeTokens) Delete(ctx context.Context, tokenHash string) error {
	delete(f.records, tokenHash)
	return nil
}

func (f *fakeTokens) DeleteBySubject(ctx context.Context, subjectID uuid.UUID, tokenType string) error {
	for hash, stored := range f.records {
		if stored.SubjectID == subjectID && stored.TokenType == tokenType {
			delete(f.records, hash)
		}
	}
	return nil
}

func (f *fakeTokens) countByType(tokenType string) int {
	n := 0
	for _, stored := range f.records {
		if stored.TokenType == tokenType {
			n++
		}
	}
	return n
}

type fakeClientAccounts struct {
	byID map[uuid.UUID]*clientsrepo.Client
}

func newFakeClientAccounts() *fakeClientAccounts {
	return &fakeClientAccounts{byID: make(map[uuid.UUID]*clientsrepo.Client)}
}

func (f *fakeClientAccounts) Create(ctx context.Context, c *clientsrepo.Client) error {
	stored := *c
	f.byID[c.ID] = &stored
	return nil
}

func (f *fakeClientAccounts) GetByID(ctx context.Context, id uuid.UUID) (*clientsrepo.Client, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("Client with this id not found.")
	}
	return c, nil
}

func (f *fakeClientAccounts) FindByEmail(ctx context.Context, email string) (*clientsrepo.Client, error) {
	for _, c := range f.byID {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, apperr.NotFound("Client with this email not found.")
}

func (f *fakeClientAccounts) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeClientAccounts) MarkVerified(ctx context.Context, id uuid.UUID) error {
	c, ok := f.byID[id]
	if !ok {
		return apperr.NotFound("Client not found.")
	}
	c.IsVerified = true
	return nil
}

func (f *fakeClientAccounts) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	c, ok := f.byID[id]
	if !ok {
		return apperr.NotFound("Client not found.")
	}
	c.PasswordHash = passwordHash
	return nil
}

func (f *fakeClientAccounts) FindCompanyByName(ctx context.Context, name string) (*clientsrepo.Company, error) {
	return nil, apperr.NotFound("Company not found.")
}

func (f *fakeClientAccounts) FindOrCreateCompany(ctx context.Context, name string) (*clientsrepo.Company, error) {
	return &clientsrepo.Company{ID: uuid.New(), Name: name}, nil
}

type fakeAgentAccounts struct{}

func (fakeAgentAccounts) GetByID(ctx context.Context, id uuid.UUID) (*agentsrepo.Agent, error) {
	return nil, apperr.NotFound("Agent not found.")
}

func (fakeAgentAccounts) FindByEmail(ctx context.Context, email string) (*agentsrepo.Agent, error) {
	return nil, apperr.NotFound("Agent not found.")
}

type resetMailRecorder struct {
	email.NoopSender
	to  string
	url string
}

func (r *resetMailRecorder) SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error {
	r.to = toEmail
	r.url = resetURL
	return nil
}

type fakeRevoker struct {
	jtis map[string]time.Duration
}

func (f *fakeRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if f.jtis == nil {
		f.jtis = make(map[string]time.Duration)
	}
	f.jtis[jti] = ttl
	return nil
}

type stubAuthConfig struct{}

func (stubAuthConfig) GetJWTAccessSecret() string        { return "access-secret" }
func (stubAuthConfig) GetJWTRefreshSecret() string       { return "refresh-secret" }
func (stubAuthConfig) GetAccessTokenTTL() time.Duration  { return 15 * time.Minute }
func (stubAuthConfig) GetRefreshTokenTTL() time.Duration { return 30 * 24 * time.Hour }
func (stubAuthConfig) GetVerifyTokenTTL() time.Duration  { return 24 * time.Hour }
func (stubAuthConfig) GetResetTokenTTL() time.Duration   { return time.Hour }
func (stubAuthConfig) GetAppBaseURL() string             { return "http://app.test" }

type authTestEnv struct {
	svc     *Service
	tokens  *fakeTokens
	clients *fakeClientAccounts
	mail    *resetMailRecorder
	revoker *fakeRevoker
	client  *clientsrepo.Client
	now     time.Time
}

func newAuthTestEnv(t *testing.T) *authTestEnv {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	client := &clientsrepo.Client{
		ID:           uuid.New(),
		Name:         "Anna",
		Surname:      "Petrova",
		Email:        "anna@acme.test",
		Role:         clientsrepo.RoleAdmin,
		PasswordHash: string(hash),
		IsVerified:   true,
		CompanyID:    uuid.New(),
	}

	env := &authTestEnv{
		tokens:  newFakeTokens(),
		clients: newFakeClientAccounts(),
		mail:    &resetMailRecorder{},
		revoker: &fakeRevoker{},
		// Issued JWTs are parsed with the library's real clock, so the
		// test clock starts at the present.
		now: time.Now(),
	}
	env.clients.byID[client.ID] = client
	env.client = client

	env.svc = New(env.tokens, env.clients, fakeAgentAccounts{}, env.revoker, env.mail, stubAuthConfig{}, logger.New("test"))
	env.svc.now = func() time.Time { return env.now }

	return env
}

func resetTokenFromURL(t *testing.T, rawURL string) string {
	t.Helper()
	_, value, ok := strings.Cut(rawURL, "token=")
	if !ok {
		t.Fatalf("reset URL %q carries no token", rawURL)
	}
	return value
}

func assertUnauthorizedMessage(t *testing.T, err error, message string) {
	t.Helper()
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Kind != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized, got kind %v", appErr.Kind)
	}
	if appErr.Message != message {
		t.Fatalf("expected message %q, got %q", message, appErr.Message)
	}
}

func TestForgotPasswordEmailsResetLink(t *testing.T) {
	env := newAuthTestEnv(t)

	if err := env.svc.ForgotPassword(context.Background(), env.client.Email); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}

	if env.mail.to != env.client.Email {
		t.Fatalf("expected reset mail to %q, got %q", env.client.Email, env.mail.to)
	}
	if !strings.HasPrefix(env.mail.url, "http://app.test/reset-password?token=") {
		t.Fatalf("unexpected reset URL %q", env.mail.url)
	}
	if got := env.tokens.countByType(repository.TokenTypePasswordReset); got != 1 {
		t.Fatalf("expected 1 stored reset token, got %d", got)
	}
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	env := newAuthTestEnv(t)

	if err := env.svc.ForgotPassword(context.Background(), "nobody@acme.test"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}

	if env.mail.to != "" {
		t.Fatalf("expected no mail, got one to %q", env.mail.to)
	}
	if got := env.tokens.countByType(repository.TokenTypePasswordReset); got != 0 {
		t.Fatalf("expected no stored reset token, got %d", got)
	}
}

func TestForgotPasswordReplacesEarlierLink(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	if err := env.svc.ForgotPassword(ctx, env.client.Email); err != nil {
		t.Fatalf("first ForgotPassword: %v", err)
	}
	firstToken := resetTokenFromURL(t, env.mail.url)

	if err := env.svc.ForgotPassword(ctx, env.client.Email); err != nil {
		t.Fatalf("second ForgotPassword: %v", err)
	}

	if got := env.tokens.countByType(repository.TokenTypePasswordReset); got != 1 {
		t.Fatalf("expected the new link to replace the old one, got %d stored", got)
	}
	err := env.svc.ResetPassword(ctx, firstToken, "brand-new-password")
	assertUnauthorizedMessage(t, err, "Password reset link is invalid.")
}

func TestResetPasswordUpdatesHashAndEndsSessions(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	// An active session that must not survive the reset.
	if _, err := env.svc.issueTokens(ctx, env.client.ID, env.client.Email, true); err != nil {
		t.Fatalf("issueTokens: %v", err)
	}

	if err := env.svc.ForgotPassword(ctx, env.client.Email); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	rawToken := resetTokenFromURL(t, env.mail.url)

	if err := env.svc.ResetPassword(ctx, rawToken, "brand-new-password"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(env.client.PasswordHash), []byte("brand-new-password")); err != nil {
		t.Fatal("new password does not match the stored hash")
	}
	if got := env.tokens.countByType(repository.TokenTypePasswordReset); got != 0 {
		t.Fatalf("expected reset token to be consumed, %d remain", got)
	}
	if got := env.tokens.countByType(repository.TokenTypeRefresh); got != 0 {
		t.Fatalf("expected refresh tokens to be removed, %d remain", got)
	}
}

func TestResetPasswordRejectsUnknownToken(t *testing.T) {
	env := newAuthTestEnv(t)

	err := env.svc.ResetPassword(context.Background(), "no-such-token", "brand-new-password")
	assertUnauthorizedMessage(t, err, "Password reset link is invalid.")
}

func TestResetPasswordRejectsExpiredToken(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	if err := env.svc.ForgotPassword(ctx, env.client.Email); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	rawToken := resetTokenFromURL(t, env.mail.url)

	env.now = env.now.Add(time.Hour + time.Minute)

	err := env.svc.ResetPassword(ctx, rawToken, "brand-new-password")
	assertUnauthorizedMessage(t, err, "Password reset link has expired.")
	if got := env.tokens.countByType(repository.TokenTypePasswordReset); got != 0 {
		t.Fatalf("expected expired token to be deleted, %d remain", got)
	}
}

func TestDeactivateEndsAllSessions(t *testing.T) {
	env := newAuthTestEnv(t)
	ctx := context.Background()

	pair, err := env.svc.issueTokens(ctx, env.client.ID, env.client.Email, true)
	if err != nil {
		t.Fatalf("issueTokens: %v", err)
	}
	if _, err := env.svc.issueTokens(ctx, env.client.ID, env.client.Email, true); err != nil {
		t.Fatalf("issueTokens: %v", err)
	}

	if err := env.svc.Deactivate(ctx, pair.AccessToken); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	if got := env.tokens.countByType(repository.TokenTypeRefresh); got != 0 {
		t.Fatalf("expected all refresh tokens removed, %d remain", got)
	}
	if len(env.revoker.jtis) != 1 {
		t.Fatalf("expected 1 blacklisted jti, got %d", len(env.revoker.jtis))
	}
	for _, ttl := range env.revoker.jtis {
		if ttl <= 0 {
			t.Fatalf("expected positive blacklist TTL, got %v", ttl)
		}
	}
}

func TestDeactivateRejectsGarbageToken(t *testing.T) {
	env := newAuthTestEnv(t)

	err := env.svc.Deactivate(context.Background(), "not-a-jwt")
	assertUnauthorizedMessage(t, err, "Session is invalid.")
}
