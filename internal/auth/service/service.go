// Package service implements registration, login and session management
// for clients and agents.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"meetingease_backend/internal/auth/repository"
	"meetingease_backend/internal/auth/token"
	"meetingease_backend/internal/auth/transport"
	clientsrepo "meetingease_backend/internal/clients/repository"
	"meetingease_backend/internal/email"
	"meetingease_backend/platform/apperr"
	"meetingease_backend/platform/config"
	"meetingease_backend/platform/logger"
	"meetingease_backend/platform/phone"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const accessTokenType = "access"

// Revoker blacklists access token jti values.
type Revoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

// Service implements authentication for clients and agents.
type Service struct {
	repo    TokenStore
	clients ClientAccounts
	agents  AgentAccounts
	revoker Revoker
	mail    email.Sender
	cfg     config.AuthServiceConfig
	log     *logger.Logger
	now     func() time.Time
}

// New creates a new auth service. The revoker may be nil when redis is not
// configured, in which case logout only invalidates the refresh token.
func New(repo TokenStore, clients ClientAccounts, agents AgentAccounts, revoker Revoker, mail email.Sender, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		clients: clients,
		agents:  agents,
		revoker: revoker,
		mail:    mail,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// RegisterClient creates an unverified client account and sends a
// verification email. The first registrant of a company becomes its ADMIN.
func (s *Service) RegisterClient(ctx context.Context, req transport.RegisterRequest) error {
	exists, err := s.clients.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if exists {
		return apperr.Conflict("Client with this email already exists.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	role := clientsrepo.RoleUser
	company, err := s.clients.FindCompanyByName(ctx, req.Company)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			return err
		}
		company, err = s.clients.FindOrCreateCompany(ctx, req.Company)
		if err != nil {
			return err
		}
		role = clientsrepo.RoleAdmin
	}

	client := &clientsrepo.Client{
		ID:           uuid.New(),
		Name:         req.Name,
		Surname:      req.Surname,
		Email:        req.Email,
		Phone:        phone.NormalizeE164(req.Phone),
		Position:     req.Position,
		Role:         role,
		PasswordHash: string(hash),
		IsVerified:   false,
		CompanyID:    company.ID,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return err
	}

	verifyToken, err := token.GenerateRandomToken(32)
	if err != nil {
		return err
	}

	verifyHash := token.HashSHA256(verifyToken)
	expiresAt := s.now().Add(s.cfg.GetVerifyTokenTTL())
	if err := s.repo.Store(ctx, verifyHash, client.ID, repository.TokenTypeEmailVerify, true, expiresAt); err != nil {
		return err
	}

	verifyURL := s.buildURL("/verify-email", verifyToken)
	if err := s.mail.SendVerificationEmail(ctx, client.Email, verifyURL); err != nil {
		s.log.Warn("verification email failed", "email", client.Email, "error", err)
	}

	return nil
}

// VerifyEmail confirms a client's email address using the emailed token.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) error {
	hash := token.HashSHA256(rawToken)
	stored, err := s.repo.Get(ctx, hash, repository.TokenTypeEmailVerify)
	if err != nil {
		return apperr.Unauthorized("Verification link is invalid.")
	}

	if s.now().After(stored.ExpiresAt) {
		_ = s.repo.Delete(ctx, hash)
		return apperr.Unauthorized("Verification link has expired.")
	}

	if err := s.clients.MarkVerified(ctx, stored.SubjectID); err != nil {
		return err
	}

	// Re-registration attempts may have issued more than one link.
	return s.repo.DeleteBySubject(ctx, stored.SubjectID, repository.TokenTypeEmailVerify)
}

// LoginClient authenticates a client and issues a token pair.
func (s *Service) LoginClient(ctx context.Context, req transport.LoginRequest) (*transport.TokenPairResponse, error) {
	client, err := s.clients.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid email or password.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthorized("Invalid email or password.")
	}

	return s.issueTokens(ctx, client.ID, client.Email, true)
}

// LoginAgent authenticates an agent and issues a token pair.
func (s *Service) LoginAgent(ctx context.Context, req transport.LoginRequest) (*transport.TokenPairResponse, error) {
	agent, err := s.agents.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid email or password.")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(agent.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthorized("Invalid email or password.")
	}

	return s.issueTokens(ctx, agent.ID, agent.Email, false)
}

// Refresh rotates a refresh token and issues a new token pair.
func (s *Service) Refresh(ctx context.Context, rawToken string) (*transport.TokenPairResponse, error) {
	hash := token.HashSHA256(rawToken)
	stored, err := s.repo.Get(ctx, hash, repository.TokenTypeRefresh)
	if err != nil {
		return nil, apperr.Unauthorized("Session is invalid.")
	}

	if s.now().After(stored.ExpiresAt) {
		_ = s.repo.Delete(ctx, hash)
		return nil, apperr.Unauthorized("Session has expired.")
	}

	// Single use: rotate on every refresh.
	if err := s.repo.Delete(ctx, hash); err != nil {
		return nil, err
	}

	var subjectEmail string
	if stored.IsClient {
		client, err := s.clients.GetByID(ctx, stored.SubjectID)
		if err != nil {
			return nil, apperr.Unauthorized("Session is invalid.")
		}
		subjectEmail = client.Email
	} else {
		agent, err := s.agents.GetByID(ctx, stored.SubjectID)
		if err != nil {
			return nil, apperr.Unauthorized("Session is invalid.")
		}
		subjectEmail = agent.Email
	}

	return s.issueTokens(ctx, stored.SubjectID, subjectEmail, stored.IsClient)
}

// Logout invalidates the refresh token and blacklists the access token's
// jti until its natural expiry.
func (s *Service) Logout(ctx context.Context, rawAccessToken, refreshToken string) error {
	if refreshToken != "" {
		if err := s.repo.Delete(ctx, token.HashSHA256(refreshToken)); err != nil {
			return err
		}
	}

	if s.revoker == nil || rawAccessToken == "" {
		return nil
	}

	_, jti, expiresAt, err := s.parseAccessToken(rawAccessToken)
	if err != nil {
		// Nothing to blacklist for an unparseable token.
		return nil
	}

	return s.revoker.Revoke(ctx, jti, expiresAt.Sub(s.now()))
}

// Deactivate signs the caller out everywhere: all refresh tokens are
// removed and the presented access token is blacklisted until its expiry.
func (s *Service) Deactivate(ctx context.Context, rawAccessToken string) error {
	subjectID, jti, expiresAt, err := s.parseAccessToken(rawAccessToken)
	if err != nil {
		return apperr.Unauthorized("Session is invalid.")
	}

	if err := s.repo.DeleteBySubject(ctx, subjectID, repository.TokenTypeRefresh); err != nil {
		return err
	}

	if s.revoker == nil {
		return nil
	}
	return s.revoker.Revoke(ctx, jti, expiresAt.Sub(s.now()))
}

// ForgotPassword emails a password reset link. An unknown email reports
// success anyway so the endpoint cannot be used to probe for accounts.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	client, err := s.clients.FindByEmail(ctx, emailAddr)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}

	resetToken, err := token.GenerateRandomToken(32)
	if err != nil {
		return err
	}

	// At most one live reset link per client.
	if err := s.repo.DeleteBySubject(ctx, client.ID, repository.TokenTypePasswordReset); err != nil {
		return err
	}

	resetHash := token.HashSHA256(resetToken)
	expiresAt := s.now().Add(s.cfg.GetResetTokenTTL())
	if err := s.repo.Store(ctx, resetHash, client.ID, repository.TokenTypePasswordReset, true, expiresAt); err != nil {
		return err
	}

	resetURL := s.buildURL("/reset-password", resetToken)
	if err := s.mail.SendPasswordResetEmail(ctx, client.Email, resetURL); err != nil {
		s.log.Warn("password reset email failed", "email", client.Email, "error", err)
	}

	return nil
}

// ResetPassword sets a new password using the emailed token. All refresh
// tokens of the client are removed so stolen sessions do not survive.
func (s *Service) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	hash := token.HashSHA256(rawToken)
	stored, err := s.repo.Get(ctx, hash, repository.TokenTypePasswordReset)
	if err != nil {
		return apperr.Unauthorized("Password reset link is invalid.")
	}

	if s.now().After(stored.ExpiresAt) {
		_ = s.repo.Delete(ctx, hash)
		return apperr.Unauthorized("Password reset link has expired.")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.clients.UpdatePassword(ctx, stored.SubjectID, string(passwordHash)); err != nil {
		return err
	}

	if err := s.repo.DeleteBySubject(ctx, stored.SubjectID, repository.TokenTypePasswordReset); err != nil {
		return err
	}
	return s.repo.DeleteBySubject(ctx, stored.SubjectID, repository.TokenTypeRefresh)
}

func (s *Service) issueTokens(ctx context.Context, subjectID uuid.UUID, subjectEmail string, isClient bool) (*transport.TokenPairResponse, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":       subjectID.String(),
		"email":     subjectEmail,
		"is_client": isClient,
		"jti":       uuid.New().String(),
		"type":      accessTokenType,
		"exp":       now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":       now.Unix(),
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := token.GenerateRandomToken(48)
	if err != nil {
		return nil, err
	}

	refreshHash := token.HashSHA256(refreshToken)
	expiresAt := now.Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.Store(ctx, refreshHash, subjectID, repository.TokenTypeRefresh, isClient, expiresAt); err != nil {
		return nil, err
	}

	return &transport.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *Service) parseAccessToken(rawToken string) (uuid.UUID, string, time.Time, error) {
	parsed, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return []byte(s.cfg.GetJWTAccessSecret()), nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, "", time.Time{}, fmt.Errorf("invalid access token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", time.Time{}, fmt.Errorf("invalid access token claims")
	}

	sub, _ := claims["sub"].(string)
	subjectID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", time.Time{}, fmt.Errorf("invalid token subject")
	}

	jti, _ := claims["jti"].(string)
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return uuid.Nil, "", time.Time{}, fmt.Errorf("missing token expiry")
	}

	return subjectID, jti, exp.Time, nil
}

func (s *Service) buildURL(path string, tokenValue string) string {
	base := strings.TrimRight(s.cfg.GetAppBaseURL(), "/")
	return base + path + "?token=" + tokenValue
}
