// Package auth provides the authentication bounded context module.
package auth

import (
	agentsrepo "meetingease_backend/internal/agents/repository"
	"meetingease_backend/internal/auth/handler"
	"meetingease_backend/internal/auth/repository"
	"meetingease_backend/internal/auth/service"
	clientsrepo "meetingease_backend/internal/clients/repository"
	"meetingease_backend/internal/email"
	apphttp "meetingease_backend/internal/http"
	"meetingease_backend/platform/config"
	"meetingease_backend/platform/logger"
	"meetingease_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the authentication module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module.
func NewModule(pool *pgxpool.Pool, revoker service.Revoker, mail email.Sender, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, clientsrepo.New(pool), agentsrepo.New(pool), revoker, mail, cfg, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts auth routes on the provided router context. Login
// and registration use the stricter rate limiter; logout requires a valid
// access token.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/auth")
	group.Use(ctx.AuthRateLimiter.RateLimit())

	group.POST("/register", m.handler.Register)
	group.POST("/verify-email", m.handler.VerifyEmail)
	group.POST("/forgot-password", m.handler.ForgotPassword)
	group.POST("/reset-password", m.handler.ResetPassword)
	group.POST("/login", m.handler.LoginClient)
	group.POST("/agents/login", m.handler.LoginAgent)
	group.POST("/refresh", m.handler.Refresh)

	group.POST("/logout", ctx.AuthMiddleware, m.handler.Logout)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
