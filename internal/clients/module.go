// Package clients provides the client profile bounded context module.
package clients

import (
	"meetingease_backend/internal/clients/handler"
	"meetingease_backend/internal/clients/repository"
	"meetingease_backend/internal/clients/service"
	apphttp "meetingease_backend/internal/http"
	"meetingease_backend/internal/storage"
	"meetingease_backend/platform/logger"
	"meetingease_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the client profile module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the clients module. The sessions
// dependency ends all of a caller's sessions on account deactivation.
func NewModule(pool *pgxpool.Pool, storageSvc storage.StorageService, bucket string, sessions handler.SessionEnder, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, storageSvc, bucket, log)
	h := handler.New(svc, sessions, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "clients"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts client profile routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/clients")

	me := group.Group("/me")
	me.GET("", m.handler.GetProfile)
	me.PUT("", m.handler.UpdateProfile)
	me.POST("/password", m.handler.ChangePassword)
	me.POST("/photo", m.handler.UploadPhoto)

	group.PATCH("/role/:id", m.handler.UpdateRole)
	group.DELETE("/deactivate", m.handler.Deactivate)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
