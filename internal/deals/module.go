// Package deals provides the deal catalog bounded context module.
package deals

import (
	"meetingease_backend/internal/deals/handler"
	"meetingease_backend/internal/deals/repository"
	apphttp "meetingease_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the deal catalog module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule creates and initializes the deals module.
func NewModule(pool *pgxpool.Pool) *Module {
	repo := repository.New(pool)
	h := handler.New(repo)

	return &Module{handler: h, repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "deals"
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts deal catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/deals", m.handler.List)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
