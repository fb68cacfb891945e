// Package agents provides the agent directory bounded context module.
package agents

import (
	"net/http"

	"meetingease_backend/internal/agents/repository"
	apphttp "meetingease_backend/internal/http"
	"meetingease_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the agent directory module implementing http.Module.
type Module struct {
	repo *repository.Repository
}

// NewModule creates and initializes the agents module.
func NewModule(pool *pgxpool.Pool) *Module {
	return &Module{repo: repository.New(pool)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "agents"
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts agent directory routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/agents", m.listByCity)
	ctx.Protected.GET("/agents/:id", m.getByID)
}

// listByCity returns the agents working in a city.
// GET /api/v1/agents?city=Kazan
func (m *Module) listByCity(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		httpkit.Error(c, http.StatusBadRequest, "city query parameter is required", nil)
		return
	}

	agents, err := m.repo.ListByCity(c.Request.Context(), city)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, agents)
}

// getByID returns a single agent profile.
// GET /api/v1/agents/:id
func (m *Module) getByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid agent id", nil)
		return
	}

	agent, err := m.repo.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, agent)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
