// Package meetings provides the meeting scheduling bounded context module.
package meetings

import (
	agentsrepo "meetingease_backend/internal/agents/repository"
	clientsrepo "meetingease_backend/internal/clients/repository"
	dealsrepo "meetingease_backend/internal/deals/repository"
	"meetingease_backend/internal/geocode"
	apphttp "meetingease_backend/internal/http"
	"meetingease_backend/internal/meetings/handler"
	"meetingease_backend/internal/meetings/repository"
	"meetingease_backend/internal/meetings/service"
	"meetingease_backend/platform/config"
	"meetingease_backend/platform/events"
	"meetingease_backend/platform/logger"
	"meetingease_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the scheduling engine module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the meetings module. The reminder
// scheduler may be nil when redis is not configured.
func NewModule(pool *pgxpool.Pool, resolver *geocode.Service, reminders service.ReminderScheduler, bus events.Bus, cfg config.SchedulingConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(
		repo,
		resolver,
		agentsrepo.New(pool),
		dealsrepo.New(pool),
		clientsrepo.New(pool),
		reminders,
		bus,
		cfg.GetTimeZone(),
		log,
	)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "meetings"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts scheduling routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/meetings")
	group.POST("", m.handler.Create)
	group.GET("", m.handler.ListScheduled)
	group.GET("/free-dates", m.handler.FreeDatesForWeek)
	group.GET("/:id", m.handler.GetByID)
	group.POST("/:id/cancel", m.handler.Cancel)
	group.POST("/:id/complete", m.handler.Complete)
	group.PATCH("/:id/street", m.handler.ChangeStreet)
	group.PATCH("/:id/house-number", m.handler.ChangeHouseNumber)
	group.PATCH("/:id/deal", m.handler.ChangeDeal)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
