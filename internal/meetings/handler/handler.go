package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"meetingease_backend/internal/meetings/repository"
	"meetingease_backend/internal/meetings/service"
	"meetingease_backend/internal/meetings/transport"
	"meetingease_backend/platform/httpkit"
	"meetingease_backend/platform/validator"
)

// Handler handles HTTP requests for meeting scheduling.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid meeting id"
)

// New creates a new meetings handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func caller(c *gin.Context) (service.Caller, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return service.Caller{}, false
	}
	return service.Caller{
		Email:    identity.Email(),
		IsClient: identity.IsClient(),
	}, true
}

// Create schedules a new meeting.
// POST /api/v1/meetings
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}

	result, err := h.svc.Create(c.Request.Context(), who, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// ListScheduled returns the caller's pending meetings.
// GET /api/v1/meetings
func (h *Handler) ListScheduled(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	result, err := h.svc.ListScheduled(c.Request.Context(), who)
	if httpkit.HandleError(c, err) {
		return
	}
	if result == nil {
		result = []repository.Meeting{}
	}
	httpkit.OK(c, result)
}

// GetByID fetches one meeting.
// GET /api/v1/meetings/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Cancel moves a meeting to CANCELLED.
// POST /api/v1/meetings/:id/cancel
func (h *Handler) Cancel(c *gin.Context) {
	h.transition(c, h.svc.Cancel)
}

// Complete moves a meeting to COMPLETED.
// POST /api/v1/meetings/:id/complete
func (h *Handler) Complete(c *gin.Context) {
	h.transition(c, h.svc.Complete)
}

// ChangeStreet relocates a pending meeting to another street.
// PATCH /api/v1/meetings/:id/street
func (h *Handler) ChangeStreet(c *gin.Context) {
	var req transport.ChangeStreetRequest
	id, ok := h.bindMutation(c, &req)
	if !ok {
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}

	result, err := h.svc.ChangeStreet(c.Request.Context(), who, id, req.Street)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ChangeHouseNumber relocates a pending meeting to another house.
// PATCH /api/v1/meetings/:id/house-number
func (h *Handler) ChangeHouseNumber(c *gin.Context) {
	var req transport.ChangeHouseNumberRequest
	id, ok := h.bindMutation(c, &req)
	if !ok {
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}

	result, err := h.svc.ChangeHouseNumber(c.Request.Context(), who, id, req.HouseNumber)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ChangeDeal points a pending meeting at another deal type.
// PATCH /api/v1/meetings/:id/deal
func (h *Handler) ChangeDeal(c *gin.Context) {
	var req transport.ChangeDealRequest
	id, ok := h.bindMutation(c, &req)
	if !ok {
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}

	result, err := h.svc.ChangeDeal(c.Request.Context(), who, id, req.DealType)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// FreeDatesForWeek returns the weekly availability view for a city.
// GET /api/v1/meetings/free-dates?city=Kazan
func (h *Handler) FreeDatesForWeek(c *gin.Context) {
	city := c.Query("city")
	if city == "" {
		httpkit.Error(c, http.StatusBadRequest, "city query parameter is required", nil)
		return
	}

	result, err := h.svc.FreeDatesForWeek(c.Request.Context(), city)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, who service.Caller, id uuid.UUID) (*repository.Meeting, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}
	who, ok := caller(c)
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), who, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) bindMutation(c *gin.Context, req interface{}) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return uuid.Nil, false
	}
	return id, true
}
