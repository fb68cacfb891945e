package handler

import (
	"github.com/gin-gonic/gin"

	"meetingease_backend/internal/deals/repository"
	"meetingease_backend/platform/httpkit"
)

// Handler handles HTTP requests for the deal catalog.
type Handler struct {
	repo *repository.Repository
}

// New creates a new deals handler.
func New(repo *repository.Repository) *Handler {
	return &Handler{repo: repo}
}

// List retrieves the deal catalog.
// GET /api/v1/deals
func (h *Handler) List(c *gin.Context) {
	result, err := h.repo.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
