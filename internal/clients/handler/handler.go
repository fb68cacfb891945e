package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"meetingease_backend/internal/clients/service"
	"meetingease_backend/internal/clients/transport"
	"meetingease_backend/platform/httpkit"
	"meetingease_backend/platform/validator"
)

// SessionEnder revokes all sessions behind the presented access token.
type SessionEnder interface {
	Deactivate(ctx context.Context, rawAccessToken string) error
}

// Handler handles HTTP requests for client profiles.
type Handler struct {
	svc      *service.Service
	sessions SessionEnder
	val      *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new clients handler.
func New(svc *service.Service, sessions SessionEnder, val *validator.Validator) *Handler {
	return &Handler{svc: svc, sessions: sessions, val: val}
}

// GetProfile returns the caller's profile.
// GET /api/v1/clients/me
func (h *Handler) GetProfile(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.GetProfile(c.Request.Context(), identity.SubjectID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateProfile updates the caller's profile fields.
// PUT /api/v1/clients/me
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req transport.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.UpdateProfile(c.Request.Context(), identity.SubjectID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ChangePassword replaces the caller's password.
// POST /api/v1/clients/me/password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req transport.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), identity.SubjectID(), req); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateRole changes a colleague's company role. The caller must be an
// admin of the same company.
// PATCH /api/v1/clients/role/:id
func (h *Handler) UpdateRole(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid client id", nil)
		return
	}

	var req transport.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.UpdateRole(c.Request.Context(), identity.SubjectID(), targetID, req.Role)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Deactivate signs the caller out of every session.
// DELETE /api/v1/clients/deactivate
func (h *Handler) Deactivate(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	rawAccess := ""
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		rawAccess = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	if err := h.sessions.Deactivate(c.Request.Context(), rawAccess); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadPhoto stores a new profile photo.
// POST /api/v1/clients/me/photo
func (h *Handler) UploadPhoto(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "photo file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := h.svc.UploadPhoto(c.Request.Context(), identity.SubjectID(), fileHeader.Filename, contentType, file, fileHeader.Size)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"photoUrl": url})
}
