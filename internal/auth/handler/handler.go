package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"meetingease_backend/internal/auth/service"
	"meetingease_backend/internal/auth/transport"
	"meetingease_backend/platform/httpkit"
	"meetingease_backend/platform/validator"
)

// Handler handles HTTP requests for authentication.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new auth handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Register creates a new client account.
// POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req transport.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.RegisterClient(c.Request.Context(), req); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusCreated)
}

// VerifyEmail confirms an email address.
// POST /api/v1/auth/verify-email
func (h *Handler) VerifyEmail(c *gin.Context) {
	var req transport.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.VerifyEmail(c.Request.Context(), req.Token); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// ForgotPassword emails a password reset link. The response is the same
// whether or not the email belongs to an account.
// POST /api/v1/auth/forgot-password
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req transport.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.ForgotPassword(c.Request.Context(), req.Email); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetPassword sets a new password using the emailed token.
// POST /api/v1/auth/reset-password
func (h *Handler) ResetPassword(c *gin.Context) {
	var req transport.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// LoginClient authenticates a client.
// POST /api/v1/auth/login
func (h *Handler) LoginClient(c *gin.Context) {
	h.login(c, h.svc.LoginClient)
}

// LoginAgent authenticates an agent.
// POST /api/v1/auth/agents/login
func (h *Handler) LoginAgent(c *gin.Context) {
	h.login(c, h.svc.LoginAgent)
}

func (h *Handler) login(c *gin.Context, fn func(ctx context.Context, req transport.LoginRequest) (*transport.TokenPairResponse, error)) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := fn(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Refresh exchanges a refresh token for a new token pair.
// POST /api/v1/auth/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req transport.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Logout revokes the current session.
// POST /api/v1/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	var req transport.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	rawAccess := ""
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		rawAccess = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	if err := h.svc.Logout(c.Request.Context(), rawAccess, req.RefreshToken); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}
