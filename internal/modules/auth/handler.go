package auth

import (
	"errors"
	"net/http"

	"ticketdesk/internal/pkg/response"
	"ticketdesk/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts the session endpoints. They take credentials in
// the body, so extra middleware here is usually a rate limiter, not the gate.
func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup, mw ...gin.HandlerFunc) {
	authGroup := v1.Group("/auth", mw...)
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
	}
}

// RegisterProtectedRoutes mounts account creation behind the auth gate.
func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.POST("/auth/register", h.Register)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if issues := validator.Validate(req); issues != nil {
		response.ValidationError(c, issues)
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
			return
		}
		log.Error().Err(err).Msg("register failed")
		response.InternalError(c)
		return
	}

	response.Success(c, http.StatusCreated, UserPublic{ID: user.ID, Email: user.Email})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if issues := validator.Validate(req); issues != nil {
		response.ValidationError(c, issues)
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
			return
		}
		log.Error().Err(err).Msg("login failed")
		response.InternalError(c)
		return
	}

	response.Success(c, http.StatusOK, LoginResponse{
		SessionToken:      result.SessionToken,
		RenewalCredential: result.RenewalCredential,
	})
}

func (h *Handler) Refresh(c *gin.Context) {
	var req RenewalRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RenewalCredential == "" {
		response.Error(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Renewal credential is required")
		return
	}

	token, err := h.service.Renew(c.Request.Context(), req.RenewalCredential)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, RefreshResponse{SessionToken: token})
	case errors.Is(err, ErrInvalidRefreshToken):
		response.Error(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Renewal credential is invalid or expired")
	case errors.Is(err, ErrRefreshTokenRevoked):
		response.Error(c, http.StatusForbidden, "REFRESH_TOKEN_REVOKED", "Renewal credential is no longer valid")
	default:
		log.Error().Err(err).Msg("refresh failed")
		response.InternalError(c)
	}
}

// Logout always answers 204 so a stale client can still sign out.
func (h *Handler) Logout(c *gin.Context) {
	var req RenewalRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.service.Logout(c.Request.Context(), req.RenewalCredential); err != nil {
		log.Error().Err(err).Msg("logout failed")
	}
	c.Status(http.StatusNoContent)
}
