package ticket

import (
	"errors"
	"net/http"
	"strconv"

	"ticketdesk/internal/domain"
	"ticketdesk/internal/middleware"
	"ticketdesk/internal/pkg/response"
	"ticketdesk/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the ticket endpoints on a group that already runs
// the auth gate.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	tickets := protected.Group("/tickets")
	{
		tickets.GET("", h.List)
		tickets.POST("", h.Create)
		tickets.GET("/platform/:platformName", h.ListByPlatform)
		tickets.GET("/:id", h.GetByID)
		tickets.PATCH("/:id/status", h.UpdateStatus)
		tickets.GET("/:id/messages", h.ListMessages)
		tickets.POST("/:id/messages", h.AddMessage)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if issues := validator.Validate(req); issues != nil {
		response.ValidationError(c, issues)
		return
	}

	p, _ := middleware.PrincipalFrom(c)
	t, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, t)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	t, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, t)
}

func (h *Handler) List(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := h.service.List(c.Request.Context(), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *Handler) ListByPlatform(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := h.service.ListByPlatform(c.Request.Context(), c.Param("platformName"), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if issues := validator.Validate(req); issues != nil {
		response.ValidationError(c, issues)
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), id, domain.TicketStatus(req.Status)); err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "status": req.Status})
}

func (h *Handler) ListMessages(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	page, ok := bindPage(c)
	if !ok {
		return
	}
	result, err := h.service.ListMessages(c.Request.Context(), id, page)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *Handler) AddMessage(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var req AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if issues := validator.Validate(req); issues != nil {
		response.ValidationError(c, issues)
		return
	}

	p, _ := middleware.PrincipalFrom(c)
	msg, err := h.service.AddMessage(c.Request.Context(), p, id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, msg)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTicketNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Ticket not found")
	case errors.Is(err, ErrEmptyText):
		response.ValidationError(c, map[string]string{"text": "required"})
	case errors.Is(err, ErrSenderRequired):
		response.ValidationError(c, map[string]string{"sender.email": "required"})
	case errors.Is(err, ErrSenderInvalid):
		response.ValidationError(c, map[string]string{"sender.email": "email"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("ticket request failed")
		response.InternalError(c)
	}
}

func ticketID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ticket ID")
		return 0, false
	}
	return id, true
}

func bindPage(c *gin.Context) (Page, bool) {
	var page Page
	if err := c.ShouldBindQuery(&page); err != nil || page.Limit < 0 || page.Offset < 0 {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid pagination",
			map[string]string{"limit": "min=0", "offset": "min=0"})
		return Page{}, false
	}
	return page, true
}
