package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"copyprocloud/internal/domain"
	"copyprocloud/internal/pkg/response"
)

type Handler struct {
	service   *Service
	templates templateRepo
}

func NewHandler(service *Service, templates templateRepo) *Handler {
	return &Handler{service: service, templates: templates}
}

// RegisterAdminRoutes mounts the processing trigger and template
// management. The trigger mirrors the scheduled invocation so an admin
// can force a run by hand.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/notifications/process", h.Process)
	rg.PUT("/notifications/templates", h.UpsertTemplate)
}

func (h *Handler) Process(c *gin.Context) {
	res, err := h.service.ProcessDue(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process reminders")
		return
	}
	response.Success(c, http.StatusOK, res)
}

type UpsertTemplateRequest struct {
	Channel   string `json:"channel" binding:"required"`
	EventType string `json:"event_type" binding:"required"`
	Subject   string `json:"subject"`
	Body      string `json:"body" binding:"required"`
	Active    *bool  `json:"active"`
}

func (h *Handler) UpsertTemplate(c *gin.Context) {
	var req UpsertTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	t := &domain.NotificationTemplate{
		Channel:   domain.NotificationChannel(req.Channel),
		EventType: domain.NotificationEvent(req.EventType),
		Subject:   req.Subject,
		Body:      req.Body,
		Active:    active,
	}
	if err := h.templates.Upsert(c.Request.Context(), t); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save template")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"template": t})
}
