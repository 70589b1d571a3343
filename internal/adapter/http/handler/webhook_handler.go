package handler

import (
	"ledgersplit/internal/adapter/http/dto"
	"ledgersplit/internal/adapter/http/middleware"
	"ledgersplit/internal/core/domain"
	"ledgersplit/internal/core/ports"
	"ledgersplit/pkg/apperror"
	"ledgersplit/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives change notifications from the backend.
type WebhookHandler struct {
	webhookSvc ports.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookSvc ports.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// Receive handles POST /api/v1/webhooks/backend.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var req dto.ChangeNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	err := h.webhookSvc.HandleChange(c.Request.Context(), &domain.ChangeNotification{
		ChangeType: domain.ChangeType(req.ChangeType),
		EventID:    req.EventID,
		OccurredAt: req.OccurredAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxAuditResourceID, req.EventID)
	response.Accepted(c, dto.ChangeAcceptedResponse{EventID: req.EventID, Status: "invalidated"})
}
