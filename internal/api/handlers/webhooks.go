package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omnidesk/autoreply-service/internal/api/dto"
	"github.com/omnidesk/autoreply-service/internal/api/middleware"
	domainerrors "github.com/omnidesk/autoreply-service/internal/domain/errors"
	"github.com/omnidesk/autoreply-service/internal/domain/models"
	"github.com/omnidesk/autoreply-service/internal/services/orchestrator"
)

// WebhooksHandler receives normalized inbound messages from the channel
// adapters and runs them through the auto-reply pipeline.
type WebhooksHandler struct {
	orchestrator *orchestrator.Orchestrator
}

// NewWebhooksHandler creates a new WebhooksHandler.
func NewWebhooksHandler(o *orchestrator.Orchestrator) *WebhooksHandler {
	return &WebhooksHandler{
		orchestrator: o,
	}
}

// ProcessMessage handles POST /tenants/{tenantId}/webhooks/messages
// @Summary Process an inbound customer message
// @Description Runs the auto-reply pipeline: state tracking, generation, escalation, dispatch
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param message body dto.IncomingMessageRequest true "Inbound message"
// @Success 200 {object} dto.ProcessOutcomeResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/autoreply-service/tenants/{tenantId}/webhooks/messages [post]
func (h *WebhooksHandler) ProcessMessage(c *gin.Context) {
	tenantCtx := middleware.GetTenantContext(c)

	var req dto.IncomingMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, domainerrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	outcome, err := h.orchestrator.ProcessIncoming(c.Request.Context(), &models.IncomingMessage{
		ConversationID: req.ConversationID,
		TenantID:       tenantCtx.TenantID,
		UserID:         req.UserID,
		Content:        req.Content,
		Platform:       req.Platform,
		SenderID:       req.SenderID,
		CustomerInfo:   req.CustomerInfo,
	})
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	resp := dto.ProcessOutcomeResponse{
		ConversationID:   outcome.Conversation.ID,
		Stage:            string(outcome.Conversation.Stage),
		Sentiment:        string(outcome.Conversation.Sentiment),
		ShouldReply:      outcome.ShouldReply,
		Dispatched:       outcome.Dispatched,
		Escalated:        outcome.Escalated,
		EscalationReason: outcome.EscalationReason,
		SkipReason:       outcome.SkipReason,
	}
	if outcome.Reply != nil {
		resp.Reply = outcome.Reply.Content
	}
	if outcome.Generation != nil {
		resp.Confidence = outcome.Generation.Confidence
		resp.Provider = outcome.Generation.Provider
	}

	c.JSON(http.StatusOK, resp)
}
