package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/omnidesk/autoreply-service/internal/api/dto"
	"github.com/omnidesk/autoreply-service/internal/api/middleware"
	"github.com/omnidesk/autoreply-service/internal/core/docdb"
	domainerrors "github.com/omnidesk/autoreply-service/internal/domain/errors"
	"github.com/omnidesk/autoreply-service/internal/domain/models"
	"github.com/omnidesk/autoreply-service/internal/services/escalation"
	"github.com/omnidesk/autoreply-service/internal/services/state"
)

// ConversationsHandler handles conversation lifecycle endpoints.
type ConversationsHandler struct {
	db         docdb.Client
	tracker    *state.Tracker
	escalation *escalation.Workflow
	logger     zerolog.Logger
}

// NewConversationsHandler creates a new ConversationsHandler.
func NewConversationsHandler(db docdb.Client, tracker *state.Tracker, esc *escalation.Workflow, logger zerolog.Logger) *ConversationsHandler {
	return &ConversationsHandler{
		db:         db,
		tracker:    tracker,
		escalation: esc,
		logger:     logger.With().Str("component", "conversations_handler").Logger(),
	}
}

// Get handles GET /tenants/{tenantId}/conversations/{conversationId}
// @Summary Get a conversation
// @Description Retrieves the conversation state, including the pending handoff if escalated
// @Tags Conversations
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param conversationId path string true "Conversation ID"
// @Success 200 {object} dto.ConversationResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/autoreply-service/tenants/{tenantId}/conversations/{conversationId} [get]
func (h *ConversationsHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	tenantCtx := middleware.GetTenantContext(c)

	conversation, err := h.db.Conversations().Get(ctx, tenantCtx.TenantID, tenantCtx.ConversationID)
	if err != nil {
		middleware.HandleError(c, domainerrors.NewInternalError("failed to load conversation", err))
		return
	}
	if conversation == nil {
		middleware.HandleError(c, domainerrors.NewNotFoundError("conversation", tenantCtx.ConversationID))
		return
	}

	resp := dto.ConversationResponse{Conversation: conversation}
	if conversation.IsEscalated() {
		handoff, err := h.db.Handoffs().FindPending(ctx, tenantCtx.TenantID, tenantCtx.ConversationID)
		if err != nil {
			middleware.HandleError(c, domainerrors.NewInternalError("failed to load handoff", err))
			return
		}
		resp.Handoff = handoff
	}

	c.JSON(http.StatusOK, resp)
}

// Assign handles POST /tenants/{tenantId}/conversations/{conversationId}/assignments
// @Summary Assign an agent to a conversation
// @Description Creates an active agent assignment; auto-response is enabled for AI agents
// @Tags Conversations
// @Accept json
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param conversationId path string true "Conversation ID"
// @Param assignment body dto.AssignAgentRequest true "Assignment"
// @Success 201 {object} dto.AssignmentResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/autoreply-service/tenants/{tenantId}/conversations/{conversationId}/assignments [post]
func (h *ConversationsHandler) Assign(c *gin.Context) {
	ctx := c.Request.Context()
	tenantCtx := middleware.GetTenantContext(c)

	var req dto.AssignAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, domainerrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	existing, err := h.db.Assignments().GetActive(ctx, tenantCtx.TenantID, tenantCtx.ConversationID)
	if err != nil {
		middleware.HandleError(c, domainerrors.NewInternalError("failed to check existing assignment", err))
		return
	}
	if existing != nil {
		middleware.HandleError(c, domainerrors.NewConflictError("conversation already has an active assignment", existing.ID))
		return
	}

	assignment := models.NewAgentAssignment(tenantCtx.TenantID, tenantCtx.ConversationID,
		req.AgentID, models.AgentType(req.AgentType))
	if err := h.db.Assignments().Create(ctx, assignment); err != nil {
		middleware.HandleError(c, domainerrors.NewInternalError("failed to create assignment", err))
		return
	}

	c.JSON(http.StatusCreated, dto.AssignmentResponse{Assignment: assignment})
}

// Reassign handles POST /tenants/{tenantId}/conversations/{conversationId}/reassign
// @Summary Reassign a conversation
// @Description Rebinds the conversation to a new agent; this is the only path out of the escalated stage
// @Tags Conversations
// @Accept json
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param conversationId path string true "Conversation ID"
// @Param reassignment body dto.ReassignRequest true "Reassignment"
// @Success 200 {object} dto.ConversationResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/autoreply-service/tenants/{tenantId}/conversations/{conversationId}/reassign [post]
func (h *ConversationsHandler) Reassign(c *gin.Context) {
	ctx := c.Request.Context()
	tenantCtx := middleware.GetTenantContext(c)

	var req dto.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, domainerrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	conversation, err := h.tracker.Reassign(ctx, tenantCtx.TenantID, tenantCtx.ConversationID,
		req.AgentID, models.AgentType(req.AgentType))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	assignment := models.NewAgentAssignment(tenantCtx.TenantID, tenantCtx.ConversationID,
		req.AgentID, models.AgentType(req.AgentType))
	if err := h.db.Assignments().Create(ctx, assignment); err != nil {
		middleware.HandleError(c, domainerrors.NewInternalError("failed to create assignment", err))
		return
	}

	c.JSON(http.StatusOK, dto.ConversationResponse{Conversation: conversation})
}

// Escalate handles POST /tenants/{tenantId}/conversations/{conversationId}/escalate
// @Summary Force an escalation
// @Description Escalates the conversation to the human queue from the operator UI
// @Tags Conversations
// @Accept json
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param conversationId path string true "Conversation ID"
// @Param escalation body dto.EscalateRequest true "Escalation"
// @Success 200 {object} dto.EscalationResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/autoreply-service/tenants/{tenantId}/conversations/{conversationId}/escalate [post]
func (h *ConversationsHandler) Escalate(c *gin.Context) {
	ctx := c.Request.Context()
	tenantCtx := middleware.GetTenantContext(c)

	var req dto.EscalateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, domainerrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	conversation, err := h.db.Conversations().Get(ctx, tenantCtx.TenantID, tenantCtx.ConversationID)
	if err != nil {
		middleware.HandleError(c, domainerrors.NewInternalError("failed to load conversation", err))
		return
	}
	if conversation == nil {
		middleware.HandleError(c, domainerrors.NewNotFoundError("conversation", tenantCtx.ConversationID))
		return
	}

	assignment, err := h.db.Assignments().GetActive(ctx, tenantCtx.TenantID, tenantCtx.ConversationID)
	if err != nil {
		middleware.HandleError(c, domainerrors.NewInternalError("failed to load assignment", err))
		return
	}

	result, err := h.escalation.Initiate(ctx, &escalation.Request{
		TenantID:     tenantCtx.TenantID,
		Conversation: conversation,
		Assignment:   assignment,
		Reason:       req.Reason,
		Urgency:      models.Urgency(req.Urgency),
	})
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.EscalationResponse{
		Handoff:          result.Handoff,
		AlreadyEscalated: result.AlreadyEscalated,
	})
}

// Archive handles DELETE /tenants/{tenantId}/conversations/{conversationId}
// @Summary Archive a conversation
// @Description Marks the conversation archived; conversations are never deleted
// @Tags Conversations
// @Produce json
// @Param tenantId path string true "Tenant ID"
// @Param conversationId path string true "Conversation ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} middleware.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/autoreply-service/tenants/{tenantId}/conversations/{conversationId} [delete]
func (h *ConversationsHandler) Archive(c *gin.Context) {
	ctx := c.Request.Context()
	tenantCtx := middleware.GetTenantContext(c)

	conversation, err := h.db.Conversations().Get(ctx, tenantCtx.TenantID, tenantCtx.ConversationID)
	if err != nil {
		middleware.HandleError(c, domainerrors.NewInternalError("failed to load conversation", err))
		return
	}
	if conversation == nil {
		middleware.HandleError(c, domainerrors.NewNotFoundError("conversation", tenantCtx.ConversationID))
		return
	}

	if err := h.db.Conversations().Archive(ctx, tenantCtx.TenantID, tenantCtx.ConversationID); err != nil {
		middleware.HandleError(c, domainerrors.NewInternalError("failed to archive conversation", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "archived"})
}
