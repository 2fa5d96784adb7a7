// Package escalation hands conversations off from automated to human handling.
package escalation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/omnidesk/autoreply-service/internal/core/docdb"
	"github.com/omnidesk/autoreply-service/internal/domain/models"
	"github.com/omnidesk/autoreply-service/internal/pkg/metrics"
)

// Request describes one escalation attempt.
type Request struct {
	TenantID        string
	Conversation    *models.Conversation
	Assignment      *models.AgentAssignment
	Reason          string
	Urgency         models.Urgency
	CustomerMessage string
}

// Result reports what the escalation did.
type Result struct {
	Handoff *models.Handoff
	// AlreadyEscalated is true when the conversation was escalated before this
	// call and the existing pending handoff was returned instead of a new one.
	AlreadyEscalated bool
}

// Workflow runs the escalation sequence: persist the conversation as
// escalated, disable the automated assignment, record a handoff, and notify
// the human queue. Escalating an already-escalated conversation is a no-op
// that returns the existing pending handoff.
type Workflow struct {
	db       docdb.Client
	notifier Notifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewWorkflow creates an escalation workflow.
func NewWorkflow(db docdb.Client, notifier Notifier, m *metrics.Metrics, logger zerolog.Logger) *Workflow {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Workflow{
		db:       db,
		notifier: notifier,
		metrics:  m,
		logger:   logger.With().Str("component", "escalation").Logger(),
	}
}

// Initiate escalates the conversation. The caller must hold the conversation
// lock and persist any prior conversation mutations before calling.
func (w *Workflow) Initiate(ctx context.Context, req *Request) (*Result, error) {
	conv := req.Conversation

	if conv.IsEscalated() {
		existing, err := w.db.Handoffs().FindPending(ctx, req.TenantID, conv.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up pending handoff: %w", err)
		}
		if existing != nil {
			w.logger.Debug().
				Str("conversation_id", conv.ID).
				Str("handoff_id", existing.ID).
				Msg("conversation already escalated, reusing pending handoff")
			return &Result{Handoff: existing, AlreadyEscalated: true}, nil
		}
		// Escalated stage without a pending handoff can happen if a prior
		// attempt failed between the stage write and the handoff insert.
		// Fall through and complete the escalation.
	}

	conv.Stage = models.StageEscalated
	conv.NeedsAssistance = true
	conv.Priority = "high"
	conv.AddEscalationFlags([]string{req.Reason})
	conv.Touch()
	if err := w.db.Conversations().Update(ctx, conv); err != nil {
		return nil, fmt.Errorf("failed to persist escalated conversation: %w", err)
	}

	var fromAgentID string
	if req.Assignment != nil {
		fromAgentID = req.Assignment.AgentID
		disabled, err := w.db.Assignments().DisableIfEnabled(ctx, req.TenantID, req.Assignment.ID, req.Reason)
		if err != nil {
			return nil, fmt.Errorf("failed to disable assignment: %w", err)
		}
		if disabled {
			req.Assignment.AutoResponseEnabled = false
			req.Assignment.Status = models.AssignmentStatusDisabled
			req.Assignment.EscalationReason = req.Reason
		}
	}

	handoff := models.NewHandoff(req.TenantID, conv.ID, fromAgentID, req.Reason, req.Urgency, req.CustomerMessage)
	if err := w.db.Handoffs().Create(ctx, handoff); err != nil {
		return nil, fmt.Errorf("failed to record handoff: %w", err)
	}

	if w.metrics != nil {
		w.metrics.Escalations.WithLabelValues(req.Reason).Inc()
	}
	w.logger.Info().
		Str("conversation_id", conv.ID).
		Str("handoff_id", handoff.ID).
		Str("reason", req.Reason).
		Str("urgency", string(handoff.Urgency)).
		Msg("conversation escalated to human queue")

	// Notification is best effort. The handoff record is the source of truth.
	if err := w.notifier.NotifyHandoff(ctx, handoff); err != nil {
		w.logger.Warn().Err(err).
			Str("handoff_id", handoff.ID).
			Msg("failed to notify human queue about handoff")
	}

	return &Result{Handoff: handoff}, nil
}
