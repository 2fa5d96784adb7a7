// Package orchestrator runs the auto-reply pipeline for inbound customer
// messages: assignment gating, state tracking, response generation,
// escalation and dispatch.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/omnidesk/autoreply-service/internal/config"
	"github.com/omnidesk/autoreply-service/internal/core/docdb"
	domainerrors "github.com/omnidesk/autoreply-service/internal/domain/errors"
	"github.com/omnidesk/autoreply-service/internal/domain/models"
	"github.com/omnidesk/autoreply-service/internal/pkg/keylock"
	"github.com/omnidesk/autoreply-service/internal/pkg/metrics"
	"github.com/omnidesk/autoreply-service/internal/services/analyzer"
	"github.com/omnidesk/autoreply-service/internal/services/analytics"
	"github.com/omnidesk/autoreply-service/internal/services/directory"
	"github.com/omnidesk/autoreply-service/internal/services/dispatch"
	"github.com/omnidesk/autoreply-service/internal/services/escalation"
	"github.com/omnidesk/autoreply-service/internal/services/generator"
	"github.com/omnidesk/autoreply-service/internal/services/state"
)

// escalateTimeout bounds the escalation writes independently of the pipeline
// deadline.
const escalateTimeout = 10 * time.Second

// Skip reasons reported on outcomes that produced no reply.
const (
	SkipNoAssignment     = "no_active_ai_assignment"
	SkipAutoDisabled     = "auto_response_disabled"
	SkipAlreadyEscalated = "already_escalated"
	SkipAssignmentStale  = "assignment_disabled_in_flight"
)

// Outcome reports what the pipeline decided for one inbound message.
type Outcome struct {
	Conversation     *models.Conversation     `json:"conversation"`
	Assignment       *models.AgentAssignment  `json:"assignment,omitempty"`
	Generation       *models.GenerationResult `json:"generation,omitempty"`
	Reply            *models.OutboundMessage  `json:"reply,omitempty"`
	ShouldReply      bool                     `json:"shouldReply"`
	Dispatched       bool                     `json:"dispatched"`
	Escalated        bool                     `json:"escalated"`
	EscalationReason string                   `json:"escalationReason,omitempty"`
	SkipReason       string                   `json:"skipReason,omitempty"`
}

// Orchestrator coordinates the auto-reply pipeline.
type Orchestrator struct {
	db         docdb.Client
	tracker    *state.Tracker
	directory  directory.Service
	generator  *generator.Generator
	escalation *escalation.Workflow
	analytics  *analytics.Aggregator
	sender     dispatch.Sender
	locks      *keylock.KeyedMutex
	cfg        config.OrchestratorConfig
	autoSend   bool
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// New creates the orchestrator.
func New(
	db docdb.Client,
	tracker *state.Tracker,
	dir directory.Service,
	gen *generator.Generator,
	esc *escalation.Workflow,
	agg *analytics.Aggregator,
	sender dispatch.Sender,
	cfg config.OrchestratorConfig,
	autoSend bool,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Orchestrator {
	if cfg.HistoryLimit == 0 {
		cfg.HistoryLimit = 10
	}
	if cfg.PipelineTimeout == 0 {
		cfg.PipelineTimeout = 15 * time.Second
	}
	return &Orchestrator{
		db:         db,
		tracker:    tracker,
		directory:  dir,
		generator:  gen,
		escalation: esc,
		analytics:  agg,
		sender:     sender,
		locks:      keylock.New(),
		cfg:        cfg,
		autoSend:   autoSend,
		metrics:    m,
		logger:     logger.With().Str("component", "orchestrator").Logger(),
	}
}

// ProcessIncoming runs the pipeline for one inbound customer message. State
// tracking runs for every message; generation only runs when an active AI
// assignment with auto-response enabled owns the conversation. The message is
// never silently dropped: when automated handling cannot answer, the
// conversation is escalated instead.
func (o *Orchestrator) ProcessIncoming(ctx context.Context, msg *models.IncomingMessage) (*Outcome, error) {
	if msg.TenantID == "" || msg.ConversationID == "" || msg.Content == "" {
		return nil, domainerrors.NewValidationError("invalid incoming message",
			"tenantId, conversationId and content are required")
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.PipelineTimeout)
	defer cancel()

	assignment, err := o.db.Assignments().GetActive(ctx, msg.TenantID, msg.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}

	unlock := o.locks.Lock(lockKey(msg.TenantID, msg.ConversationID))
	defer unlock()

	conversation, err := o.tracker.Update(ctx, state.UpdateRequest{
		TenantID:       msg.TenantID,
		ConversationID: msg.ConversationID,
		UserID:         msg.UserID,
		Channel:        msg.Platform,
		Text:           msg.Content,
		Direction:      analyzer.DirectionInbound,
	})
	if err != nil {
		return nil, err
	}

	o.trackReceived(ctx, msg, conversation, assignment)

	outcome := &Outcome{Conversation: conversation, Assignment: assignment}

	if !assignment.CanAutoRespond() {
		if assignment == nil {
			outcome.SkipReason = SkipNoAssignment
		} else {
			outcome.SkipReason = SkipAutoDisabled
		}
		o.observe(msg.Platform, "skipped")
		return outcome, nil
	}

	if conversation.IsEscalated() {
		outcome.SkipReason = SkipAlreadyEscalated
		o.observe(msg.Platform, "skipped")
		return outcome, nil
	}

	// State triggers escalate before any generation work.
	if len(conversation.EscalationFlags) > 0 {
		return o.escalate(ctx, msg, outcome, primaryTrigger(conversation.EscalationFlags),
			triggerUrgency(conversation.EscalationFlags))
	}

	result, err := o.generate(ctx, msg, conversation, assignment)
	if err != nil {
		if domainerrors.IsProviderFailure(err) || ctx.Err() != nil {
			o.logger.Warn().Err(err).
				Str("conversation_id", msg.ConversationID).
				Msg("generation failed, escalating to human queue")
			return o.escalate(ctx, msg, outcome, models.ReasonProviderFailure, models.UrgencyHigh)
		}
		o.observe(msg.Platform, "error")
		return nil, err
	}
	outcome.Generation = result

	if result.ShouldEscalate {
		urgency := models.UrgencyMedium
		if result.EscalationReason == models.ReasonEscalationKeyword {
			urgency = models.UrgencyHigh
		}
		return o.escalate(ctx, msg, outcome, result.EscalationReason, urgency)
	}

	outcome.ShouldReply = true
	outcome.Reply = &models.OutboundMessage{
		ConversationID: msg.ConversationID,
		Content:        result.Response,
		To:             msg.SenderID,
		From:           assignment.AgentID,
		Platform:       msg.Platform,
		SenderType:     models.SenderTypeAIAgent,
		Metadata: map[string]string{
			"provider":   result.Provider,
			"confidence": fmt.Sprintf("%.2f", result.Confidence),
		},
	}

	if o.autoSend {
		if err := o.SendAutoReply(ctx, msg, outcome); err != nil {
			o.observe(msg.Platform, "dispatch_failed")
			return outcome, err
		}
	}

	o.observe(msg.Platform, "replied")
	return outcome, nil
}

// SendAutoReply dispatches the generated reply. The assignment is re-read
// immediately before sending: a human takeover while generation was in flight
// discards the reply instead of racing the human.
func (o *Orchestrator) SendAutoReply(ctx context.Context, msg *models.IncomingMessage, outcome *Outcome) error {
	if outcome.Reply == nil {
		return domainerrors.NewValidationError("nothing to send", "outcome has no reply")
	}

	current, err := o.db.Assignments().GetActive(ctx, msg.TenantID, msg.ConversationID)
	if err != nil {
		return fmt.Errorf("failed to revalidate assignment: %w", err)
	}
	if !current.CanAutoRespond() || (outcome.Assignment != nil && current.ID != outcome.Assignment.ID) {
		outcome.ShouldReply = false
		outcome.SkipReason = SkipAssignmentStale
		o.logger.Info().
			Str("conversation_id", msg.ConversationID).
			Msg("assignment changed in flight, discarding generated reply")
		return nil
	}

	start := time.Now()
	if err := o.sender.Send(ctx, msg.UserID, outcome.Reply); err != nil {
		if o.metrics != nil {
			o.metrics.DispatchFailures.Inc()
		}
		return err
	}
	outcome.Dispatched = true

	sent := models.NewInteraction(msg.TenantID, msg.ConversationID, current.AgentID, models.InteractionMessageSent)
	sent.Content = outcome.Reply.Content
	sent.Metrics = models.InteractionMetrics{
		ResponseTimeMs: float64(time.Since(start).Milliseconds()),
		Provider:       outcome.Generation.Provider,
		Confidence:     outcome.Generation.Confidence,
		TokensUsed:     outcome.Generation.TokensUsed,
	}
	if err := o.analytics.TrackInteraction(ctx, sent); err != nil {
		o.logger.Warn().Err(err).
			Str("conversation_id", msg.ConversationID).
			Msg("failed to track sent message")
	}
	return nil
}

// generate resolves the agent profile and runs retrieval-grounded generation.
func (o *Orchestrator) generate(ctx context.Context, msg *models.IncomingMessage, conversation *models.Conversation, assignment *models.AgentAssignment) (*models.GenerationResult, error) {
	profile, err := o.directory.GetProfile(ctx, msg.TenantID, assignment.AgentID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve agent profile: %w", err)
	}
	if profile == nil {
		return nil, domainerrors.NewConfigurationError("agent not found",
			fmt.Sprintf("agent %s has no directory profile", assignment.AgentID))
	}

	history, err := o.history(ctx, msg.TenantID, msg.ConversationID)
	if err != nil {
		o.logger.Warn().Err(err).
			Str("conversation_id", msg.ConversationID).
			Msg("failed to load history, generating without it")
		history = nil
	}

	return o.generator.Generate(ctx, generator.Request{
		TenantID: msg.TenantID,
		UserID:   msg.UserID,
		Query:    msg.Content,
		History:  history,
		Agent:    profile,
		Tier:     profile.Tier,
	})
}

// history renders the recent interaction log as transcript lines, oldest
// first, bounded by the configured limit.
func (o *Orchestrator) history(ctx context.Context, tenantID, conversationID string) ([]string, error) {
	interactions, err := o.db.Interactions().ListRecent(ctx, tenantID, conversationID, o.cfg.HistoryLimit)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(interactions))
	for _, it := range interactions {
		if it.Content == "" {
			continue
		}
		switch it.Kind {
		case models.InteractionMessageReceived:
			lines = append(lines, "Customer: "+it.Content)
		case models.InteractionMessageSent:
			lines = append(lines, "Agent: "+it.Content)
		}
	}
	return lines, nil
}

// escalate runs the handoff workflow and records the escalation interaction.
// The pipeline deadline does not apply here: a hung provider can spend the
// whole budget, and the escalation writes must still land.
func (o *Orchestrator) escalate(ctx context.Context, msg *models.IncomingMessage, outcome *Outcome, reason string, urgency models.Urgency) (*Outcome, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), escalateTimeout)
	defer cancel()

	result, err := o.escalation.Initiate(ctx, &escalation.Request{
		TenantID:        msg.TenantID,
		Conversation:    outcome.Conversation,
		Assignment:      outcome.Assignment,
		Reason:          reason,
		Urgency:         urgency,
		CustomerMessage: msg.Content,
	})
	if err != nil {
		o.observe(msg.Platform, "error")
		return nil, err
	}

	outcome.Escalated = true
	outcome.EscalationReason = reason

	if !result.AlreadyEscalated {
		var agentID string
		if outcome.Assignment != nil {
			agentID = outcome.Assignment.AgentID
		}
		interaction := models.NewInteraction(msg.TenantID, msg.ConversationID, agentID, models.InteractionEscalation)
		interaction.Extra = map[string]string{"reason": reason, "urgency": string(urgency)}
		if err := o.analytics.TrackInteraction(ctx, interaction); err != nil {
			o.logger.Warn().Err(err).
				Str("conversation_id", msg.ConversationID).
				Msg("failed to track escalation")
		}
	}

	o.observe(msg.Platform, "escalated")
	return outcome, nil
}

// trackReceived logs the inbound message; failures are logged, not fatal.
func (o *Orchestrator) trackReceived(ctx context.Context, msg *models.IncomingMessage, conversation *models.Conversation, assignment *models.AgentAssignment) {
	var agentID string
	if assignment != nil {
		agentID = assignment.AgentID
	}
	received := models.NewInteraction(msg.TenantID, msg.ConversationID, agentID, models.InteractionMessageReceived)
	received.Content = msg.Content
	received.Metrics.NewConversation = conversation.InboundCount == 1
	if err := o.analytics.TrackInteraction(ctx, received); err != nil {
		o.logger.Warn().Err(err).
			Str("conversation_id", msg.ConversationID).
			Msg("failed to track received message")
	}
}

func (o *Orchestrator) observe(platform, outcome string) {
	if o.metrics != nil {
		o.metrics.MessagesProcessed.WithLabelValues(platform, outcome).Inc()
	}
}

func lockKey(tenantID, conversationID string) string {
	return tenantID + ":" + conversationID
}

// primaryTrigger picks the reason reported on the handoff when several state
// triggers fired at once. More actionable triggers win.
func primaryTrigger(flags []string) string {
	priority := []string{
		state.TriggerHumanRequested,
		state.TriggerUrgentComplaint,
		state.TriggerRepeatedNegative,
		state.TriggerStuck,
	}
	for _, p := range priority {
		for _, f := range flags {
			if f == p {
				return p
			}
		}
	}
	return flags[0]
}

func triggerUrgency(flags []string) models.Urgency {
	for _, f := range flags {
		if f == state.TriggerUrgentComplaint || f == state.TriggerHumanRequested {
			return models.UrgencyHigh
		}
	}
	return models.UrgencyMedium
}
