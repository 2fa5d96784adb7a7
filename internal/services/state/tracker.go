// Package state maintains the per-conversation state machine: stage
// transitions, blended sentiment, stuck detection and escalation triggers.
package state

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/omnidesk/autoreply-service/internal/core/docdb"
	"github.com/omnidesk/autoreply-service/internal/domain/models"
	"github.com/omnidesk/autoreply-service/internal/services/analyzer"
)

// Escalation trigger reasons returned by CheckEscalationTriggers.
const (
	TriggerRepeatedNegative = "repeated_negative_sentiment"
	TriggerHumanRequested   = "explicit_human_request"
	TriggerUrgentComplaint  = "urgent_complaint"
	TriggerStuck            = "conversation_stuck"
)

const (
	// Sentiment blending weights: prior state dominates so one message does
	// not whipsaw the conversation sentiment.
	priorWeight  = 0.7
	sampleWeight = 0.3

	// stuckSimilarityThreshold flags the customer repeating the same question.
	stuckSimilarityThreshold = 0.7

	// minStuckSamples is the minimum number of recent inbound messages before
	// stuck detection runs.
	minStuckSamples = 3

	// engagedAfterInbound is the inbound message count beyond which an initial
	// conversation is considered engaged.
	engagedAfterInbound = 2

	// repeatedNegativeScore is the blended score at or below which sustained
	// negativity triggers escalation.
	repeatedNegativeScore = -0.3
)

// Tracker implements the conversation state machine.
type Tracker struct {
	conversations docdb.ConversationsCollection
	logger        zerolog.Logger
}

// NewTracker creates a new Tracker.
func NewTracker(conversations docdb.ConversationsCollection, logger zerolog.Logger) *Tracker {
	return &Tracker{
		conversations: conversations,
		logger:        logger.With().Str("component", "state_tracker").Logger(),
	}
}

// UpdateRequest carries one message into the state machine.
type UpdateRequest struct {
	TenantID       string
	ConversationID string
	UserID         string
	Channel        string
	Text           string
	Direction      analyzer.Direction
}

// Update loads or initializes the conversation, folds the message into its
// state and persists the result. Outbound messages only refresh timestamps;
// all analysis runs on inbound messages. Update never sets the escalated
// stage; only the escalation workflow does that.
func (t *Tracker) Update(ctx context.Context, req UpdateRequest) (*models.Conversation, error) {
	conversation, err := t.conversations.Get(ctx, req.TenantID, req.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	created := false
	if conversation == nil {
		conversation = models.NewConversation(req.TenantID, req.UserID, req.Channel)
		conversation.ID = req.ConversationID
		created = true
	}

	if req.Direction == analyzer.DirectionInbound {
		analysis := analyzer.Analyze(req.Text, req.Direction)
		t.applyInbound(conversation, req.Text, analysis)

		triggers := CheckEscalationTriggers(conversation, analysis)
		conversation.AddEscalationFlags(triggers)
	}

	conversation.Touch()

	if created {
		if err := t.conversations.Create(ctx, conversation); err != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
		return conversation, nil
	}

	if err := t.conversations.Update(ctx, conversation); err != nil {
		return nil, fmt.Errorf("failed to persist conversation: %w", err)
	}
	return conversation, nil
}

// applyInbound folds one inbound message into the conversation state.
func (t *Tracker) applyInbound(c *models.Conversation, text string, analysis analyzer.Analysis) {
	c.InboundCount++
	c.PushInboundSample(text)

	// Exponential blend keeps sentiment stable across noisy single messages.
	c.SentimentScore = priorWeight*c.SentimentScore + sampleWeight*analysis.SentimentScore
	c.Sentiment = blendedSentiment(c.SentimentScore)

	c.IsStuck = detectStuck(c.RecentInbound)
	if analysis.RequiresHumanAttention {
		c.NeedsAssistance = true
	}

	c.Stage = nextStage(c.Stage, c, analysis)
}

// nextStage computes the stage transition for one inbound message. Transitions
// are monotonic; the escalated stage is owned by the escalation workflow and
// is never entered or left here.
func nextStage(current models.Stage, c *models.Conversation, analysis analyzer.Analysis) models.Stage {
	if current == models.StageEscalated {
		return current
	}

	switch current {
	case models.StageInitial:
		if analysis.IsComplaint {
			return models.StageIssueIdentified
		}
		if c.InboundCount > engagedAfterInbound {
			return models.StageEngaged
		}
	case models.StageIssueIdentified:
		if analysis.Sentiment == models.SentimentPositive {
			return models.StageResolving
		}
		if c.InboundCount > engagedAfterInbound {
			return models.StageEngaged
		}
	case models.StageResolving, models.StageEngaged:
		if analysis.IsCompliment {
			return models.StageResolved
		}
	}
	return current
}

// detectStuck compares the recent inbound messages pairwise; any pair above
// the similarity threshold means the customer is repeating themselves.
func detectStuck(samples []string) bool {
	if len(samples) < minStuckSamples {
		return false
	}
	for i := 0; i < len(samples); i++ {
		for j := i + 1; j < len(samples); j++ {
			if TokenOverlap(samples[i], samples[j]) >= stuckSimilarityThreshold {
				return true
			}
		}
	}
	return false
}

// CheckEscalationTriggers evaluates the conversation against the escalation
// heuristics and returns the set of reasons that currently apply. Callers
// union the result into the conversation's flag set.
func CheckEscalationTriggers(c *models.Conversation, analysis analyzer.Analysis) []string {
	var reasons []string

	if c.Sentiment == models.SentimentNegative &&
		c.SentimentScore <= repeatedNegativeScore &&
		c.InboundCount >= minStuckSamples {
		reasons = append(reasons, TriggerRepeatedNegative)
	}
	// Only the literal ask counts here; a negative urgent message without
	// one is the urgent_complaint case below.
	if analysis.HumanRequested {
		reasons = append(reasons, TriggerHumanRequested)
	}
	if analysis.IsComplaint && analysis.Urgency == analyzer.UrgencyHigh {
		reasons = append(reasons, TriggerUrgentComplaint)
	}
	if c.IsStuck {
		reasons = append(reasons, TriggerStuck)
	}

	return reasons
}

// Reassign binds the conversation to a new agent. This is the only path out
// of the escalated stage.
func (t *Tracker) Reassign(ctx context.Context, tenantID, conversationID, agentID string, agentType models.AgentType) (*models.Conversation, error) {
	conversation, err := t.conversations.Get(ctx, tenantID, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if conversation == nil {
		return nil, fmt.Errorf("conversation %s not found", conversationID)
	}

	wasEscalated := conversation.IsEscalated()

	conversation.AssignedAgentID = agentID
	conversation.AssignedAgentType = agentType
	if wasEscalated {
		conversation.Stage = models.StageEngaged
		conversation.EscalationFlags = nil
		conversation.NeedsAssistance = false
		conversation.IsStuck = false
		conversation.Priority = ""
	}
	conversation.Touch()

	if err := t.conversations.Update(ctx, conversation); err != nil {
		return nil, fmt.Errorf("failed to persist reassignment: %w", err)
	}

	t.logger.Info().
		Str("conversation_id", conversationID).
		Str("agent_id", agentID).
		Str("agent_type", string(agentType)).
		Bool("was_escalated", wasEscalated).
		Msg("conversation reassigned")

	return conversation, nil
}

func blendedSentiment(score float64) models.Sentiment {
	switch {
	case score > 0.15:
		return models.SentimentPositive
	case score < -0.15:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}
