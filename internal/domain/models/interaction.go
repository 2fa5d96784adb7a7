package models

import (
	"time"

	"github.com/google/uuid"
)

// InteractionKind tags an entry in the append-only interaction log.
type InteractionKind string

const (
	// InteractionMessageSent records an automated reply dispatched to a customer.
	InteractionMessageSent InteractionKind = "message_sent"
	// InteractionMessageReceived records an inbound customer message.
	InteractionMessageReceived InteractionKind = "message_received"
	// InteractionEscalation records a handoff to a human agent.
	InteractionEscalation InteractionKind = "escalation"
	// InteractionLeadCaptured records a captured lead.
	InteractionLeadCaptured InteractionKind = "lead_captured"
	// InteractionResolution records a resolved conversation.
	InteractionResolution InteractionKind = "resolution"
)

// InteractionMetrics holds the typed measurements attached to an interaction.
// Zero values mean "not measured" and are skipped by the aggregator.
type InteractionMetrics struct {
	ResponseTimeMs  float64 `json:"responseTimeMs,omitempty" bson:"responseTimeMs,omitempty"`
	Satisfaction    float64 `json:"satisfaction,omitempty" bson:"satisfaction,omitempty"`
	TokensUsed      int     `json:"tokensUsed,omitempty" bson:"tokensUsed,omitempty"`
	Provider        string  `json:"provider,omitempty" bson:"provider,omitempty"`
	Confidence      float64 `json:"confidence,omitempty" bson:"confidence,omitempty"`
	NewConversation bool    `json:"newConversation,omitempty" bson:"newConversation,omitempty"`
}

// Interaction is one entry in the append-only interaction log. Known event
// kinds carry typed metric fields; anything else goes in Extra.
type Interaction struct {
	ID             string             `json:"id" bson:"_id"`
	TenantID       string             `json:"tenantId" bson:"tenantId"`
	ConversationID string             `json:"conversationId" bson:"conversationId"`
	AgentID        string             `json:"agentId,omitempty" bson:"agentId,omitempty"`
	Kind           InteractionKind    `json:"kind" bson:"kind"`
	Content        string             `json:"content,omitempty" bson:"content,omitempty"`
	Metrics        InteractionMetrics `json:"metrics" bson:"metrics"`
	Extra          map[string]string  `json:"extra,omitempty" bson:"extra,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}

// NewInteraction creates an interaction log entry.
func NewInteraction(tenantID, conversationID, agentID string, kind InteractionKind) *Interaction {
	return &Interaction{
		ID:             uuid.NewString(),
		TenantID:       tenantID,
		ConversationID: conversationID,
		AgentID:        agentID,
		Kind:           kind,
		CreatedAt:      time.Now().UTC(),
	}
}
