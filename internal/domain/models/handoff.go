package models

import (
	"time"

	"github.com/google/uuid"
)

// Urgency classifies how quickly a human should pick up a handoff.
type Urgency string

const (
	// UrgencyHigh means the customer needs immediate attention.
	UrgencyHigh Urgency = "high"
	// UrgencyMedium is the default urgency.
	UrgencyMedium Urgency = "medium"
)

// HandoffStatus tracks a handoff through the human queue.
type HandoffStatus string

const (
	// HandoffPending means no human has claimed the conversation yet.
	HandoffPending HandoffStatus = "pending"
	// HandoffClaimed means a human agent took over.
	HandoffClaimed HandoffStatus = "claimed"
	// HandoffResolved means the handoff was closed out.
	HandoffResolved HandoffStatus = "resolved"
)

// Handoff is the durable record of an escalation from automated to human
// handling. It is the source of truth for the handoff; queue notification is
// best-effort on top of it.
type Handoff struct {
	ID              string        `json:"id" bson:"_id"`
	TenantID        string        `json:"tenantId" bson:"tenantId"`
	ConversationID  string        `json:"conversationId" bson:"conversationId"`
	FromAgentID     string        `json:"fromAgentId,omitempty" bson:"fromAgentId,omitempty"`
	Reason          string        `json:"reason" bson:"reason"`
	Urgency         Urgency       `json:"urgency" bson:"urgency"`
	CustomerMessage string        `json:"customerMessage,omitempty" bson:"customerMessage,omitempty"`
	Status          HandoffStatus `json:"status" bson:"status"`
	CreatedAt       time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// NewHandoff creates a pending handoff record.
func NewHandoff(tenantID, conversationID, fromAgentID, reason string, urgency Urgency, customerMessage string) *Handoff {
	if urgency == "" {
		urgency = UrgencyMedium
	}
	now := time.Now().UTC()
	return &Handoff{
		ID:              uuid.NewString(),
		TenantID:        tenantID,
		ConversationID:  conversationID,
		FromAgentID:     fromAgentID,
		Reason:          reason,
		Urgency:         urgency,
		CustomerMessage: customerMessage,
		Status:          HandoffPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
