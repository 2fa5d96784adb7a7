package models

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus represents the lifecycle state of an agent assignment.
type AssignmentStatus string

const (
	// AssignmentStatusActive means the assignment currently owns the conversation.
	AssignmentStatusActive AssignmentStatus = "active"
	// AssignmentStatusDisabled means the assignment was retired, usually by an
	// escalation. Disabling is one-way; a new assignment must be created to
	// resume automated handling.
	AssignmentStatusDisabled AssignmentStatus = "disabled"
)

// AgentAssignment binds a conversation to exactly one responding agent.
// At most one active assignment exists per conversation.
type AgentAssignment struct {
	ID                  string           `json:"id" bson:"_id"`
	TenantID            string           `json:"tenantId" bson:"tenantId"`
	ConversationID      string           `json:"conversationId" bson:"conversationId"`
	AgentID             string           `json:"agentId" bson:"agentId"`
	AgentType           AgentType        `json:"agentType" bson:"agentType"`
	AutoResponseEnabled bool             `json:"autoResponseEnabled" bson:"autoResponseEnabled"`
	Status              AssignmentStatus `json:"status" bson:"status"`
	EscalationReason    string           `json:"escalationReason,omitempty" bson:"escalationReason,omitempty"`
	CreatedAt           time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time        `json:"updatedAt" bson:"updatedAt"`
}

// NewAgentAssignment creates an active assignment for the given agent.
func NewAgentAssignment(tenantID, conversationID, agentID string, agentType AgentType) *AgentAssignment {
	now := time.Now().UTC()
	return &AgentAssignment{
		ID:                  uuid.NewString(),
		TenantID:            tenantID,
		ConversationID:      conversationID,
		AgentID:             agentID,
		AgentType:           agentType,
		AutoResponseEnabled: agentType == AgentTypeAI,
		Status:              AssignmentStatusActive,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// CanAutoRespond reports whether this assignment permits automated replies.
func (a *AgentAssignment) CanAutoRespond() bool {
	return a != nil &&
		a.Status == AssignmentStatusActive &&
		a.AgentType == AgentTypeAI &&
		a.AutoResponseEnabled
}
