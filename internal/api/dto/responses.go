package dto

import (
	"github.com/omnidesk/autoreply-service/internal/domain/models"
)

// ProcessOutcomeResponse reports what the pipeline decided for one inbound
// message.
type ProcessOutcomeResponse struct {
	ConversationID   string  `json:"conversationId"`
	Stage            string  `json:"stage"`
	Sentiment        string  `json:"sentiment"`
	ShouldReply      bool    `json:"shouldReply"`
	Reply            string  `json:"reply,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`
	Provider         string  `json:"provider,omitempty"`
	Dispatched       bool    `json:"dispatched"`
	Escalated        bool    `json:"escalated"`
	EscalationReason string  `json:"escalationReason,omitempty"`
	SkipReason       string  `json:"skipReason,omitempty"`
}

// ConversationResponse is a conversation in API responses.
type ConversationResponse struct {
	Conversation *models.Conversation `json:"conversation"`
	Handoff      *models.Handoff      `json:"handoff,omitempty"`
}

// AssignmentResponse is an agent assignment in API responses.
type AssignmentResponse struct {
	Assignment *models.AgentAssignment `json:"assignment"`
}

// EscalationResponse reports the result of a forced escalation.
type EscalationResponse struct {
	Handoff          *models.Handoff `json:"handoff"`
	AlreadyEscalated bool            `json:"alreadyEscalated"`
}

// AgentPerformanceResponse holds the daily records for one agent.
type AgentPerformanceResponse struct {
	AgentID string                      `json:"agentId"`
	From    string                      `json:"from"`
	To      string                      `json:"to"`
	Records []*models.PerformanceRecord `json:"records"`
}
