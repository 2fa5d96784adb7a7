// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// IncomingMessageRequest is the webhook payload for an inbound customer
// message, normalized by the channel adapters.
type IncomingMessageRequest struct {
	ConversationID string            `json:"conversationId" binding:"required"`
	UserID         string            `json:"userId" binding:"required"`
	Content        string            `json:"content" binding:"required,min=1,max=32000"`
	Platform       string            `json:"platform" binding:"required"`
	SenderID       string            `json:"senderId"`
	CustomerInfo   map[string]string `json:"customerInfo,omitempty"`
}

// AssignAgentRequest creates an agent assignment for a conversation.
type AssignAgentRequest struct {
	AgentID   string `json:"agentId" binding:"required"`
	AgentType string `json:"agentType" binding:"required,oneof=ai human"`
}

// ReassignRequest rebinds a conversation to a different agent. This is the
// only path out of the escalated stage.
type ReassignRequest struct {
	AgentID   string `json:"agentId" binding:"required"`
	AgentType string `json:"agentType" binding:"required,oneof=ai human"`
}

// EscalateRequest forces an escalation from the operator UI.
type EscalateRequest struct {
	Reason  string `json:"reason" binding:"required"`
	Urgency string `json:"urgency" binding:"omitempty,oneof=high medium"`
}

// PerformanceQuery bounds an analytics read.
type PerformanceQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}
