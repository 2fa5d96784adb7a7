package models

// IncomingMessage is the contract consumed from the webhook/channel-adapter
// layer. Channel-specific parsing happens upstream; by the time a message
// reaches the orchestrator it is normalized to this shape.
type IncomingMessage struct {
	ConversationID string            `json:"conversationId"`
	TenantID       string            `json:"tenantId"`
	UserID         string            `json:"userId"`
	Content        string            `json:"content"`
	Platform       string            `json:"platform"`
	SenderID       string            `json:"senderId"`
	CustomerInfo   map[string]string `json:"customerInfo,omitempty"`
}

// SenderTypeAIAgent marks outbound messages dispatched by an automated agent.
const SenderTypeAIAgent = "ai_agent"

// OutboundMessage is the contract handed to the channel-adapter layer for
// dispatch.
type OutboundMessage struct {
	ConversationID string            `json:"conversationId"`
	Content        string            `json:"content"`
	To             string            `json:"to"`
	From           string            `json:"from"`
	Platform       string            `json:"platform"`
	SenderType     string            `json:"senderType"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}
