// Package models contains domain models for the Omnidesk Auto-Reply Service.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Stage represents the coarse lifecycle position of a conversation.
type Stage string

const (
	// StageInitial is the stage of a freshly created conversation.
	StageInitial Stage = "initial"
	// StageEngaged indicates an ongoing back-and-forth with the customer.
	StageEngaged Stage = "engaged"
	// StageIssueIdentified indicates a complaint or problem was detected.
	StageIssueIdentified Stage = "issue_identified"
	// StageResolving indicates the conversation is trending positive after an issue.
	StageResolving Stage = "resolving"
	// StageResolved indicates the customer confirmed a resolution.
	StageResolved Stage = "resolved"
	// StageEscalated indicates the conversation was handed off to a human.
	// Only the escalation workflow sets this stage; only an explicit
	// reassignment clears it.
	StageEscalated Stage = "escalated"
)

// Sentiment represents the blended sentiment of a conversation.
type Sentiment string

const (
	// SentimentPositive indicates positive customer sentiment.
	SentimentPositive Sentiment = "positive"
	// SentimentNeutral indicates neutral customer sentiment.
	SentimentNeutral Sentiment = "neutral"
	// SentimentNegative indicates negative customer sentiment.
	SentimentNegative Sentiment = "negative"
)

// AgentType represents the kind of agent assigned to a conversation.
type AgentType string

const (
	// AgentTypeAI represents an automated agent.
	AgentTypeAI AgentType = "ai"
	// AgentTypeHuman represents a human agent.
	AgentTypeHuman AgentType = "human"
)

// MaxInboundSamples is the number of recent inbound messages retained on the
// conversation for stuck detection.
const MaxInboundSamples = 5

// Conversation represents one contact thread on one channel.
type Conversation struct {
	ID                string            `json:"id" bson:"_id"`
	TenantID          string            `json:"tenantId" bson:"tenantId"`
	UserID            string            `json:"userId" bson:"userId"`
	Channel           string            `json:"channel" bson:"channel"`
	Stage             Stage             `json:"stage" bson:"stage"`
	Sentiment         Sentiment         `json:"sentiment" bson:"sentiment"`
	SentimentScore    float64           `json:"sentimentScore" bson:"sentimentScore"`
	SatisfactionScore int               `json:"satisfactionScore,omitempty" bson:"satisfactionScore,omitempty"`
	InboundCount      int               `json:"inboundCount" bson:"inboundCount"`
	LastInteractionAt time.Time         `json:"lastInteractionAt" bson:"lastInteractionAt"`
	AssignedAgentID   string            `json:"assignedAgentId,omitempty" bson:"assignedAgentId,omitempty"`
	AssignedAgentType AgentType         `json:"assignedAgentType,omitempty" bson:"assignedAgentType,omitempty"`
	EscalationFlags   []string          `json:"escalationFlags,omitempty" bson:"escalationFlags,omitempty"`
	IsStuck           bool              `json:"isStuck" bson:"isStuck"`
	NeedsAssistance   bool              `json:"needsAssistance" bson:"needsAssistance"`
	Priority          string            `json:"priority,omitempty" bson:"priority,omitempty"`
	Tags              []string          `json:"tags,omitempty" bson:"tags,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`

	// RecentInbound holds the last few inbound message texts, oldest first.
	RecentInbound []string `json:"recentInbound,omitempty" bson:"recentInbound,omitempty"`

	CreatedAt  time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt" bson:"updatedAt"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty" bson:"archivedAt,omitempty"`
}

// NewConversation creates a conversation in its initial state.
func NewConversation(tenantID, userID, channel string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{
		ID:                uuid.NewString(),
		TenantID:          tenantID,
		UserID:            userID,
		Channel:           channel,
		Stage:             StageInitial,
		Sentiment:         SentimentNeutral,
		LastInteractionAt: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// IsEscalated returns true once the conversation has been handed off.
func (c *Conversation) IsEscalated() bool {
	return c.Stage == StageEscalated
}

// IsArchived returns true if the conversation has been archived.
func (c *Conversation) IsArchived() bool {
	return c.ArchivedAt != nil
}

// HasEscalationFlag reports whether the given reason is already recorded.
func (c *Conversation) HasEscalationFlag(reason string) bool {
	for _, f := range c.EscalationFlags {
		if f == reason {
			return true
		}
	}
	return false
}

// AddEscalationFlags unions the given reasons into the flag set.
func (c *Conversation) AddEscalationFlags(reasons []string) {
	for _, r := range reasons {
		if !c.HasEscalationFlag(r) {
			c.EscalationFlags = append(c.EscalationFlags, r)
		}
	}
}

// PushInboundSample appends an inbound message text to the recent ring,
// dropping the oldest entry beyond MaxInboundSamples.
func (c *Conversation) PushInboundSample(text string) {
	c.RecentInbound = append(c.RecentInbound, text)
	if len(c.RecentInbound) > MaxInboundSamples {
		c.RecentInbound = c.RecentInbound[len(c.RecentInbound)-MaxInboundSamples:]
	}
}

// Touch updates the interaction and modification timestamps.
func (c *Conversation) Touch() {
	now := time.Now().UTC()
	c.LastInteractionAt = now
	c.UpdatedAt = now
}

// Archive marks the conversation as archived. Conversations are never
// hard-deleted.
func (c *Conversation) Archive() {
	now := time.Now().UTC()
	c.ArchivedAt = &now
	c.UpdatedAt = now
}
