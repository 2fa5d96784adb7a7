// Package docdb defines the document database interfaces the service
// persists through. Implementations live under internal/infrastructure.
package docdb

import (
	"context"
	"time"

	"github.com/omnidesk/autoreply-service/internal/domain/models"
)

// ConversationsCollection defines conversation persistence operations.
type ConversationsCollection interface {
	// Get retrieves a conversation by ID within a tenant.
	// Returns (nil, nil) if the conversation does not exist.
	Get(ctx context.Context, tenantID, conversationID string) (*models.Conversation, error)

	// Create inserts a new conversation.
	Create(ctx context.Context, conversation *models.Conversation) error

	// Update replaces the stored conversation state.
	Update(ctx context.Context, conversation *models.Conversation) error

	// Archive marks a conversation archived. Conversations are never deleted.
	Archive(ctx context.Context, tenantID, conversationID string) error

	// EnsureIndexes creates necessary indexes for the collection.
	EnsureIndexes(ctx context.Context) error
}

// AssignmentsCollection defines agent assignment persistence operations.
type AssignmentsCollection interface {
	// GetActive retrieves the single active assignment for a conversation.
	// Returns (nil, nil) if there is none.
	GetActive(ctx context.Context, tenantID, conversationID string) (*models.AgentAssignment, error)

	// Create inserts a new assignment.
	Create(ctx context.Context, assignment *models.AgentAssignment) error

	// DisableIfEnabled atomically disables auto-response on an assignment,
	// but only if it is still enabled (compare-and-set). Returns true if this
	// call performed the disable, false if it was already disabled.
	DisableIfEnabled(ctx context.Context, tenantID, assignmentID, reason string) (bool, error)
}

// InteractionsCollection defines the append-only interaction log.
type InteractionsCollection interface {
	// Append writes one interaction log entry.
	Append(ctx context.Context, interaction *models.Interaction) error

	// ListRecent returns the most recent interactions for a conversation in
	// chronological order (oldest first), bounded by limit.
	ListRecent(ctx context.Context, tenantID, conversationID string, limit int64) ([]*models.Interaction, error)

	// EnsureIndexes creates necessary indexes for the collection.
	EnsureIndexes(ctx context.Context) error
}

// PerformanceCollection defines daily performance record persistence.
type PerformanceCollection interface {
	// Get retrieves the record for one (agent, day). Returns (nil, nil) if the
	// day has no record yet.
	Get(ctx context.Context, tenantID, agentID, date string) (*models.PerformanceRecord, error)

	// Save upserts a daily record by its deterministic ID.
	Save(ctx context.Context, record *models.PerformanceRecord) error

	// ListRange returns records for a date range. agentID may be empty to
	// list across all agents in the tenant.
	ListRange(ctx context.Context, tenantID, agentID string, from, to time.Time) ([]*models.PerformanceRecord, error)
}

// HandoffsCollection defines handoff record persistence.
type HandoffsCollection interface {
	// Create inserts a new handoff record.
	Create(ctx context.Context, handoff *models.Handoff) error

	// FindPending retrieves the pending handoff for a conversation, if any.
	// Returns (nil, nil) if there is none.
	FindPending(ctx context.Context, tenantID, conversationID string) (*models.Handoff, error)
}

// Client is the top-level handle over all collections.
type Client interface {
	Conversations() ConversationsCollection
	Assignments() AssignmentsCollection
	Interactions() InteractionsCollection
	Performance() PerformanceCollection
	Handoffs() HandoffsCollection

	// EnsureIndexes creates all collection indexes.
	EnsureIndexes(ctx context.Context) error

	// Ping verifies the database connection.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
