package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/omnidesk/autoreply-service/internal/domain/models"
)

// ConversationsCollection implements docdb.ConversationsCollection for MongoDB.
type ConversationsCollection struct {
	coll *mongo.Collection
}

// NewConversationsCollection creates a new conversations collection wrapper.
func NewConversationsCollection(db *mongo.Database) *ConversationsCollection {
	return &ConversationsCollection{
		coll: db.Collection(ConversationsCollectionName),
	}
}

// Get retrieves a conversation by ID within a tenant.
func (c *ConversationsCollection) Get(ctx context.Context, tenantID, conversationID string) (*models.Conversation, error) {
	var conversation models.Conversation
	err := c.coll.FindOne(ctx, bson.M{"_id": conversationID, "tenantId": tenantID}).Decode(&conversation)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conversation, nil
}

// Create inserts a new conversation.
func (c *ConversationsCollection) Create(ctx context.Context, conversation *models.Conversation) error {
	if conversation.ID == "" {
		return fmt.Errorf("conversation ID is required")
	}

	if _, err := c.coll.InsertOne(ctx, conversation); err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	return nil
}

// Update replaces the stored conversation state.
func (c *ConversationsCollection) Update(ctx context.Context, conversation *models.Conversation) error {
	conversation.UpdatedAt = time.Now().UTC()

	result, err := c.coll.ReplaceOne(
		ctx,
		bson.M{"_id": conversation.ID, "tenantId": conversation.TenantID},
		conversation,
	)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("conversation %s not found", conversation.ID)
	}
	return nil
}

// Archive marks a conversation archived.
func (c *ConversationsCollection) Archive(ctx context.Context, tenantID, conversationID string) error {
	now := time.Now().UTC()
	result, err := c.coll.UpdateOne(
		ctx,
		bson.M{"_id": conversationID, "tenantId": tenantID},
		bson.M{"$set": bson.M{"archivedAt": now, "updatedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to archive conversation: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("conversation %s not found", conversationID)
	}
	return nil
}

// EnsureIndexes creates necessary indexes for the collection.
func (c *ConversationsCollection) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "userId", Value: 1},
				{Key: "channel", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "lastInteractionAt", Value: -1},
			},
		},
	}

	if _, err := c.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create conversation indexes: %w", err)
	}
	return nil
}
