package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/omnidesk/autoreply-service/internal/domain/models"
)

// HandoffsCollection implements docdb.HandoffsCollection for MongoDB.
type HandoffsCollection struct {
	coll *mongo.Collection
}

// NewHandoffsCollection creates a new handoffs collection wrapper.
func NewHandoffsCollection(db *mongo.Database) *HandoffsCollection {
	return &HandoffsCollection{
		coll: db.Collection(HandoffsCollectionName),
	}
}

// Create inserts a new handoff record.
func (c *HandoffsCollection) Create(ctx context.Context, handoff *models.Handoff) error {
	if handoff.ID == "" {
		return fmt.Errorf("handoff ID is required")
	}

	if _, err := c.coll.InsertOne(ctx, handoff); err != nil {
		return fmt.Errorf("failed to insert handoff: %w", err)
	}
	return nil
}

// FindPending retrieves the pending handoff for a conversation, if any.
func (c *HandoffsCollection) FindPending(ctx context.Context, tenantID, conversationID string) (*models.Handoff, error) {
	var handoff models.Handoff
	err := c.coll.FindOne(ctx, bson.M{
		"tenantId":       tenantID,
		"conversationId": conversationID,
		"status":         models.HandoffPending,
	}).Decode(&handoff)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find pending handoff: %w", err)
	}
	return &handoff, nil
}

// EnsureIndexes creates necessary indexes for the collection.
func (c *HandoffsCollection) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "conversationId", Value: 1},
				{Key: "status", Value: 1},
			},
		},
	}

	if _, err := c.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create handoff indexes: %w", err)
	}
	return nil
}
