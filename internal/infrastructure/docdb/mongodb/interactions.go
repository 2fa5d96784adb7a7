package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omnidesk/autoreply-service/internal/domain/models"
)

// InteractionsCollection implements docdb.InteractionsCollection for MongoDB.
type InteractionsCollection struct {
	coll *mongo.Collection
}

// NewInteractionsCollection creates a new interactions collection wrapper.
func NewInteractionsCollection(db *mongo.Database) *InteractionsCollection {
	return &InteractionsCollection{
		coll: db.Collection(InteractionsCollectionName),
	}
}

// Append writes one interaction log entry. The log is append-only; there are
// no update or delete operations.
func (c *InteractionsCollection) Append(ctx context.Context, interaction *models.Interaction) error {
	if interaction.ID == "" {
		return fmt.Errorf("interaction ID is required")
	}

	if _, err := c.coll.InsertOne(ctx, interaction); err != nil {
		return fmt.Errorf("failed to append interaction: %w", err)
	}
	return nil
}

// ListRecent returns the most recent interactions for a conversation in
// chronological order.
func (c *InteractionsCollection) ListRecent(ctx context.Context, tenantID, conversationID string, limit int64) ([]*models.Interaction, error) {
	filter := bson.M{
		"tenantId":       tenantID,
		"conversationId": conversationID,
	}

	// Fetch newest-first bounded by limit, then reverse to chronological.
	findOpts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(limit)

	cursor, err := c.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions: %w", err)
	}
	defer cursor.Close(ctx)

	var interactions []*models.Interaction
	if err := cursor.All(ctx, &interactions); err != nil {
		return nil, fmt.Errorf("failed to decode interactions: %w", err)
	}

	for i, j := 0, len(interactions)-1; i < j; i, j = i+1, j-1 {
		interactions[i], interactions[j] = interactions[j], interactions[i]
	}
	return interactions, nil
}

// EnsureIndexes creates necessary indexes for the collection.
func (c *InteractionsCollection) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "conversationId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "agentId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
	}

	if _, err := c.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create interaction indexes: %w", err)
	}
	return nil
}
