package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omnidesk/autoreply-service/internal/domain/models"
)

// AssignmentsCollection implements docdb.AssignmentsCollection for MongoDB.
type AssignmentsCollection struct {
	coll *mongo.Collection
}

// NewAssignmentsCollection creates a new assignments collection wrapper.
func NewAssignmentsCollection(db *mongo.Database) *AssignmentsCollection {
	return &AssignmentsCollection{
		coll: db.Collection(AssignmentsCollectionName),
	}
}

// GetActive retrieves the single active assignment for a conversation.
func (c *AssignmentsCollection) GetActive(ctx context.Context, tenantID, conversationID string) (*models.AgentAssignment, error) {
	var assignment models.AgentAssignment
	err := c.coll.FindOne(ctx, bson.M{
		"tenantId":       tenantID,
		"conversationId": conversationID,
		"status":         models.AssignmentStatusActive,
	}).Decode(&assignment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active assignment: %w", err)
	}
	return &assignment, nil
}

// Create inserts a new assignment. The partial unique index on active
// assignments rejects a second active assignment for the same conversation.
func (c *AssignmentsCollection) Create(ctx context.Context, assignment *models.AgentAssignment) error {
	if assignment.ID == "" {
		return fmt.Errorf("assignment ID is required")
	}

	if _, err := c.coll.InsertOne(ctx, assignment); err != nil {
		return fmt.Errorf("failed to insert assignment: %w", err)
	}
	return nil
}

// DisableIfEnabled atomically disables auto-response on an assignment using
// compare-and-set semantics: the update filter requires the flag to still be
// enabled, so a concurrent disable wins exactly once.
func (c *AssignmentsCollection) DisableIfEnabled(ctx context.Context, tenantID, assignmentID, reason string) (bool, error) {
	result, err := c.coll.UpdateOne(
		ctx,
		bson.M{
			"_id":                 assignmentID,
			"tenantId":            tenantID,
			"autoResponseEnabled": true,
		},
		bson.M{"$set": bson.M{
			"autoResponseEnabled": false,
			"status":              models.AssignmentStatusDisabled,
			"escalationReason":    reason,
			"updatedAt":           time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to disable assignment: %w", err)
	}
	return result.ModifiedCount > 0, nil
}

// EnsureIndexes creates necessary indexes, including the partial unique index
// enforcing at most one active assignment per conversation.
func (c *AssignmentsCollection) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "conversationId", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.AssignmentStatusActive}),
		},
	}

	if _, err := c.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create assignment indexes: %w", err)
	}
	return nil
}
