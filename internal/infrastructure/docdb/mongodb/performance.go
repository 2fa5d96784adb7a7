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

// PerformanceCollection implements docdb.PerformanceCollection for MongoDB.
type PerformanceCollection struct {
	coll *mongo.Collection
}

// NewPerformanceCollection creates a new performance collection wrapper.
func NewPerformanceCollection(db *mongo.Database) *PerformanceCollection {
	return &PerformanceCollection{
		coll: db.Collection(PerformanceCollectionName),
	}
}

// Get retrieves the record for one (agent, day).
func (c *PerformanceCollection) Get(ctx context.Context, tenantID, agentID, date string) (*models.PerformanceRecord, error) {
	var record models.PerformanceRecord
	err := c.coll.FindOne(ctx, bson.M{
		"_id": models.PerformanceRecordID(tenantID, agentID, date),
	}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get performance record: %w", err)
	}
	return &record, nil
}

// Save upserts a daily record by its deterministic ID.
func (c *PerformanceCollection) Save(ctx context.Context, record *models.PerformanceRecord) error {
	if record.ID == "" {
		return fmt.Errorf("performance record ID is required")
	}

	record.UpdatedAt = time.Now().UTC()

	_, err := c.coll.ReplaceOne(
		ctx,
		bson.M{"_id": record.ID},
		record,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save performance record: %w", err)
	}
	return nil
}

// ListRange returns records for a date range, optionally filtered by agent.
func (c *PerformanceCollection) ListRange(ctx context.Context, tenantID, agentID string, from, to time.Time) ([]*models.PerformanceRecord, error) {
	filter := bson.M{
		"tenantId": tenantID,
		"date": bson.M{
			"$gte": from.UTC().Format(models.PerformanceDateLayout),
			"$lte": to.UTC().Format(models.PerformanceDateLayout),
		},
	}
	if agentID != "" {
		filter["agentId"] = agentID
	}

	cursor, err := c.coll.Find(ctx, filter, options.Find().SetSort(bson.M{"date": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list performance records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*models.PerformanceRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode performance records: %w", err)
	}
	return records, nil
}

// EnsureIndexes creates necessary indexes for the collection.
func (c *PerformanceCollection) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "agentId", Value: 1},
				{Key: "date", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := c.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create performance indexes: %w", err)
	}
	return nil
}
