// Package mongodb provides MongoDB implementations of the docdb interfaces.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omnidesk/autoreply-service/internal/core/docdb"
)

// Collection names.
const (
	ConversationsCollectionName = "conversations"
	AssignmentsCollectionName   = "agent_assignments"
	InteractionsCollectionName  = "interactions"
	PerformanceCollectionName   = "performance_records"
	HandoffsCollectionName      = "handoffs"
)

// Client implements the docdb.Client interface for MongoDB.
type Client struct {
	client        *mongo.Client
	conversations *ConversationsCollection
	assignments   *AssignmentsCollection
	interactions  *InteractionsCollection
	performance   *PerformanceCollection
	handoffs      *HandoffsCollection
}

// ClientConfig holds MongoDB connection configuration.
type ClientConfig struct {
	URI          string
	DatabaseName string
}

// NewClient creates a new MongoDB client.
func NewClient(ctx context.Context, config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.URI == "" {
		return nil, fmt.Errorf("mongodb URI is required")
	}
	if config.DatabaseName == "" {
		return nil, fmt.Errorf("database name is required")
	}

	clientOpts := options.Client().ApplyURI(config.URI)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(config.DatabaseName)

	return &Client{
		client:        client,
		conversations: NewConversationsCollection(db),
		assignments:   NewAssignmentsCollection(db),
		interactions:  NewInteractionsCollection(db),
		performance:   NewPerformanceCollection(db),
		handoffs:      NewHandoffsCollection(db),
	}, nil
}

// Conversations returns the conversations collection.
func (c *Client) Conversations() docdb.ConversationsCollection {
	return c.conversations
}

// Assignments returns the agent assignments collection.
func (c *Client) Assignments() docdb.AssignmentsCollection {
	return c.assignments
}

// Interactions returns the interaction log collection.
func (c *Client) Interactions() docdb.InteractionsCollection {
	return c.interactions
}

// Performance returns the performance records collection.
func (c *Client) Performance() docdb.PerformanceCollection {
	return c.performance
}

// Handoffs returns the handoffs collection.
func (c *Client) Handoffs() docdb.HandoffsCollection {
	return c.handoffs
}

// EnsureIndexes creates all collection indexes.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	if err := c.conversations.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := c.assignments.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := c.interactions.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := c.performance.EnsureIndexes(ctx); err != nil {
		return err
	}
	return c.handoffs.EnsureIndexes(ctx)
}

// Ping verifies the connection to MongoDB.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	return nil
}

// Close disconnects the MongoDB client.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
