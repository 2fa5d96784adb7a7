// Package mocks provides testify mocks for the service interfaces, shared by
// the package tests.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/omnidesk/autoreply-service/internal/core/docdb"
	"github.com/omnidesk/autoreply-service/internal/domain/models"
)

// MockConversations is a mock implementation of docdb.ConversationsCollection.
type MockConversations struct {
	mock.Mock
}

func (m *MockConversations) Get(ctx context.Context, tenantID, conversationID string) (*models.Conversation, error) {
	args := m.Called(ctx, tenantID, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockConversations) Create(ctx context.Context, conversation *models.Conversation) error {
	args := m.Called(ctx, conversation)
	return args.Error(0)
}

func (m *MockConversations) Update(ctx context.Context, conversation *models.Conversation) error {
	args := m.Called(ctx, conversation)
	return args.Error(0)
}

func (m *MockConversations) Archive(ctx context.Context, tenantID, conversationID string) error {
	args := m.Called(ctx, tenantID, conversationID)
	return args.Error(0)
}

func (m *MockConversations) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockAssignments is a mock implementation of docdb.AssignmentsCollection.
type MockAssignments struct {
	mock.Mock
}

func (m *MockAssignments) GetActive(ctx context.Context, tenantID, conversationID string) (*models.AgentAssignment, error) {
	args := m.Called(ctx, tenantID, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AgentAssignment), args.Error(1)
}

func (m *MockAssignments) Create(ctx context.Context, assignment *models.AgentAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockAssignments) DisableIfEnabled(ctx context.Context, tenantID, assignmentID, reason string) (bool, error) {
	args := m.Called(ctx, tenantID, assignmentID, reason)
	return args.Bool(0), args.Error(1)
}

// MockInteractions is a mock implementation of docdb.InteractionsCollection.
type MockInteractions struct {
	mock.Mock
}

func (m *MockInteractions) Append(ctx context.Context, interaction *models.Interaction) error {
	args := m.Called(ctx, interaction)
	return args.Error(0)
}

func (m *MockInteractions) ListRecent(ctx context.Context, tenantID, conversationID string, limit int64) ([]*models.Interaction, error) {
	args := m.Called(ctx, tenantID, conversationID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Interaction), args.Error(1)
}

func (m *MockInteractions) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockPerformance is a mock implementation of docdb.PerformanceCollection.
type MockPerformance struct {
	mock.Mock
}

func (m *MockPerformance) Get(ctx context.Context, tenantID, agentID, date string) (*models.PerformanceRecord, error) {
	args := m.Called(ctx, tenantID, agentID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PerformanceRecord), args.Error(1)
}

func (m *MockPerformance) Save(ctx context.Context, record *models.PerformanceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPerformance) ListRange(ctx context.Context, tenantID, agentID string, from, to time.Time) ([]*models.PerformanceRecord, error) {
	args := m.Called(ctx, tenantID, agentID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PerformanceRecord), args.Error(1)
}

// MockHandoffs is a mock implementation of docdb.HandoffsCollection.
type MockHandoffs struct {
	mock.Mock
}

func (m *MockHandoffs) Create(ctx context.Context, handoff *models.Handoff) error {
	args := m.Called(ctx, handoff)
	return args.Error(0)
}

func (m *MockHandoffs) FindPending(ctx context.Context, tenantID, conversationID string) (*models.Handoff, error) {
	args := m.Called(ctx, tenantID, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Handoff), args.Error(1)
}

// MockDocDB bundles the collection mocks behind the docdb.Client interface.
type MockDocDB struct {
	mock.Mock
	ConversationsMock *MockConversations
	AssignmentsMock   *MockAssignments
	InteractionsMock  *MockInteractions
	PerformanceMock   *MockPerformance
	HandoffsMock      *MockHandoffs
}

// NewMockDocDB creates a client with fresh collection mocks.
func NewMockDocDB() *MockDocDB {
	return &MockDocDB{
		ConversationsMock: new(MockConversations),
		AssignmentsMock:   new(MockAssignments),
		InteractionsMock:  new(MockInteractions),
		PerformanceMock:   new(MockPerformance),
		HandoffsMock:      new(MockHandoffs),
	}
}

func (m *MockDocDB) Conversations() docdb.ConversationsCollection { return m.ConversationsMock }
func (m *MockDocDB) Assignments() docdb.AssignmentsCollection     { return m.AssignmentsMock }
func (m *MockDocDB) Interactions() docdb.InteractionsCollection   { return m.InteractionsMock }
func (m *MockDocDB) Performance() docdb.PerformanceCollection     { return m.PerformanceMock }
func (m *MockDocDB) Handoffs() docdb.HandoffsCollection           { return m.HandoffsMock }

func (m *MockDocDB) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDocDB) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDocDB) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// AssertExpectations asserts expectations on the client and all collections.
func (m *MockDocDB) AssertExpectations(t mock.TestingT) bool {
	ok := m.Mock.AssertExpectations(t)
	ok = m.ConversationsMock.AssertExpectations(t) && ok
	ok = m.AssignmentsMock.AssertExpectations(t) && ok
	ok = m.InteractionsMock.AssertExpectations(t) && ok
	ok = m.PerformanceMock.AssertExpectations(t) && ok
	ok = m.HandoffsMock.AssertExpectations(t) && ok
	return ok
}
