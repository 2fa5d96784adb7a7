package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tmc/langchaingo/llms"

	"github.com/omnidesk/autoreply-service/internal/domain/models"
	"github.com/omnidesk/autoreply-service/internal/services/knowledge"
)

// MockCache is a mock implementation of cache.Cache.
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) DeletePattern(ctx context.Context, pattern string) (int64, error) {
	args := m.Called(ctx, pattern)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockSearcher is a mock implementation of knowledge.Searcher.
type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) Search(ctx context.Context, req knowledge.SearchRequest) ([]models.KnowledgeContext, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.KnowledgeContext), args.Error(1)
}

// MockDirectory is a mock implementation of directory.Service.
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) GetProfile(ctx context.Context, tenantID, agentID string) (*models.AgentProfile, error) {
	args := m.Called(ctx, tenantID, agentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AgentProfile), args.Error(1)
}

// MockSender is a mock implementation of dispatch.Sender.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, userID string, msg *models.OutboundMessage) error {
	args := m.Called(ctx, userID, msg)
	return args.Error(0)
}

// MockNotifier is a mock implementation of escalation.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyHandoff(ctx context.Context, handoff *models.Handoff) error {
	args := m.Called(ctx, handoff)
	return args.Error(0)
}

// MockLLM is a mock implementation of llms.Model.
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llms.ContentResponse), args.Error(1)
}

func (m *MockLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}
