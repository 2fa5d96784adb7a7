// Package generator_test provides tests for the response generator.
package generator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	domainerrors "github.com/omnidesk/autoreply-service/internal/domain/errors"
	"github.com/omnidesk/autoreply-service/internal/domain/models"
	"github.com/omnidesk/autoreply-service/internal/mocks"
	"github.com/omnidesk/autoreply-service/internal/pkg/metrics"
	"github.com/omnidesk/autoreply-service/internal/services/generator"
	"github.com/omnidesk/autoreply-service/internal/services/llm"
)

func trainedAgent() *models.AgentProfile {
	return &models.AgentProfile{
		ID:                 "agent-1",
		Name:               "Ava",
		Tone:               "friendly",
		KnowledgeSourceIDs: []string{"kb-1"},
		Tier:               models.TierPro,
	}
}

func goodContexts() []models.KnowledgeContext {
	return []models.KnowledgeContext{
		{Content: "Our premium plan includes priority support and unlimited seats", Source: "pricing.md", Similarity: 0.91},
		{Content: "Billing runs on the first day of each month", Source: "billing.md", Similarity: 0.85},
	}
}

func modelAnswering(text string) *mocks.MockLLM {
	model := new(mocks.MockLLM)
	model.On("GenerateContent", mock.Anything, mock.Anything).Return(&llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: text}},
	}, nil)
	return model
}

func newGenerator(t *testing.T, retriever *mocks.MockSearcher, model llms.Model) *generator.Generator {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry())

	cache := new(mocks.MockCache)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, nil)
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	router, err := llm.NewRouter(llm.RouterConfig{
		Providers: []llm.Provider{
			{Name: "openai", Model: model, ConfidenceBaseline: 0.85, Tiers: []models.Tier{models.TierFree, models.TierPro}},
		},
	}, cache, m, zerolog.Nop())
	require.NoError(t, err)

	return generator.New(retriever, router, generator.DefaultConfig(), m, zerolog.Nop())
}

// TestGenerate_UntrainedAgentShortCircuits tests that an agent without
// knowledge sources yields AGENT_NEEDS_TRAINING without any provider call.
func TestGenerate_UntrainedAgentShortCircuits(t *testing.T) {
	retriever := new(mocks.MockSearcher)
	model := new(mocks.MockLLM)
	gen := newGenerator(t, retriever, model)

	agent := trainedAgent()
	agent.KnowledgeSourceIDs = nil

	result, err := gen.Generate(context.Background(), generator.Request{
		TenantID: "tenant-1",
		Query:    "How much is the premium plan?",
		Agent:    agent,
		Tier:     models.TierPro,
	})

	require.NoError(t, err)
	assert.True(t, result.ShouldEscalate)
	assert.Equal(t, models.ReasonAgentNeedsTraining, result.EscalationReason)
	model.AssertNotCalled(t, "GenerateContent")
	retriever.AssertNotCalled(t, "Search")
}

// TestGenerate_GroundedAnswer tests the happy path: good contexts, grounded
// response, confident verdict.
func TestGenerate_GroundedAnswer(t *testing.T) {
	retriever := new(mocks.MockSearcher)
	retriever.On("Search", mock.Anything, mock.Anything).Return(goodContexts(), nil)

	model := modelAnswering("Based on our pricing, the premium plan includes priority support and unlimited seats for your whole team.")
	gen := newGenerator(t, retriever, model)

	result, err := gen.Generate(context.Background(), generator.Request{
		TenantID: "tenant-1",
		Query:    "What does the premium plan include?",
		Agent:    trainedAgent(),
		Tier:     models.TierPro,
	})

	require.NoError(t, err)
	assert.False(t, result.ShouldEscalate)
	assert.Equal(t, "openai", result.Provider)
	// Baseline 0.85 plus the grounding bonus.
	assert.InDelta(t, 0.95, result.Confidence, 0.001)
}

// TestGenerate_EscalationKeywordOverridesConfidence tests that a keyword in
// the customer query forces escalation even with a confident answer.
func TestGenerate_EscalationKeywordOverridesConfidence(t *testing.T) {
	retriever := new(mocks.MockSearcher)
	retriever.On("Search", mock.Anything, mock.Anything).Return(goodContexts(), nil)

	model := modelAnswering("Based on our refund policy you can request one within thirty days of purchase.")
	gen := newGenerator(t, retriever, model)

	result, err := gen.Generate(context.Background(), generator.Request{
		TenantID: "tenant-1",
		Query:    "I want a refund right now",
		Agent:    trainedAgent(),
		Tier:     models.TierPro,
	})

	require.NoError(t, err)
	assert.True(t, result.ShouldEscalate)
	assert.Equal(t, models.ReasonEscalationKeyword, result.EscalationReason)
}

// TestGenerate_NoContextsEscalates tests that zero retrieved snippets yield
// NO_RELEVANT_KNOWLEDGE.
func TestGenerate_NoContextsEscalates(t *testing.T) {
	retriever := new(mocks.MockSearcher)
	retriever.On("Search", mock.Anything, mock.Anything).Return([]models.KnowledgeContext{}, nil)

	model := modelAnswering("Here is a long and confident sounding answer that nothing in the knowledge base supports at all.")
	gen := newGenerator(t, retriever, model)

	result, err := gen.Generate(context.Background(), generator.Request{
		TenantID: "tenant-1",
		Query:    "Do you ship to Antarctica?",
		Agent:    trainedAgent(),
		Tier:     models.TierPro,
	})

	require.NoError(t, err)
	assert.True(t, result.ShouldEscalate)
	assert.Equal(t, models.ReasonNoRelevantKnowledge, result.EscalationReason)
}

// TestGenerate_RetrievalFailureDegrades tests that a failed retrieval call
// degrades to zero contexts instead of erroring.
func TestGenerate_RetrievalFailureDegrades(t *testing.T) {
	retriever := new(mocks.MockSearcher)
	retriever.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	model := modelAnswering("An answer produced without any knowledge grounding behind it whatsoever.")
	gen := newGenerator(t, retriever, model)

	result, err := gen.Generate(context.Background(), generator.Request{
		TenantID: "tenant-1",
		Query:    "Do you offer an on-premise version?",
		Agent:    trainedAgent(),
		Tier:     models.TierPro,
	})

	require.NoError(t, err)
	assert.True(t, result.ShouldEscalate)
	assert.Equal(t, models.ReasonNoRelevantKnowledge, result.EscalationReason)
}

// TestGenerate_HedgingResponseEscalates tests that uncertainty markers in the
// generated text yield UNCERTAIN_RESPONSE.
func TestGenerate_HedgingResponseEscalates(t *testing.T) {
	retriever := new(mocks.MockSearcher)
	retriever.On("Search", mock.Anything, mock.Anything).Return(goodContexts(), nil)

	model := modelAnswering("I'm not sure about that, the documentation may have details I cannot see.")
	gen := newGenerator(t, retriever, model)

	result, err := gen.Generate(context.Background(), generator.Request{
		TenantID: "tenant-1",
		Query:    "What does the premium plan include?",
		Agent:    trainedAgent(),
		Tier:     models.TierPro,
	})

	require.NoError(t, err)
	assert.True(t, result.ShouldEscalate)
	assert.Equal(t, models.ReasonUncertainResponse, result.EscalationReason)
}

// TestGenerate_ProviderFailureSurfaces tests that a failed invocation (after
// fallback) surfaces as a provider failure for the orchestrator to handle.
func TestGenerate_ProviderFailureSurfaces(t *testing.T) {
	retriever := new(mocks.MockSearcher)
	retriever.On("Search", mock.Anything, mock.Anything).Return(goodContexts(), nil)

	model := new(mocks.MockLLM)
	model.On("GenerateContent", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))
	gen := newGenerator(t, retriever, model)

	_, err := gen.Generate(context.Background(), generator.Request{
		TenantID: "tenant-1",
		Query:    "What does the premium plan include?",
		Agent:    trainedAgent(),
		Tier:     models.TierPro,
	})

	require.Error(t, err)
	assert.True(t, domainerrors.IsProviderFailure(err))
}

// TestGenerate_ConfidenceStaysInBounds tests clamping on a short hedging
// answer with no grounding.
func TestGenerate_ConfidenceStaysInBounds(t *testing.T) {
	retriever := new(mocks.MockSearcher)
	retriever.On("Search", mock.Anything, mock.Anything).Return(goodContexts(), nil)

	model := modelAnswering("I don't know")
	gen := newGenerator(t, retriever, model)

	result, err := gen.Generate(context.Background(), generator.Request{
		TenantID: "tenant-1",
		Query:    "What does the premium plan include?",
		Agent:    trainedAgent(),
		Tier:     models.TierPro,
	})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Confidence, 0.1)
	assert.LessOrEqual(t, result.Confidence, 1.0)
	assert.True(t, result.ShouldEscalate)
}

// TestBuildSystemPrompt tests personality and excerpt rendering.
func TestBuildSystemPrompt(t *testing.T) {
	prompt := generator.BuildSystemPrompt(trainedAgent(), goodContexts())

	assert.Contains(t, prompt, "Ava")
	assert.Contains(t, prompt, "friendly")
	assert.Contains(t, prompt, "[1] (pricing.md)")
	assert.Contains(t, prompt, "[2] (billing.md)")
}

// TestBuildUserMessage tests transcript rendering.
func TestBuildUserMessage(t *testing.T) {
	assert.Equal(t, "hello", generator.BuildUserMessage(nil, "hello"))

	msg := generator.BuildUserMessage([]string{"Customer: hi", "Agent: hello"}, "where is my order?")
	assert.Contains(t, msg, "Customer: hi")
	assert.Contains(t, msg, "Agent: hello")
	assert.Contains(t, msg, "Customer: where is my order?")
}
