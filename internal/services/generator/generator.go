// Package generator produces candidate replies: it retrieves knowledge
// context, invokes the provider router and scores the result, returning a
// confidence and an escalation verdict alongside the text.
package generator

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	domainerrors "github.com/omnidesk/autoreply-service/internal/domain/errors"
	"github.com/omnidesk/autoreply-service/internal/domain/models"
	"github.com/omnidesk/autoreply-service/internal/pkg/metrics"
	"github.com/omnidesk/autoreply-service/internal/services/knowledge"
	"github.com/omnidesk/autoreply-service/internal/services/llm"
)

// Config holds generation thresholds. Injected at construction so tenants can
// override and tests can tune.
type Config struct {
	// MaxContexts is the retrieval K.
	MaxContexts int
	// SimilarityFloor is the minimum snippet similarity.
	SimilarityFloor float64
	// ConfidenceThreshold is the verdict floor: below it, escalate.
	ConfidenceThreshold float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		MaxContexts:         5,
		SimilarityFloor:     0.7,
		ConfidenceThreshold: 0.7,
	}
}

// Request describes one generation call.
type Request struct {
	TenantID string
	UserID   string
	Query    string
	// History holds recent transcript lines, oldest first, already formatted
	// as "Customer: ..." / "Agent: ...".
	History []string
	Agent   *models.AgentProfile
	Tier    models.Tier
}

// Generator implements retrieval-grounded response generation.
type Generator struct {
	retriever knowledge.Searcher
	router    *llm.Router
	cfg       Config
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// New creates a new Generator.
func New(retriever knowledge.Searcher, router *llm.Router, cfg Config, m *metrics.Metrics, logger zerolog.Logger) *Generator {
	if cfg.MaxContexts == 0 {
		cfg.MaxContexts = 5
	}
	if cfg.SimilarityFloor == 0 {
		cfg.SimilarityFloor = 0.7
	}
	if cfg.ConfidenceThreshold == 0 {
		cfg.ConfidenceThreshold = 0.7
	}
	return &Generator{
		retriever: retriever,
		router:    router,
		cfg:       cfg,
		metrics:   m,
		logger:    logger.With().Str("component", "generator").Logger(),
	}
}

// Generate produces a candidate reply for the query.
//
// An agent with no configured knowledge source short-circuits with the
// AGENT_NEEDS_TRAINING reason: that is a configuration gap, not a
// low-confidence answer, and callers need to tell them apart. A failed
// retrieval call degrades to zero contexts; the verdict rules then decide.
func (g *Generator) Generate(ctx context.Context, req Request) (*models.GenerationResult, error) {
	if !req.Agent.HasKnowledgeSources() {
		return &models.GenerationResult{
			Confidence:       confidenceMin,
			ShouldEscalate:   true,
			EscalationReason: models.ReasonAgentNeedsTraining,
		}, nil
	}

	start := time.Now()
	defer func() {
		g.metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	}()

	contexts := g.retrieve(ctx, req)

	provider, err := g.router.Select(ctx, req.Tier, req.Agent.ProviderPreference)
	if err != nil {
		return nil, domainerrors.NewConfigurationError("no eligible provider", err.Error())
	}

	systemPrompt := BuildSystemPrompt(req.Agent, contexts)

	invocation, err := g.router.Invoke(ctx, provider, req.Tier, systemPrompt, BuildUserMessage(req.History, req.Query))
	if err != nil {
		// Already a PROVIDER_FAILURE after the single fallback hop.
		return nil, err
	}

	confidence := scoreConfidence(invocation.Text, provider.ConfidenceBaseline, contexts)
	escalate, reason := g.verdict(req.Query, invocation.Text, confidence, contexts)

	return &models.GenerationResult{
		Response:         invocation.Text,
		Confidence:       confidence,
		Contexts:         contexts,
		Provider:         invocation.Provider,
		TokensUsed:       invocation.TokensUsed,
		LatencyMs:        invocation.LatencyMs,
		ShouldEscalate:   escalate,
		EscalationReason: reason,
	}, nil
}

// retrieve fetches knowledge snippets, degrading a failed call to zero
// contexts rather than aborting generation.
func (g *Generator) retrieve(ctx context.Context, req Request) []models.KnowledgeContext {
	contexts, err := g.retriever.Search(ctx, knowledge.SearchRequest{
		Query:           req.Query,
		TenantID:        req.TenantID,
		AgentID:         req.Agent.ID,
		UserID:          req.UserID,
		Limit:           g.cfg.MaxContexts,
		SimilarityFloor: g.cfg.SimilarityFloor,
	})
	if err != nil {
		g.logger.Warn().Err(err).
			Str("agent_id", req.Agent.ID).
			Msg("knowledge retrieval failed, proceeding without context")
		return nil
	}
	return contexts
}

// verdict decides whether the reply is safe to send. Escalate if any holds:
// confidence below threshold, zero contexts, weak average similarity, an
// escalation keyword in the customer query, or hedging in the response.
func (g *Generator) verdict(query, response string, confidence float64, contexts []models.KnowledgeContext) (bool, string) {
	if containsEscalationKeyword(query) {
		return true, models.ReasonEscalationKeyword
	}
	if len(contexts) == 0 {
		return true, models.ReasonNoRelevantKnowledge
	}
	if avgSimilarity(contexts) < g.cfg.SimilarityFloor {
		return true, models.ReasonNoRelevantKnowledge
	}
	if containsUncertainty(response) {
		return true, models.ReasonUncertainResponse
	}
	if confidence < g.cfg.ConfidenceThreshold {
		return true, models.ReasonLowConfidence
	}
	return false, ""
}

func avgSimilarity(contexts []models.KnowledgeContext) float64 {
	if len(contexts) == 0 {
		return 0
	}
	var sum float64
	for _, c := range contexts {
		sum += c.Similarity
	}
	return sum / float64(len(contexts))
}
