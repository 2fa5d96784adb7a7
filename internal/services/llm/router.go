package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"github.com/omnidesk/autoreply-service/internal/core/cache"
	domainerrors "github.com/omnidesk/autoreply-service/internal/domain/errors"
	"github.com/omnidesk/autoreply-service/internal/domain/models"
	"github.com/omnidesk/autoreply-service/internal/pkg/metrics"
)

const (
	healthKeyPrefix = "llm:health:"
	healthDown      = "down"
	healthUp        = "up"

	healthProbePrompt  = "ping"
	healthProbeTimeout = 5 * time.Second
)

// RouterConfig holds router construction parameters.
type RouterConfig struct {
	Providers      []Provider
	InvokeTimeout  time.Duration
	HealthCacheTTL time.Duration
}

// Router selects and invokes language-model backends. On invocation failure
// it performs at most one fallback hop to the next eligible provider; it
// never loops across the whole list.
type Router struct {
	providers      []Provider
	invokeTimeout  time.Duration
	healthCacheTTL time.Duration
	cache          cache.Cache
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(cfg RouterConfig, c cache.Cache, m *metrics.Metrics, logger zerolog.Logger) (*Router, error) {
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}

	invokeTimeout := cfg.InvokeTimeout
	if invokeTimeout == 0 {
		invokeTimeout = 7 * time.Second
	}
	healthTTL := cfg.HealthCacheTTL
	if healthTTL == 0 {
		healthTTL = 2 * time.Minute
	}

	return &Router{
		providers:      cfg.Providers,
		invokeTimeout:  invokeTimeout,
		healthCacheTTL: healthTTL,
		cache:          c,
		metrics:        m,
		logger:         logger.With().Str("component", "llm_router").Logger(),
	}, nil
}

// Select picks a provider for the given tier. An explicit preference wins if
// it names a configured, eligible provider. Otherwise the free tier gets the
// cost-optimized backend (lowest weight) and paid tiers the most reliable one
// (highest baseline). Providers recently marked unreachable are skipped
// unless nothing else is eligible.
func (r *Router) Select(ctx context.Context, tier models.Tier, preference string) (*Provider, error) {
	if preference != "" {
		if p := r.find(preference); p != nil && p.ServesTier(tier) {
			return p, nil
		}
	}

	eligible := r.eligible(tier)
	if len(eligible) == 0 {
		return nil, fmt.Errorf("no provider configured for tier %s", tier)
	}

	healthy := make([]*Provider, 0, len(eligible))
	for _, p := range eligible {
		if !r.markedDown(ctx, p.Name) {
			healthy = append(healthy, p)
		}
	}
	if len(healthy) == 0 {
		healthy = eligible
	}

	best := healthy[0]
	for _, p := range healthy[1:] {
		if tier.IsPaid() {
			if p.ConfidenceBaseline > best.ConfidenceBaseline {
				best = p
			}
		} else if p.Weight < best.Weight {
			best = p
		}
	}
	return best, nil
}

// Invoke calls the given provider with a bounded timeout. On failure it makes
// exactly one fallback attempt to the next eligible provider for the tier
// before surfacing a provider failure.
func (r *Router) Invoke(ctx context.Context, provider *Provider, tier models.Tier, systemPrompt, userMessage string) (*Invocation, error) {
	inv, err := r.invokeOne(ctx, provider, systemPrompt, userMessage)
	if err == nil {
		return inv, nil
	}

	r.noteFailure(ctx, provider.Name, err)

	fallback := r.fallbackFor(ctx, provider, tier)
	if fallback == nil {
		return nil, domainerrors.NewProviderFailureError(provider.Name, err)
	}

	r.metrics.ProviderFallbacks.WithLabelValues(provider.Name, fallback.Name).Inc()
	r.logger.Warn().
		Str("provider", provider.Name).
		Str("fallback", fallback.Name).
		Err(err).
		Msg("provider failed, trying fallback")

	inv, fallbackErr := r.invokeOne(ctx, fallback, systemPrompt, userMessage)
	if fallbackErr != nil {
		r.noteFailure(ctx, fallback.Name, fallbackErr)
		return nil, domainerrors.NewProviderFailureError(fallback.Name, fallbackErr)
	}
	return inv, nil
}

// invokeOne performs a single backend call.
func (r *Router) invokeOne(ctx context.Context, provider *Provider, systemPrompt, userMessage string) (*Invocation, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.invokeTimeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, userMessage),
	}

	start := time.Now()
	resp, err := provider.Model.GenerateContent(callCtx, messages)
	latency := time.Since(start)

	if err != nil {
		r.metrics.ProviderInvokes.WithLabelValues(provider.Name, "error").Inc()
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		r.metrics.ProviderInvokes.WithLabelValues(provider.Name, "empty").Inc()
		return nil, fmt.Errorf("provider %s returned no choices", provider.Name)
	}

	r.metrics.ProviderInvokes.WithLabelValues(provider.Name, "ok").Inc()

	choice := resp.Choices[0]
	return &Invocation{
		Text:       choice.Content,
		TokensUsed: tokensFromInfo(choice.GenerationInfo),
		LatencyMs:  latency.Milliseconds(),
		Provider:   provider.Name,
	}, nil
}

// fallbackFor returns the best eligible provider other than the failed one,
// or nil if none exists.
func (r *Router) fallbackFor(ctx context.Context, failed *Provider, tier models.Tier) *Provider {
	var best *Provider
	for _, p := range r.eligible(tier) {
		if p.Name == failed.Name {
			continue
		}
		if best == nil || p.ConfidenceBaseline > best.ConfidenceBaseline {
			best = p
		}
	}
	return best
}

// HealthReport maps provider name to reachability.
type HealthReport map[string]bool

// HealthCheck probes all configured providers with a trivial prompt and
// records reachability in the cache. The result biases future selection but
// is not required for correctness.
func (r *Router) HealthCheck(ctx context.Context) HealthReport {
	report := make(HealthReport, len(r.providers))

	for i := range r.providers {
		p := &r.providers[i]

		probeCtx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
		_, err := llms.GenerateFromSinglePrompt(probeCtx, p.Model, healthProbePrompt)
		cancel()

		reachable := err == nil
		report[p.Name] = reachable

		status := healthUp
		if !reachable {
			status = healthDown
		}
		if cacheErr := r.cache.Set(ctx, healthKeyPrefix+p.Name, []byte(status), r.healthCacheTTL); cacheErr != nil {
			r.logger.Warn().Err(cacheErr).Str("provider", p.Name).Msg("failed to cache provider health")
		}
	}

	return report
}

// Providers returns the configured providers.
func (r *Router) Providers() []Provider {
	return r.providers
}

func (r *Router) find(name string) *Provider {
	for i := range r.providers {
		if r.providers[i].Name == name {
			return &r.providers[i]
		}
	}
	return nil
}

func (r *Router) eligible(tier models.Tier) []*Provider {
	var out []*Provider
	for i := range r.providers {
		if r.providers[i].ServesTier(tier) {
			out = append(out, &r.providers[i])
		}
	}
	return out
}

func (r *Router) markedDown(ctx context.Context, name string) bool {
	val, err := r.cache.Get(ctx, healthKeyPrefix+name)
	if err != nil || val == nil {
		return false
	}
	return string(val) == healthDown
}

func (r *Router) noteFailure(ctx context.Context, name string, err error) {
	r.logger.Error().Err(err).Str("provider", name).Msg("provider invocation failed")
	if cacheErr := r.cache.Set(ctx, healthKeyPrefix+name, []byte(healthDown), r.healthCacheTTL); cacheErr != nil {
		r.logger.Warn().Err(cacheErr).Str("provider", name).Msg("failed to cache provider failure")
	}
}

// tokensFromInfo extracts a token count from a backend's generation info.
// Backends disagree on key names; try the common ones.
func tokensFromInfo(info map[string]any) int {
	for _, key := range []string{"TotalTokens", "CompletionTokens", "OutputTokens"} {
		if v, ok := info[key]; ok {
			switch n := v.(type) {
			case int:
				return n
			case int64:
				return int(n)
			case float64:
				return int(n)
			}
		}
	}
	return 0
}
