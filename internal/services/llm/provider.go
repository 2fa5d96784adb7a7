// Package llm routes response generation across configured language-model
// backends with tier-based selection and bounded fallback.
package llm

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/omnidesk/autoreply-service/internal/config"
	"github.com/omnidesk/autoreply-service/internal/domain/models"
)

// Provider is one configured backend. Weight orders cost-optimized selection
// (lower is cheaper); ConfidenceBaseline seeds confidence scoring for
// responses it produces.
type Provider struct {
	Name               string
	ModelName          string
	Model              llms.Model
	Weight             float64
	ConfidenceBaseline float64
	Tiers              []models.Tier
}

// ServesTier reports whether the provider is eligible for the given tier.
func (p *Provider) ServesTier(tier models.Tier) bool {
	for _, t := range p.Tiers {
		if t == tier {
			return true
		}
	}
	return false
}

// Invocation is the result of one backend call.
type Invocation struct {
	Text       string
	TokensUsed int
	LatencyMs  int64
	Provider   string
}

// BuildProviders constructs backends from configuration. Unknown provider
// names are an error so a typo fails at startup, not per message.
func BuildProviders(cfgs []config.ProviderConfig) ([]Provider, error) {
	providers := make([]Provider, 0, len(cfgs))

	for _, cfg := range cfgs {
		model, err := buildModel(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to build provider %s: %w", cfg.Name, err)
		}

		tiers := make([]models.Tier, 0, len(cfg.Tiers))
		for _, t := range cfg.Tiers {
			tiers = append(tiers, models.Tier(t))
		}

		providers = append(providers, Provider{
			Name:               cfg.Name,
			ModelName:          cfg.Model,
			Model:              model,
			Weight:             cfg.Weight,
			ConfidenceBaseline: cfg.Baseline,
			Tiers:              tiers,
		})
	}

	return providers, nil
}

func buildModel(cfg config.ProviderConfig) (llms.Model, error) {
	switch cfg.Name {
	case "openai":
		return openai.New(
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		)
	case "anthropic":
		return anthropic.New(
			anthropic.WithToken(cfg.APIKey),
			anthropic.WithModel(cfg.Model),
		)
	case "ollama":
		return ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Name)
	}
}
