package models

// Escalation reasons attached to generation results and handoff records.
// AGENT_NEEDS_TRAINING (configuration gap) is deliberately distinct from
// LOW_CONFIDENCE (threshold miss): the remediation differs.
const (
	ReasonAgentNeedsTraining  = "AGENT_NEEDS_TRAINING"
	ReasonLowConfidence       = "LOW_CONFIDENCE"
	ReasonNoRelevantKnowledge = "NO_RELEVANT_KNOWLEDGE"
	ReasonEscalationKeyword   = "ESCALATION_KEYWORD"
	ReasonUncertainResponse   = "UNCERTAIN_RESPONSE"
	ReasonProviderFailure     = "PROVIDER_FAILURE"
)

// Tier selects which providers an agent may use.
type Tier string

const (
	// TierFree routes to the cost-optimized backend.
	TierFree Tier = "free"
	// TierPro routes to the highest-reliability backend.
	TierPro Tier = "pro"
	// TierEnterprise routes to the highest-reliability backend.
	TierEnterprise Tier = "enterprise"
)

// IsPaid reports whether the tier routes to reliability-weighted providers.
func (t Tier) IsPaid() bool {
	return t == TierPro || t == TierEnterprise
}

// KnowledgeContext is one retrieved snippet used to ground a generated
// response. Ephemeral; produced fresh per generation, never persisted.
type KnowledgeContext struct {
	Content    string  `json:"content"`
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity"`
}

// GenerationResult is the outcome of one response-generation attempt.
type GenerationResult struct {
	Response         string             `json:"response"`
	Confidence       float64            `json:"confidence"`
	Contexts         []KnowledgeContext `json:"contexts,omitempty"`
	Provider         string             `json:"provider"`
	TokensUsed       int                `json:"tokensUsed"`
	LatencyMs        int64              `json:"latencyMs"`
	ShouldEscalate   bool               `json:"shouldEscalate"`
	EscalationReason string             `json:"escalationReason,omitempty"`
}

// AgentProfile is the personality and knowledge configuration of an
// automated agent, resolved from the agent directory service.
type AgentProfile struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Tone               string   `json:"tone"`
	Style              string   `json:"style"`
	Empathy            string   `json:"empathy"`
	Formality          string   `json:"formality"`
	KnowledgeSourceIDs []string `json:"knowledgeSourceIds"`
	Tier               Tier     `json:"tier"`
	ProviderPreference string   `json:"providerPreference,omitempty"`
}

// HasKnowledgeSources reports whether the agent has any configured knowledge
// base. An agent without one cannot answer and needs training.
func (p *AgentProfile) HasKnowledgeSources() bool {
	return p != nil && len(p.KnowledgeSourceIDs) > 0
}
