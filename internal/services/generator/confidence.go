package generator

import (
	"strings"

	"github.com/omnidesk/autoreply-service/internal/domain/models"
)

const (
	confidenceMin = 0.1
	confidenceMax = 1.0

	shortResponseLength  = 50
	shortResponsePenalty = 0.2
	hedgingPenalty       = 0.3
	contextBonus         = 0.1
)

// hedgingPhrases mark responses where the model signals it does not know.
var hedgingPhrases = []string{
	"i don't know",
	"i do not know",
	"i'm not sure",
	"i am not sure",
	"unclear",
	"i cannot help",
	"i can't help",
	"i'm unable",
	"i am unable",
	"not covered",
	"do not cover",
	"don't cover",
}

// escalationKeywords in the customer's query force an escalation verdict
// regardless of computed confidence.
var escalationKeywords = []string{
	"urgent",
	"complaint",
	"refund",
	"manager",
	"lawyer",
	"lawsuit",
	"cancel my account",
	"unsubscribe",
	"legal action",
}

// scoreConfidence computes the heuristic confidence for a generated response.
// Start from the provider baseline, penalize very short or hedging responses,
// reward explicit grounding in the supplied context, clamp to [0.1, 1.0].
func scoreConfidence(response string, baseline float64, contexts []models.KnowledgeContext) float64 {
	confidence := baseline
	lower := strings.ToLower(response)

	if len(response) < shortResponseLength {
		confidence -= shortResponsePenalty
	}
	if containsAnyPhrase(lower, hedgingPhrases) {
		confidence -= hedgingPenalty
	}
	if referencesContext(lower, contexts) {
		confidence += contextBonus
	}

	if confidence < confidenceMin {
		return confidenceMin
	}
	if confidence > confidenceMax {
		return confidenceMax
	}
	return confidence
}

// referencesContext reports whether the response visibly draws on the
// retrieved snippets: either it cites them or it shares a long fragment.
func referencesContext(lowerResponse string, contexts []models.KnowledgeContext) bool {
	if strings.Contains(lowerResponse, "based on") || strings.Contains(lowerResponse, "according to") {
		return true
	}
	for _, ctx := range contexts {
		lowerCtx := strings.ToLower(ctx.Content)
		for _, fragment := range fragments(lowerCtx, 5) {
			if strings.Contains(lowerResponse, fragment) {
				return true
			}
		}
	}
	return false
}

// fragments yields sliding word windows of the given size.
func fragments(text string, size int) []string {
	words := strings.Fields(text)
	if len(words) < size {
		return nil
	}
	out := make([]string, 0, len(words)-size+1)
	for i := 0; i+size <= len(words); i++ {
		out = append(out, strings.Join(words[i:i+size], " "))
	}
	return out
}

func containsAnyPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// containsEscalationKeyword reports whether the customer query carries an
// escalation keyword.
func containsEscalationKeyword(query string) bool {
	return containsAnyPhrase(strings.ToLower(query), escalationKeywords)
}

// containsUncertainty reports whether the generated text hedges.
func containsUncertainty(response string) bool {
	return containsAnyPhrase(strings.ToLower(response), hedgingPhrases)
}
