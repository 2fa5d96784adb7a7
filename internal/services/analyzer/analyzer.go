// Package analyzer turns raw message text into sentiment, urgency and intent
// signals. Analysis is a pure function over keyword sets: deterministic, no
// side effects, no external calls, so a future classifier can replace it
// behind the same output shape without touching the state tracker.
package analyzer

import (
	"strings"

	"github.com/omnidesk/autoreply-service/internal/domain/models"
)

// Direction indicates whether a message was sent by the customer or an agent.
type Direction string

const (
	// DirectionInbound marks a customer message.
	DirectionInbound Direction = "inbound"
	// DirectionOutbound marks an agent message.
	DirectionOutbound Direction = "outbound"
)

// Urgency classifies how quickly a message needs handling.
type Urgency string

const (
	// UrgencyHigh indicates the message contains urgency markers.
	UrgencyHigh Urgency = "high"
	// UrgencyMedium is the default urgency.
	UrgencyMedium Urgency = "medium"
)

// Suggested follow-up actions.
const (
	ActionEscalateToHuman   = "escalate_to_human"
	ActionSendKnowledgeBase = "send_knowledge_article"
	ActionApologize         = "apologize_and_resolve"
	ActionCaptureFeedback   = "capture_feedback"
)

// Analysis is the signal bundle produced for one message.
type Analysis struct {
	Sentiment      models.Sentiment `json:"sentiment"`
	SentimentScore float64          `json:"sentimentScore"`
	Urgency        Urgency          `json:"urgency"`
	IsQuestion     bool             `json:"isQuestion"`
	IsComplaint    bool             `json:"isComplaint"`
	IsCompliment   bool             `json:"isCompliment"`

	// HumanRequested is true only when the customer literally asked for a
	// person. RequiresHumanAttention additionally covers negative urgent
	// messages.
	HumanRequested         bool     `json:"humanRequested"`
	RequiresHumanAttention bool     `json:"requiresHumanAttention"`
	SuggestedActions       []string `json:"suggestedActions,omitempty"`
}

// Analyze scores a single message. Repeated calls with the same input always
// produce the same output.
func Analyze(text string, direction Direction) Analysis {
	lower := strings.ToLower(text)
	tokens := Tokenize(lower)

	score := sentimentScore(tokens)
	sentiment := scoreToSentiment(score)

	urgency := UrgencyMedium
	if containsAny(lower, urgentPhrases) {
		urgency = UrgencyHigh
	}

	isComplaint := containsAny(lower, complaintPhrases)
	isCompliment := score > 0 && containsAny(lower, complimentPhrases)
	isQuestion := strings.Contains(text, "?") || startsWithAny(lower, questionLeads)

	humanRequested := containsAny(lower, humanRequestPhrases)
	requiresHuman := humanRequested || (sentiment == models.SentimentNegative && urgency == UrgencyHigh)

	return Analysis{
		Sentiment:              sentiment,
		SentimentScore:         score,
		Urgency:                urgency,
		IsQuestion:             isQuestion,
		IsComplaint:            isComplaint,
		IsCompliment:           isCompliment,
		HumanRequested:         humanRequested,
		RequiresHumanAttention: requiresHuman,
		SuggestedActions:       suggestActions(sentiment, urgency, isQuestion, isComplaint, isCompliment, humanRequested),
	}
}

// Tokenize lowercases and splits text on non-alphanumeric runes.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
}

// sentimentScore returns a score in [-1, 1] from keyword hits.
func sentimentScore(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}

	var positive, negative int
	for _, tok := range tokens {
		if positiveWords[tok] {
			positive++
		}
		if negativeWords[tok] {
			negative++
		}
	}

	hits := positive + negative
	if hits == 0 {
		return 0
	}

	score := float64(positive-negative) / float64(hits)
	// Dampen single-hit swings on longer messages.
	if hits == 1 && len(tokens) > 12 {
		score *= 0.5
	}
	return clamp(score, -1, 1)
}

func scoreToSentiment(score float64) models.Sentiment {
	switch {
	case score > 0.15:
		return models.SentimentPositive
	case score < -0.15:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

func suggestActions(sentiment models.Sentiment, urgency Urgency, isQuestion, isComplaint, isCompliment, humanRequested bool) []string {
	var actions []string
	if humanRequested || (sentiment == models.SentimentNegative && urgency == UrgencyHigh) {
		actions = append(actions, ActionEscalateToHuman)
	}
	if isComplaint {
		actions = append(actions, ActionApologize)
	}
	if isQuestion {
		actions = append(actions, ActionSendKnowledgeBase)
	}
	if isCompliment {
		actions = append(actions, ActionCaptureFeedback)
	}
	return actions
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

func startsWithAny(text string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
