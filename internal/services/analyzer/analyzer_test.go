// Package analyzer_test provides tests for the message analyzer.
package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omnidesk/autoreply-service/internal/domain/models"
	"github.com/omnidesk/autoreply-service/internal/services/analyzer"
)

// TestAnalyze_PositiveMessage tests sentiment scoring on a clearly positive message.
func TestAnalyze_PositiveMessage(t *testing.T) {
	analysis := analyzer.Analyze("Thanks, that was great and very helpful!", analyzer.DirectionInbound)

	assert.Equal(t, models.SentimentPositive, analysis.Sentiment)
	assert.Greater(t, analysis.SentimentScore, 0.0)
	assert.True(t, analysis.IsCompliment)
	assert.False(t, analysis.IsComplaint)
	assert.False(t, analysis.RequiresHumanAttention)
}

// TestAnalyze_NegativeMessage tests sentiment scoring on a clearly negative message.
func TestAnalyze_NegativeMessage(t *testing.T) {
	analysis := analyzer.Analyze("This is terrible, the product is broken and useless", analyzer.DirectionInbound)

	assert.Equal(t, models.SentimentNegative, analysis.Sentiment)
	assert.Less(t, analysis.SentimentScore, 0.0)
	assert.True(t, analysis.IsComplaint)
}

// TestAnalyze_NeutralMessage tests that a message without keywords scores neutral.
func TestAnalyze_NeutralMessage(t *testing.T) {
	analysis := analyzer.Analyze("What time do you open tomorrow?", analyzer.DirectionInbound)

	assert.Equal(t, models.SentimentNeutral, analysis.Sentiment)
	assert.Zero(t, analysis.SentimentScore)
	assert.True(t, analysis.IsQuestion)
}

// TestAnalyze_UrgentComplaint tests that urgency markers raise urgency and
// combine with negative sentiment to require human attention.
func TestAnalyze_UrgentComplaint(t *testing.T) {
	analysis := analyzer.Analyze("This is urgent, my payment failed!", analyzer.DirectionInbound)

	assert.Equal(t, analyzer.UrgencyHigh, analysis.Urgency)
	assert.True(t, analysis.IsComplaint)
	assert.Equal(t, models.SentimentNegative, analysis.Sentiment)
	assert.True(t, analysis.RequiresHumanAttention)
	// No literal ask for a person in the text.
	assert.False(t, analysis.HumanRequested)
}

// TestAnalyze_ExplicitHumanRequest tests human request detection.
func TestAnalyze_ExplicitHumanRequest(t *testing.T) {
	analysis := analyzer.Analyze("I want to speak to a human please", analyzer.DirectionInbound)

	assert.True(t, analysis.HumanRequested)
	assert.True(t, analysis.RequiresHumanAttention)
	assert.Contains(t, analysis.SuggestedActions, analyzer.ActionEscalateToHuman)
}

// TestAnalyze_Deterministic tests that repeated analysis of the same text
// yields identical results.
func TestAnalyze_Deterministic(t *testing.T) {
	text := "My order is late and I am frustrated, please help asap"

	first := analyzer.Analyze(text, analyzer.DirectionInbound)
	second := analyzer.Analyze(text, analyzer.DirectionInbound)

	assert.Equal(t, first, second)
}

// TestAnalyze_SingleHitDampening tests that one keyword in a long message is
// dampened.
func TestAnalyze_SingleHitDampening(t *testing.T) {
	long := "I have been trying to configure the integration for the past couple of days and something seems wrong somewhere"

	analysis := analyzer.Analyze(long, analyzer.DirectionInbound)

	assert.InDelta(t, -0.5, analysis.SentimentScore, 0.001)
}

// TestTokenize tests splitting on non-alphanumeric runes.
func TestTokenize(t *testing.T) {
	tokens := analyzer.Tokenize("Hello, World! Order #42 failed.")

	assert.Equal(t, []string{"hello", "world", "order", "42", "failed"}, tokens)
}
