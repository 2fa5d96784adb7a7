// Package state_test provides tests for the conversation state tracker.
package state_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/omnidesk/autoreply-service/internal/domain/models"
	"github.com/omnidesk/autoreply-service/internal/mocks"
	"github.com/omnidesk/autoreply-service/internal/services/analyzer"
	"github.com/omnidesk/autoreply-service/internal/services/state"
)

func newTracker(conversations *mocks.MockConversations) *state.Tracker {
	return state.NewTracker(conversations, zerolog.Nop())
}

// TestUpdate_CreatesConversation tests that an unknown conversation is
// initialized on the first message.
func TestUpdate_CreatesConversation(t *testing.T) {
	conversations := new(mocks.MockConversations)
	conversations.On("Get", mock.Anything, "tenant-1", "conv-1").Return(nil, nil)
	conversations.On("Create", mock.Anything, mock.AnythingOfType("*models.Conversation")).Return(nil)

	tracker := newTracker(conversations)

	conversation, err := tracker.Update(context.Background(), state.UpdateRequest{
		TenantID:       "tenant-1",
		ConversationID: "conv-1",
		UserID:         "user-1",
		Channel:        "whatsapp",
		Text:           "Hi, I have a question about pricing",
		Direction:      analyzer.DirectionInbound,
	})

	require.NoError(t, err)
	assert.Equal(t, "conv-1", conversation.ID)
	assert.Equal(t, models.StageInitial, conversation.Stage)
	assert.Equal(t, 1, conversation.InboundCount)
	conversations.AssertExpectations(t)
}

// TestUpdate_OutboundOnlyTouchesTimestamps tests that outbound messages do
// not run analysis.
func TestUpdate_OutboundOnlyTouchesTimestamps(t *testing.T) {
	existing := models.NewConversation("tenant-1", "user-1", "whatsapp")
	existing.ID = "conv-1"

	conversations := new(mocks.MockConversations)
	conversations.On("Get", mock.Anything, "tenant-1", "conv-1").Return(existing, nil)
	conversations.On("Update", mock.Anything, existing).Return(nil)

	tracker := newTracker(conversations)

	conversation, err := tracker.Update(context.Background(), state.UpdateRequest{
		TenantID:       "tenant-1",
		ConversationID: "conv-1",
		Text:           "This is terrible, awful, broken",
		Direction:      analyzer.DirectionOutbound,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, conversation.InboundCount)
	assert.Zero(t, conversation.SentimentScore)
	assert.Empty(t, conversation.EscalationFlags)
}

// TestUpdate_SentimentBlending tests that the blended score weights the prior
// state over the newest sample.
func TestUpdate_SentimentBlending(t *testing.T) {
	existing := models.NewConversation("tenant-1", "user-1", "whatsapp")
	existing.ID = "conv-1"
	existing.SentimentScore = 0.8
	existing.Sentiment = models.SentimentPositive

	conversations := new(mocks.MockConversations)
	conversations.On("Get", mock.Anything, "tenant-1", "conv-1").Return(existing, nil)
	conversations.On("Update", mock.Anything, existing).Return(nil)

	tracker := newTracker(conversations)

	conversation, err := tracker.Update(context.Background(), state.UpdateRequest{
		TenantID:       "tenant-1",
		ConversationID: "conv-1",
		Text:           "this is broken and terrible",
		Direction:      analyzer.DirectionInbound,
	})

	require.NoError(t, err)
	// 0.7*0.8 + 0.3*(-1.0) = 0.26: one bad message does not flip a positive
	// conversation negative.
	assert.InDelta(t, 0.26, conversation.SentimentScore, 0.001)
	assert.Equal(t, models.SentimentPositive, conversation.Sentiment)
}

// TestUpdate_StuckDetection tests that near-identical repeated questions mark
// the conversation stuck and raise the trigger.
func TestUpdate_StuckDetection(t *testing.T) {
	existing := models.NewConversation("tenant-1", "user-1", "webchat")
	existing.ID = "conv-1"
	existing.InboundCount = 2
	existing.RecentInbound = []string{
		"how do i reset my password",
		"how do i reset my password please",
	}

	conversations := new(mocks.MockConversations)
	conversations.On("Get", mock.Anything, "tenant-1", "conv-1").Return(existing, nil)
	conversations.On("Update", mock.Anything, existing).Return(nil)

	tracker := newTracker(conversations)

	conversation, err := tracker.Update(context.Background(), state.UpdateRequest{
		TenantID:       "tenant-1",
		ConversationID: "conv-1",
		Text:           "how do i reset my password",
		Direction:      analyzer.DirectionInbound,
	})

	require.NoError(t, err)
	assert.True(t, conversation.IsStuck)
	assert.Contains(t, conversation.EscalationFlags, state.TriggerStuck)
}

// TestUpdate_StuckNeedsMinimumSamples tests that stuck detection stays quiet
// below the sample minimum even for identical messages.
func TestUpdate_StuckNeedsMinimumSamples(t *testing.T) {
	existing := models.NewConversation("tenant-1", "user-1", "webchat")
	existing.ID = "conv-1"
	existing.InboundCount = 1
	existing.RecentInbound = []string{"how do i reset my password"}

	conversations := new(mocks.MockConversations)
	conversations.On("Get", mock.Anything, "tenant-1", "conv-1").Return(existing, nil)
	conversations.On("Update", mock.Anything, existing).Return(nil)

	tracker := newTracker(conversations)

	conversation, err := tracker.Update(context.Background(), state.UpdateRequest{
		TenantID:       "tenant-1",
		ConversationID: "conv-1",
		Text:           "how do i reset my password",
		Direction:      analyzer.DirectionInbound,
	})

	require.NoError(t, err)
	assert.False(t, conversation.IsStuck)
}

// TestUpdate_StageTransitions tests the complaint and resolution transitions.
func TestUpdate_StageTransitions(t *testing.T) {
	tests := []struct {
		name  string
		stage models.Stage
		score float64
		text  string
		want  models.Stage
	}{
		{
			name:  "complaint identifies issue",
			stage: models.StageInitial,
			text:  "my invoice is wrong, this is a complaint",
			want:  models.StageIssueIdentified,
		},
		{
			name:  "positive message starts resolving an issue",
			stage: models.StageIssueIdentified,
			score: 0.5,
			text:  "good, that helps, works now",
			want:  models.StageResolving,
		},
		{
			name:  "compliment resolves",
			stage: models.StageResolving,
			text:  "perfect, thank you, that solved it",
			want:  models.StageResolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := models.NewConversation("tenant-1", "user-1", "webchat")
			existing.ID = "conv-1"
			existing.Stage = tt.stage
			existing.SentimentScore = tt.score

			conversations := new(mocks.MockConversations)
			conversations.On("Get", mock.Anything, "tenant-1", "conv-1").Return(existing, nil)
			conversations.On("Update", mock.Anything, existing).Return(nil)

			tracker := newTracker(conversations)

			conversation, err := tracker.Update(context.Background(), state.UpdateRequest{
				TenantID:       "tenant-1",
				ConversationID: "conv-1",
				Text:           tt.text,
				Direction:      analyzer.DirectionInbound,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, conversation.Stage)
		})
	}
}

// TestUpdate_EscalatedStageIsTerminal tests that no inbound message moves a
// conversation out of the escalated stage.
func TestUpdate_EscalatedStageIsTerminal(t *testing.T) {
	existing := models.NewConversation("tenant-1", "user-1", "webchat")
	existing.ID = "conv-1"
	existing.Stage = models.StageEscalated

	conversations := new(mocks.MockConversations)
	conversations.On("Get", mock.Anything, "tenant-1", "conv-1").Return(existing, nil)
	conversations.On("Update", mock.Anything, existing).Return(nil)

	tracker := newTracker(conversations)

	conversation, err := tracker.Update(context.Background(), state.UpdateRequest{
		TenantID:       "tenant-1",
		ConversationID: "conv-1",
		Text:           "perfect, thank you, that solved it",
		Direction:      analyzer.DirectionInbound,
	})

	require.NoError(t, err)
	assert.Equal(t, models.StageEscalated, conversation.Stage)
}

// TestUpdate_RepeatedNegativeTrigger tests the sustained negativity trigger.
func TestUpdate_RepeatedNegativeTrigger(t *testing.T) {
	existing := models.NewConversation("tenant-1", "user-1", "webchat")
	existing.ID = "conv-1"
	existing.InboundCount = 3
	existing.SentimentScore = -0.6
	existing.Sentiment = models.SentimentNegative

	conversations := new(mocks.MockConversations)
	conversations.On("Get", mock.Anything, "tenant-1", "conv-1").Return(existing, nil)
	conversations.On("Update", mock.Anything, existing).Return(nil)

	tracker := newTracker(conversations)

	conversation, err := tracker.Update(context.Background(), state.UpdateRequest{
		TenantID:       "tenant-1",
		ConversationID: "conv-1",
		Text:           "still broken, I am frustrated",
		Direction:      analyzer.DirectionInbound,
	})

	require.NoError(t, err)
	assert.Contains(t, conversation.EscalationFlags, state.TriggerRepeatedNegative)
}

// TestUpdate_UrgentComplaintIsNotHumanRequest tests trigger attribution: an
// urgent negative message without a literal ask for a person raises
// urgent_complaint only.
func TestUpdate_UrgentComplaintIsNotHumanRequest(t *testing.T) {
	conversations := new(mocks.MockConversations)
	conversations.On("Get", mock.Anything, "tenant-1", "conv-1").Return(nil, nil)
	conversations.On("Create", mock.Anything, mock.AnythingOfType("*models.Conversation")).Return(nil)

	tracker := newTracker(conversations)

	conversation, err := tracker.Update(context.Background(), state.UpdateRequest{
		TenantID:       "tenant-1",
		ConversationID: "conv-1",
		Text:           "This is urgent, my payment failed!",
		Direction:      analyzer.DirectionInbound,
	})

	require.NoError(t, err)
	assert.Contains(t, conversation.EscalationFlags, state.TriggerUrgentComplaint)
	assert.NotContains(t, conversation.EscalationFlags, state.TriggerHumanRequested)
}

// TestUpdate_HumanRequestTrigger tests that the literal ask raises the
// explicit_human_request flag.
func TestUpdate_HumanRequestTrigger(t *testing.T) {
	conversations := new(mocks.MockConversations)
	conversations.On("Get", mock.Anything, "tenant-1", "conv-1").Return(nil, nil)
	conversations.On("Create", mock.Anything, mock.AnythingOfType("*models.Conversation")).Return(nil)

	tracker := newTracker(conversations)

	conversation, err := tracker.Update(context.Background(), state.UpdateRequest{
		TenantID:       "tenant-1",
		ConversationID: "conv-1",
		Text:           "Please let me talk to a human agent",
		Direction:      analyzer.DirectionInbound,
	})

	require.NoError(t, err)
	assert.Contains(t, conversation.EscalationFlags, state.TriggerHumanRequested)
}

// TestReassign_ClearsEscalation tests that reassignment is the only exit from
// the escalated stage and resets the escalation bookkeeping.
func TestReassign_ClearsEscalation(t *testing.T) {
	existing := models.NewConversation("tenant-1", "user-1", "webchat")
	existing.ID = "conv-1"
	existing.Stage = models.StageEscalated
	existing.EscalationFlags = []string{state.TriggerHumanRequested}
	existing.NeedsAssistance = true
	existing.Priority = "high"

	conversations := new(mocks.MockConversations)
	conversations.On("Get", mock.Anything, "tenant-1", "conv-1").Return(existing, nil)
	conversations.On("Update", mock.Anything, existing).Return(nil)

	tracker := newTracker(conversations)

	conversation, err := tracker.Reassign(context.Background(), "tenant-1", "conv-1", "agent-2", models.AgentTypeHuman)

	require.NoError(t, err)
	assert.Equal(t, models.StageEngaged, conversation.Stage)
	assert.Equal(t, "agent-2", conversation.AssignedAgentID)
	assert.Equal(t, models.AgentTypeHuman, conversation.AssignedAgentType)
	assert.Empty(t, conversation.EscalationFlags)
	assert.False(t, conversation.NeedsAssistance)
	assert.Empty(t, conversation.Priority)
}

// TestTokenOverlap tests the Jaccard similarity measure.
func TestTokenOverlap(t *testing.T) {
	assert.Equal(t, 1.0, state.TokenOverlap("reset my password", "reset my password"))
	assert.Equal(t, 0.0, state.TokenOverlap("hello there", "completely different"))

	partial := state.TokenOverlap("how do i reset my password", "how do i change my password")
	assert.Greater(t, partial, 0.5)
	assert.Less(t, partial, 1.0)
}
