// Package escalation_test provides tests for the escalation workflow.
package escalation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/omnidesk/autoreply-service/internal/domain/models"
	"github.com/omnidesk/autoreply-service/internal/mocks"
	"github.com/omnidesk/autoreply-service/internal/pkg/metrics"
	"github.com/omnidesk/autoreply-service/internal/services/escalation"
)

func newWorkflow(db *mocks.MockDocDB, notifier escalation.Notifier) *escalation.Workflow {
	return escalation.NewWorkflow(db, notifier, metrics.New(prometheus.NewRegistry()), zerolog.Nop())
}

func activeConversation() *models.Conversation {
	c := models.NewConversation("tenant-1", "user-1", "whatsapp")
	c.ID = "conv-1"
	c.Stage = models.StageEngaged
	return c
}

func activeAssignment() *models.AgentAssignment {
	return models.NewAgentAssignment("tenant-1", "conv-1", "agent-1", models.AgentTypeAI)
}

// TestInitiate_FullSequence tests the escalation sequence: persist stage,
// disable assignment, record handoff, notify.
func TestInitiate_FullSequence(t *testing.T) {
	conversation := activeConversation()
	assignment := activeAssignment()

	db := mocks.NewMockDocDB()
	db.ConversationsMock.On("Update", mock.Anything, conversation).Return(nil)
	db.AssignmentsMock.On("DisableIfEnabled", mock.Anything, "tenant-1", assignment.ID, "explicit_human_request").Return(true, nil)
	db.HandoffsMock.On("Create", mock.Anything, mock.AnythingOfType("*models.Handoff")).Return(nil)

	notifier := new(mocks.MockNotifier)
	notifier.On("NotifyHandoff", mock.Anything, mock.AnythingOfType("*models.Handoff")).Return(nil)

	workflow := newWorkflow(db, notifier)

	result, err := workflow.Initiate(context.Background(), &escalation.Request{
		TenantID:        "tenant-1",
		Conversation:    conversation,
		Assignment:      assignment,
		Reason:          "explicit_human_request",
		Urgency:         models.UrgencyHigh,
		CustomerMessage: "let me talk to a person",
	})

	require.NoError(t, err)
	require.NotNil(t, result.Handoff)
	assert.False(t, result.AlreadyEscalated)

	assert.Equal(t, models.StageEscalated, conversation.Stage)
	assert.True(t, conversation.NeedsAssistance)
	assert.Equal(t, "high", conversation.Priority)
	assert.Contains(t, conversation.EscalationFlags, "explicit_human_request")

	assert.False(t, assignment.AutoResponseEnabled)
	assert.Equal(t, models.AssignmentStatusDisabled, assignment.Status)

	assert.Equal(t, models.HandoffPending, result.Handoff.Status)
	assert.Equal(t, models.UrgencyHigh, result.Handoff.Urgency)
	assert.Equal(t, "agent-1", result.Handoff.FromAgentID)
	assert.Equal(t, "let me talk to a person", result.Handoff.CustomerMessage)

	db.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

// TestInitiate_IdempotentOnEscalatedConversation tests that escalating an
// already-escalated conversation returns the existing pending handoff and
// does nothing else.
func TestInitiate_IdempotentOnEscalatedConversation(t *testing.T) {
	conversation := activeConversation()
	conversation.Stage = models.StageEscalated
	existing := models.NewHandoff("tenant-1", "conv-1", "agent-1", "conversation_stuck", models.UrgencyMedium, "")

	db := mocks.NewMockDocDB()
	db.HandoffsMock.On("FindPending", mock.Anything, "tenant-1", "conv-1").Return(existing, nil)

	notifier := new(mocks.MockNotifier)

	workflow := newWorkflow(db, notifier)

	result, err := workflow.Initiate(context.Background(), &escalation.Request{
		TenantID:     "tenant-1",
		Conversation: conversation,
		Reason:       "conversation_stuck",
	})

	require.NoError(t, err)
	assert.True(t, result.AlreadyEscalated)
	assert.Equal(t, existing.ID, result.Handoff.ID)

	db.HandoffsMock.AssertNumberOfCalls(t, "Create", 0)
	notifier.AssertNotCalled(t, "NotifyHandoff")
}

// TestInitiate_CompletesPartialEscalation tests that an escalated stage with
// no pending handoff (a failed prior attempt) completes the escalation.
func TestInitiate_CompletesPartialEscalation(t *testing.T) {
	conversation := activeConversation()
	conversation.Stage = models.StageEscalated

	db := mocks.NewMockDocDB()
	db.HandoffsMock.On("FindPending", mock.Anything, "tenant-1", "conv-1").Return(nil, nil)
	db.ConversationsMock.On("Update", mock.Anything, conversation).Return(nil)
	db.HandoffsMock.On("Create", mock.Anything, mock.AnythingOfType("*models.Handoff")).Return(nil)

	workflow := newWorkflow(db, nil)

	result, err := workflow.Initiate(context.Background(), &escalation.Request{
		TenantID:     "tenant-1",
		Conversation: conversation,
		Reason:       "conversation_stuck",
	})

	require.NoError(t, err)
	assert.False(t, result.AlreadyEscalated)
	require.NotNil(t, result.Handoff)
	db.AssertExpectations(t)
}

// TestInitiate_NotifierFailureDoesNotFail tests that queue notification is
// best effort.
func TestInitiate_NotifierFailureDoesNotFail(t *testing.T) {
	conversation := activeConversation()

	db := mocks.NewMockDocDB()
	db.ConversationsMock.On("Update", mock.Anything, conversation).Return(nil)
	db.HandoffsMock.On("Create", mock.Anything, mock.AnythingOfType("*models.Handoff")).Return(nil)

	notifier := new(mocks.MockNotifier)
	notifier.On("NotifyHandoff", mock.Anything, mock.AnythingOfType("*models.Handoff")).Return(errors.New("webhook down"))

	workflow := newWorkflow(db, notifier)

	result, err := workflow.Initiate(context.Background(), &escalation.Request{
		TenantID:     "tenant-1",
		Conversation: conversation,
		Reason:       "repeated_negative_sentiment",
	})

	require.NoError(t, err)
	require.NotNil(t, result.Handoff)
}

// TestInitiate_HandoffWriteFailure tests that a failed handoff insert
// surfaces as an error.
func TestInitiate_HandoffWriteFailure(t *testing.T) {
	conversation := activeConversation()

	db := mocks.NewMockDocDB()
	db.ConversationsMock.On("Update", mock.Anything, conversation).Return(nil)
	db.HandoffsMock.On("Create", mock.Anything, mock.AnythingOfType("*models.Handoff")).Return(errors.New("write failed"))

	workflow := newWorkflow(db, nil)

	_, err := workflow.Initiate(context.Background(), &escalation.Request{
		TenantID:     "tenant-1",
		Conversation: conversation,
		Reason:       "conversation_stuck",
	})

	assert.Error(t, err)
}

// TestInitiate_DefaultUrgency tests that handoffs default to medium urgency.
func TestInitiate_DefaultUrgency(t *testing.T) {
	conversation := activeConversation()

	db := mocks.NewMockDocDB()
	db.ConversationsMock.On("Update", mock.Anything, conversation).Return(nil)
	db.HandoffsMock.On("Create", mock.Anything, mock.AnythingOfType("*models.Handoff")).Return(nil)

	workflow := newWorkflow(db, nil)

	result, err := workflow.Initiate(context.Background(), &escalation.Request{
		TenantID:     "tenant-1",
		Conversation: conversation,
		Reason:       "conversation_stuck",
	})

	require.NoError(t, err)
	assert.Equal(t, models.UrgencyMedium, result.Handoff.Urgency)
}
