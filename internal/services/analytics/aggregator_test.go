// Package analytics_test provides tests for the performance aggregator.
package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/omnidesk/autoreply-service/internal/domain/models"
	"github.com/omnidesk/autoreply-service/internal/mocks"
	"github.com/omnidesk/autoreply-service/internal/services/analytics"
)

func today() string {
	return time.Now().UTC().Format(models.PerformanceDateLayout)
}

// TestTrackInteraction_CreatesDailyRecordLazily tests that the first
// interaction of a day creates the record.
func TestTrackInteraction_CreatesDailyRecordLazily(t *testing.T) {
	db := mocks.NewMockDocDB()
	db.InteractionsMock.On("Append", mock.Anything, mock.AnythingOfType("*models.Interaction")).Return(nil)
	db.PerformanceMock.On("Get", mock.Anything, "tenant-1", "agent-1", today()).Return(nil, nil)

	var saved *models.PerformanceRecord
	db.PerformanceMock.On("Save", mock.Anything, mock.AnythingOfType("*models.PerformanceRecord")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.PerformanceRecord)
		}).Return(nil)

	aggregator := analytics.NewAggregator(db, zerolog.Nop())

	interaction := models.NewInteraction("tenant-1", "conv-1", "agent-1", models.InteractionMessageSent)
	interaction.Metrics.ResponseTimeMs = 1200
	interaction.Metrics.NewConversation = true

	err := aggregator.TrackInteraction(context.Background(), interaction)

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, models.PerformanceRecordID("tenant-1", "agent-1", today()), saved.ID)
	assert.Equal(t, 1, saved.MessagesSent)
	assert.Equal(t, 1, saved.ConversationsHandled)
	assert.InDelta(t, 1200, saved.AvgResponseTimeMs, 0.001)
	assert.Equal(t, 1, saved.ResponseTimeSamples)
}

// TestTrackInteraction_IncrementalAverage tests the running average update:
// (old_avg * old_count + new) / (old_count + 1).
func TestTrackInteraction_IncrementalAverage(t *testing.T) {
	existing := models.NewPerformanceRecord("tenant-1", "agent-1", time.Now().UTC())
	existing.MessagesSent = 4
	existing.AvgResponseTimeMs = 1000
	existing.ResponseTimeSamples = 4

	db := mocks.NewMockDocDB()
	db.InteractionsMock.On("Append", mock.Anything, mock.AnythingOfType("*models.Interaction")).Return(nil)
	db.PerformanceMock.On("Get", mock.Anything, "tenant-1", "agent-1", today()).Return(existing, nil)

	var saved *models.PerformanceRecord
	db.PerformanceMock.On("Save", mock.Anything, mock.AnythingOfType("*models.PerformanceRecord")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.PerformanceRecord)
		}).Return(nil)

	aggregator := analytics.NewAggregator(db, zerolog.Nop())

	interaction := models.NewInteraction("tenant-1", "conv-1", "agent-1", models.InteractionMessageSent)
	interaction.Metrics.ResponseTimeMs = 2000

	err := aggregator.TrackInteraction(context.Background(), interaction)

	require.NoError(t, err)
	require.NotNil(t, saved)
	// (1000*4 + 2000) / 5 = 1200
	assert.InDelta(t, 1200, saved.AvgResponseTimeMs, 0.001)
	assert.Equal(t, 5, saved.ResponseTimeSamples)
	assert.Equal(t, 5, saved.MessagesSent)
}

// TestTrackInteraction_CounterKinds tests that escalation, lead and
// resolution interactions bump their counters.
func TestTrackInteraction_CounterKinds(t *testing.T) {
	tests := []struct {
		kind    models.InteractionKind
		inspect func(t *testing.T, r *models.PerformanceRecord)
	}{
		{models.InteractionEscalation, func(t *testing.T, r *models.PerformanceRecord) {
			assert.Equal(t, 1, r.Handoffs)
		}},
		{models.InteractionLeadCaptured, func(t *testing.T, r *models.PerformanceRecord) {
			assert.Equal(t, 1, r.LeadsCaptured)
		}},
		{models.InteractionResolution, func(t *testing.T, r *models.PerformanceRecord) {
			assert.Equal(t, 1, r.Resolutions)
		}},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			db := mocks.NewMockDocDB()
			db.InteractionsMock.On("Append", mock.Anything, mock.AnythingOfType("*models.Interaction")).Return(nil)
			db.PerformanceMock.On("Get", mock.Anything, "tenant-1", "agent-1", today()).Return(nil, nil)

			var saved *models.PerformanceRecord
			db.PerformanceMock.On("Save", mock.Anything, mock.AnythingOfType("*models.PerformanceRecord")).
				Run(func(args mock.Arguments) {
					saved = args.Get(1).(*models.PerformanceRecord)
				}).Return(nil)

			aggregator := analytics.NewAggregator(db, zerolog.Nop())

			err := aggregator.TrackInteraction(context.Background(),
				models.NewInteraction("tenant-1", "conv-1", "agent-1", tt.kind))

			require.NoError(t, err)
			require.NotNil(t, saved)
			tt.inspect(t, saved)
		})
	}
}

// TestTrackInteraction_SatisfactionAverage tests satisfaction folding on
// resolutions.
func TestTrackInteraction_SatisfactionAverage(t *testing.T) {
	existing := models.NewPerformanceRecord("tenant-1", "agent-1", time.Now().UTC())
	existing.AvgSatisfaction = 4.0
	existing.SatisfactionSamples = 3

	db := mocks.NewMockDocDB()
	db.InteractionsMock.On("Append", mock.Anything, mock.AnythingOfType("*models.Interaction")).Return(nil)
	db.PerformanceMock.On("Get", mock.Anything, "tenant-1", "agent-1", today()).Return(existing, nil)

	var saved *models.PerformanceRecord
	db.PerformanceMock.On("Save", mock.Anything, mock.AnythingOfType("*models.PerformanceRecord")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.PerformanceRecord)
		}).Return(nil)

	aggregator := analytics.NewAggregator(db, zerolog.Nop())

	interaction := models.NewInteraction("tenant-1", "conv-1", "agent-1", models.InteractionResolution)
	interaction.Metrics.Satisfaction = 2.0

	err := aggregator.TrackInteraction(context.Background(), interaction)

	require.NoError(t, err)
	// (4.0*3 + 2.0) / 4 = 3.5
	assert.InDelta(t, 3.5, saved.AvgSatisfaction, 0.001)
	assert.Equal(t, 4, saved.SatisfactionSamples)
}

// TestTrackInteraction_SkipsRollupWithoutAgent tests that interactions with
// no agent only land in the log.
func TestTrackInteraction_SkipsRollupWithoutAgent(t *testing.T) {
	db := mocks.NewMockDocDB()
	db.InteractionsMock.On("Append", mock.Anything, mock.AnythingOfType("*models.Interaction")).Return(nil)

	aggregator := analytics.NewAggregator(db, zerolog.Nop())

	err := aggregator.TrackInteraction(context.Background(),
		models.NewInteraction("tenant-1", "conv-1", "", models.InteractionMessageReceived))

	require.NoError(t, err)
	db.PerformanceMock.AssertNotCalled(t, "Get")
	db.PerformanceMock.AssertNotCalled(t, "Save")
}

// TestSystemPerformance_WeightedMerge tests cross-agent rollups weight
// averages by sample count and tolerate missing days.
func TestSystemPerformance_WeightedMerge(t *testing.T) {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC)

	recordA := models.NewPerformanceRecord("tenant-1", "agent-1", from)
	recordA.MessagesSent = 10
	recordA.AvgResponseTimeMs = 1000
	recordA.ResponseTimeSamples = 10
	recordA.Handoffs = 2

	recordB := models.NewPerformanceRecord("tenant-1", "agent-2", from)
	recordB.MessagesSent = 30
	recordB.AvgResponseTimeMs = 2000
	recordB.ResponseTimeSamples = 30
	recordB.LeadsCaptured = 3

	db := mocks.NewMockDocDB()
	db.PerformanceMock.On("ListRange", mock.Anything, "tenant-1", "", from, to).
		Return([]*models.PerformanceRecord{recordA, recordB}, nil)

	aggregator := analytics.NewAggregator(db, zerolog.Nop())

	summary, err := aggregator.SystemPerformance(context.Background(), "tenant-1", from, to)

	require.NoError(t, err)
	assert.Equal(t, 40, summary.MessagesSent)
	assert.Equal(t, 2, summary.Handoffs)
	assert.Equal(t, 3, summary.LeadsCaptured)
	assert.Equal(t, 2, summary.AgentsActive)
	// (1000*10 + 2000*30) / 40 = 1750
	assert.InDelta(t, 1750, summary.AvgResponseTimeMs, 0.001)
}

// TestSystemPerformance_EmptyRange tests the zero summary for a range with no
// records.
func TestSystemPerformance_EmptyRange(t *testing.T) {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC)

	db := mocks.NewMockDocDB()
	db.PerformanceMock.On("ListRange", mock.Anything, "tenant-1", "", from, to).
		Return([]*models.PerformanceRecord{}, nil)

	aggregator := analytics.NewAggregator(db, zerolog.Nop())

	summary, err := aggregator.SystemPerformance(context.Background(), "tenant-1", from, to)

	require.NoError(t, err)
	assert.Zero(t, summary.MessagesSent)
	assert.Zero(t, summary.AvgResponseTimeMs)
	assert.Zero(t, summary.AgentsActive)
}
