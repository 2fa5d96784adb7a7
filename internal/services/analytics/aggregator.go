// Package analytics maintains the interaction log and daily performance
// rollups for agents.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/omnidesk/autoreply-service/internal/core/docdb"
	"github.com/omnidesk/autoreply-service/internal/domain/models"
)

// Aggregator appends interactions and folds their metrics into daily
// performance records using incremental weighted averages.
type Aggregator struct {
	db     docdb.Client
	logger zerolog.Logger
	// now is swappable in tests.
	now func() time.Time
}

// NewAggregator creates an analytics aggregator.
func NewAggregator(db docdb.Client, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		db:     db,
		logger: logger.With().Str("component", "analytics").Logger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// TrackInteraction appends the interaction to the log and updates the agent's
// daily performance record. Records are created lazily on the first
// interaction of a day.
func (a *Aggregator) TrackInteraction(ctx context.Context, interaction *models.Interaction) error {
	if err := a.db.Interactions().Append(ctx, interaction); err != nil {
		return fmt.Errorf("failed to append interaction: %w", err)
	}

	if interaction.AgentID == "" {
		return nil
	}

	day := a.now()
	date := day.Format(models.PerformanceDateLayout)
	record, err := a.db.Performance().Get(ctx, interaction.TenantID, interaction.AgentID, date)
	if err != nil {
		return fmt.Errorf("failed to load performance record: %w", err)
	}
	if record == nil {
		record = models.NewPerformanceRecord(interaction.TenantID, interaction.AgentID, day)
	}

	a.apply(record, interaction)
	record.UpdatedAt = a.now()

	if err := a.db.Performance().Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save performance record: %w", err)
	}
	return nil
}

// apply folds one interaction into the daily record.
func (a *Aggregator) apply(record *models.PerformanceRecord, interaction *models.Interaction) {
	switch interaction.Kind {
	case models.InteractionMessageSent:
		record.MessagesSent++
		if interaction.Metrics.NewConversation {
			record.ConversationsHandled++
		}
		if interaction.Metrics.ResponseTimeMs > 0 {
			record.AvgResponseTimeMs = runningAverage(
				record.AvgResponseTimeMs, record.ResponseTimeSamples, interaction.Metrics.ResponseTimeMs)
			record.ResponseTimeSamples++
		}
	case models.InteractionMessageReceived:
		if interaction.Metrics.NewConversation {
			record.ConversationsHandled++
		}
	case models.InteractionEscalation:
		record.Handoffs++
	case models.InteractionLeadCaptured:
		record.LeadsCaptured++
	case models.InteractionResolution:
		record.Resolutions++
		if interaction.Metrics.Satisfaction > 0 {
			record.AvgSatisfaction = runningAverage(
				record.AvgSatisfaction, record.SatisfactionSamples, interaction.Metrics.Satisfaction)
			record.SatisfactionSamples++
		}
	default:
		a.logger.Debug().
			Str("kind", string(interaction.Kind)).
			Msg("interaction kind has no performance rollup")
	}
}

// runningAverage folds a new sample into an average without rereading history.
func runningAverage(oldAvg float64, oldCount int, sample float64) float64 {
	return (oldAvg*float64(oldCount) + sample) / float64(oldCount+1)
}

// AgentPerformance returns the daily records for one agent over a date range,
// oldest first. Days without interactions have no record and are simply absent.
func (a *Aggregator) AgentPerformance(ctx context.Context, tenantID, agentID string, from, to time.Time) ([]*models.PerformanceRecord, error) {
	records, err := a.db.Performance().ListRange(ctx, tenantID, agentID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list performance records: %w", err)
	}
	return records, nil
}

// Summary is a cross-agent rollup over a date range.
type Summary struct {
	TenantID             string  `json:"tenantId"`
	From                 string  `json:"from"`
	To                   string  `json:"to"`
	ConversationsHandled int     `json:"conversationsHandled"`
	MessagesSent         int     `json:"messagesSent"`
	Handoffs             int     `json:"handoffs"`
	LeadsCaptured        int     `json:"leadsCaptured"`
	Resolutions          int     `json:"resolutions"`
	AvgResponseTimeMs    float64 `json:"avgResponseTimeMs"`
	AvgSatisfaction      float64 `json:"avgSatisfaction"`
	AgentsActive         int     `json:"agentsActive"`
}

// SystemPerformance merges all agents' records for the tenant into one
// summary. Averages are weighted by each record's sample count.
func (a *Aggregator) SystemPerformance(ctx context.Context, tenantID string, from, to time.Time) (*Summary, error) {
	records, err := a.db.Performance().ListRange(ctx, tenantID, "", from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list performance records: %w", err)
	}

	summary := &Summary{
		TenantID: tenantID,
		From:     from.UTC().Format(models.PerformanceDateLayout),
		To:       to.UTC().Format(models.PerformanceDateLayout),
	}
	agents := make(map[string]struct{})
	var responseTimeSum float64
	var responseTimeSamples int
	var satisfactionSum float64
	var satisfactionSamples int

	for _, r := range records {
		summary.ConversationsHandled += r.ConversationsHandled
		summary.MessagesSent += r.MessagesSent
		summary.Handoffs += r.Handoffs
		summary.LeadsCaptured += r.LeadsCaptured
		summary.Resolutions += r.Resolutions
		agents[r.AgentID] = struct{}{}

		responseTimeSum += r.AvgResponseTimeMs * float64(r.ResponseTimeSamples)
		responseTimeSamples += r.ResponseTimeSamples
		satisfactionSum += r.AvgSatisfaction * float64(r.SatisfactionSamples)
		satisfactionSamples += r.SatisfactionSamples
	}

	if responseTimeSamples > 0 {
		summary.AvgResponseTimeMs = responseTimeSum / float64(responseTimeSamples)
	}
	if satisfactionSamples > 0 {
		summary.AvgSatisfaction = satisfactionSum / float64(satisfactionSamples)
	}
	summary.AgentsActive = len(agents)
	return summary, nil
}
