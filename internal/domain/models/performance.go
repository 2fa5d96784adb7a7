package models

import "time"

// PerformanceDateLayout is the calendar-day key format for performance records.
const PerformanceDateLayout = "2006-01-02"

// PerformanceRecord holds daily rollup metrics for one agent. Records are
// created lazily on the first interaction of the day and updated with
// incremental weighted averages, never recomputed from history.
type PerformanceRecord struct {
	ID                   string    `json:"id" bson:"_id"`
	TenantID             string    `json:"tenantId" bson:"tenantId"`
	AgentID              string    `json:"agentId" bson:"agentId"`
	Date                 string    `json:"date" bson:"date"`
	ConversationsHandled int       `json:"conversationsHandled" bson:"conversationsHandled"`
	MessagesSent         int       `json:"messagesSent" bson:"messagesSent"`
	AvgResponseTimeMs    float64   `json:"avgResponseTimeMs" bson:"avgResponseTimeMs"`
	ResponseTimeSamples  int       `json:"responseTimeSamples" bson:"responseTimeSamples"`
	AvgSatisfaction      float64   `json:"avgSatisfaction" bson:"avgSatisfaction"`
	SatisfactionSamples  int       `json:"satisfactionSamples" bson:"satisfactionSamples"`
	Handoffs             int       `json:"handoffs" bson:"handoffs"`
	LeadsCaptured        int       `json:"leadsCaptured" bson:"leadsCaptured"`
	Resolutions          int       `json:"resolutions" bson:"resolutions"`
	CreatedAt            time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt" bson:"updatedAt"`
}

// PerformanceRecordID builds the deterministic document key for one
// (tenant, agent, day) triple, making the lazy upsert idempotent.
func PerformanceRecordID(tenantID, agentID, date string) string {
	return tenantID + ":" + agentID + ":" + date
}

// NewPerformanceRecord creates an empty daily record for the given day.
func NewPerformanceRecord(tenantID, agentID string, day time.Time) *PerformanceRecord {
	date := day.UTC().Format(PerformanceDateLayout)
	now := time.Now().UTC()
	return &PerformanceRecord{
		ID:        PerformanceRecordID(tenantID, agentID, date),
		TenantID:  tenantID,
		AgentID:   agentID,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
