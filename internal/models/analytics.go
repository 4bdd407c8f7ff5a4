package models

import "time"

// AnalyticsEvent represents a tracked event
type AnalyticsEvent struct {
	ID        int       `db:"id" json:"id"`
	EventType string    `db:"event_type" json:"event_type"` // search, feedback_helpful, feedback_ingested, ticket_ingested, ingest_dropped
	Count     int       `db:"count" json:"count"`
	Metadata  *string   `db:"metadata" json:"metadata,omitempty"` // JSON metadata (result count, ticket id, ...)
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AnalyticsSummary represents aggregated analytics for a time period
type AnalyticsSummary struct {
	Period           string    `json:"period"`            // "today", "yesterday", "last_7_days", "last_30_days"
	Searches         int       `json:"searches"`          // Search requests served
	HelpfulFeedback  int       `json:"helpful_feedback"`  // Sessions resolved by an existing ticket
	IngestedFeedback int       `json:"ingested_feedback"` // Sessions that added a new ticket
	BatchIngested    int       `json:"batch_ingested"`    // Tickets added by batch ingestion
	IngestDropped    int       `json:"ingest_dropped"`    // Rows dropped during ingestion
	StartDate        time.Time `json:"start_date"`        // Period start
	EndDate          time.Time `json:"end_date"`          // Period end
	// HelpfulRate is helpful / (helpful + ingested), 0 when no feedback
	HelpfulRate float64 `json:"helpful_rate"`
}

// AnalyticsResponse represents the API response for analytics
// @Description Analytics response payload
type AnalyticsResponse struct {
	Success bool              `json:"success" example:"true"`
	Summary *AnalyticsSummary `json:"summary,omitempty"`
	Error   string            `json:"error,omitempty" example:""`
}
