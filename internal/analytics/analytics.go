package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"dupfinder/internal/database"
	"dupfinder/internal/models"

	"github.com/rs/zerolog"
)

// EventType constants for tracking different events
const (
	EventSearch           = "search"
	EventFeedbackHelpful  = "feedback_helpful"
	EventFeedbackIngested = "feedback_ingested"
	EventTicketIngested   = "ticket_ingested"
	EventIngestDropped    = "ingest_dropped"
)

// Period constants for analytics queries
const (
	PeriodToday      = "today"
	PeriodYesterday  = "yesterday"
	PeriodLast7Days  = "last_7_days"
	PeriodLast30Days = "last_30_days"
)

// Service handles analytics tracking and retrieval
type Service struct {
	writeClient *database.WriteClient
	logger      zerolog.Logger
	mu          sync.Mutex
	now         func() time.Time
}

// NewService creates the analytics tables if needed and returns the service
func NewService(ctx context.Context, writeClient *database.WriteClient, logger zerolog.Logger) (*Service, error) {
	if writeClient == nil {
		return nil, fmt.Errorf("write client is required for analytics service")
	}

	service := &Service{
		writeClient: writeClient,
		logger:      logger,
		now:         time.Now,
	}

	if err := service.createTables(ctx); err != nil {
		return nil, fmt.Errorf("failed to create analytics tables: %w", err)
	}

	return service, nil
}

func (s *Service) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS analytics_events (
			id SERIAL PRIMARY KEY,
			event_type VARCHAR(50) NOT NULL,
			count INT DEFAULT 1,
			metadata JSONB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analytics_event_type ON analytics_events(event_type)`,
		`CREATE INDEX IF NOT EXISTS idx_analytics_created_at ON analytics_events(created_at)`,
		// Daily aggregates keep summaries cheap
		`CREATE TABLE IF NOT EXISTS analytics_daily (
			id SERIAL PRIMARY KEY,
			date DATE NOT NULL,
			event_type VARCHAR(50) NOT NULL,
			total_count INT DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(date, event_type)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analytics_daily_date ON analytics_daily(date)`,
	}

	for _, query := range queries {
		if _, err := s.writeClient.ExecuteWriteQuery(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// TrackEvent records an analytics event and bumps the daily aggregate
func (s *Service) TrackEvent(eventType string, count int, metadata map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var metadataJSON *string
	if metadata != nil {
		jsonBytes, err := json.Marshal(metadata)
		if err == nil {
			str := string(jsonBytes)
			metadataJSON = &str
		}
	}

	query := `INSERT INTO analytics_events (event_type, count, metadata) VALUES (?, ?, ?)`
	if _, err := s.writeClient.ExecuteWriteQuery(ctx, query, eventType, count, metadataJSON); err != nil {
		return fmt.Errorf("failed to track event: %w", err)
	}

	today := s.now().UTC().Format("2006-01-02")
	aggregateQuery := `
		INSERT INTO analytics_daily (date, event_type, total_count)
		VALUES (?, ?, ?)
		ON CONFLICT (date, event_type) DO UPDATE SET
			total_count = analytics_daily.total_count + EXCLUDED.total_count,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.writeClient.ExecuteWriteQuery(ctx, aggregateQuery, today, eventType, count); err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).Msg("Failed to update daily aggregate")
	}

	return nil
}

// TrackSearch records a served search and how many tickets it returned
func (s *Service) TrackSearch(resultCount int) error {
	return s.TrackEvent(EventSearch, 1, map[string]interface{}{
		"results": resultCount,
	})
}

// TrackFeedback records how a session was closed
func (s *Service) TrackFeedback(helpful bool) error {
	if helpful {
		return s.TrackEvent(EventFeedbackHelpful, 1, nil)
	}
	return s.TrackEvent(EventFeedbackIngested, 1, nil)
}

// TrackIngest records a batch ingestion run
func (s *Service) TrackIngest(ingested, dropped int) error {
	if ingested > 0 {
		if err := s.TrackEvent(EventTicketIngested, ingested, nil); err != nil {
			return err
		}
	}
	if dropped > 0 {
		return s.TrackEvent(EventIngestDropped, dropped, nil)
	}
	return nil
}

// periodBounds resolves a named period, falling back to today
func periodBounds(period string, now time.Time) (string, time.Time, time.Time) {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch period {
	case PeriodYesterday:
		return period, midnight.AddDate(0, 0, -1), midnight.Add(-time.Nanosecond)
	case PeriodLast7Days:
		return period, now.AddDate(0, 0, -7), now
	case PeriodLast30Days:
		return period, now.AddDate(0, 0, -30), now
	default:
		return PeriodToday, midnight, now
	}
}

// GetSummary retrieves the counters for a time period
func (s *Service) GetSummary(ctx context.Context, period string) (*models.AnalyticsSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	period, startDate, endDate := periodBounds(period, s.now())
	summary := &models.AnalyticsSummary{
		Period:    period,
		StartDate: startDate,
		EndDate:   endDate,
	}

	db := s.writeClient.GetDB()
	query := db.Rebind(`
		SELECT event_type, COALESCE(SUM(total_count), 0) AS total
		FROM analytics_daily
		WHERE date >= ? AND date <= ?
		GROUP BY event_type
	`)

	rows, err := db.QueryContext(ctx, query, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to get analytics summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var eventType string
		var total int
		if err := rows.Scan(&eventType, &total); err != nil {
			continue
		}

		switch eventType {
		case EventSearch:
			summary.Searches = total
		case EventFeedbackHelpful:
			summary.HelpfulFeedback = total
		case EventFeedbackIngested:
			summary.IngestedFeedback = total
		case EventTicketIngested:
			summary.BatchIngested = total
		case EventIngestDropped:
			summary.IngestDropped = total
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read analytics summary: %w", err)
	}

	if closed := summary.HelpfulFeedback + summary.IngestedFeedback; closed > 0 {
		summary.HelpfulRate = float64(summary.HelpfulFeedback) / float64(closed)
	}

	return summary, nil
}
