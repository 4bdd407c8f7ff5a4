package dedup

import (
	"context"
	"slices"
	"sync"

	"dupfinder/internal/models"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Ingest normalizes, summarizes and embeds a raw ticket and appends it
// under its own id. Nothing is stored when any step fails.
func (s *Service) Ingest(ctx context.Context, raw models.RawTicket) (models.Ticket, error) {
	p, err := s.prepare(ctx, raw)
	if err != nil {
		return models.Ticket{}, err
	}
	return s.appendTicket(ctx, p, raw.ID)
}

// BatchOptions bounds batch ingestion
type BatchOptions struct {
	Concurrency   int     // Rows processed in parallel, 1 when zero
	RatePerSecond float64 // Rows started per second; zero means unlimited
}

// RowError describes a dropped row
type RowError struct {
	Index int
	ID    int64
	Err   error
}

// BatchReport summarizes a batch ingestion
type BatchReport struct {
	Total    int
	Ingested int
	Dropped  []RowError
}

// IngestBatch ingests rows concurrently. A failing row is dropped and
// reported; it never stops the other rows. The returned error is only set
// when ctx ends before every row was attempted.
func (s *Service) IngestBatch(ctx context.Context, rows []models.RawTicket, opts BatchOptions) (BatchReport, error) {
	report := BatchReport{Total: len(rows)}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	var limiter *rate.Limiter
	if opts.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, row := range rows {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
			}

			_, err := s.Ingest(gctx, row)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Dropped = append(report.Dropped, RowError{Index: i, ID: row.ID, Err: err})
				s.logger.Warn().Err(err).Int("row", i).Int64("ticket_id", row.ID).Msg("Dropped row during ingestion")
				return nil
			}
			report.Ingested++
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	slices.SortFunc(report.Dropped, func(a, b RowError) int { return a.Index - b.Index })
	s.track(func(t Tracker) error { return t.TrackIngest(report.Ingested, len(report.Dropped)) })
	s.logger.Info().
		Int("total", report.Total).
		Int("ingested", report.Ingested).
		Int("dropped", len(report.Dropped)).
		Msg("Batch ingestion finished")

	return report, err
}
