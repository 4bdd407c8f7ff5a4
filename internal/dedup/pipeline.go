package dedup

import (
	"context"
	"fmt"

	"dupfinder/internal/models"
	"dupfinder/internal/normalize"
)

// prepared is a cleaned ticket with its derived summary and embedding
type prepared struct {
	clean     normalize.CleanTicket
	summary   string
	embedding []float32
}

func (p prepared) ticket(id int64) models.Ticket {
	return models.Ticket{
		ID:                 id,
		Title:              p.clean.Title,
		CleanBody:          p.clean.CleanBody,
		AcceptedAnswerBody: p.clean.AcceptedAnswerBody,
		Summary:            p.summary,
		Embedding:          p.embedding,
	}
}

// prepare runs normalize, summarize and embed. Ingestion and search go
// through the same steps so their vectors are comparable.
func (s *Service) prepare(ctx context.Context, raw models.RawTicket) (prepared, error) {
	clean, err := s.clean(raw)
	if err != nil {
		return prepared{}, err
	}

	summary, err := s.summarize(ctx, clean.Text())
	if err != nil {
		return prepared{}, fmt.Errorf("%w: %w", ErrSummarization, err)
	}

	embedding, err := s.embed(ctx, summary)
	if err != nil {
		return prepared{}, err
	}

	return prepared{clean: clean, summary: summary, embedding: embedding}, nil
}

func (s *Service) clean(raw models.RawTicket) (normalize.CleanTicket, error) {
	clean := normalize.Clean(raw)
	if normalize.HasTags(clean.CleanBody) {
		return normalize.CleanTicket{}, fmt.Errorf("%w: markup left in ticket body", ErrNormalization)
	}
	return clean, nil
}

func (s *Service) summarize(ctx context.Context, text string) (string, error) {
	ctx, cancel := s.externalContext(ctx)
	defer cancel()
	return s.summarizer.Summarize(ctx, text)
}

func (s *Service) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := s.externalContext(ctx)
	defer cancel()

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	if want := s.embedder.Dimensions(); len(embedding) != want {
		return nil, fmt.Errorf("%w: %w: got %d, expected %d", ErrEmbedding, ErrDimensionMismatch, len(embedding), want)
	}
	return embedding, nil
}

func (s *Service) externalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.ExternalTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.ExternalTimeout)
}

// appendTicket stores a prepared ticket under id
func (s *Service) appendTicket(ctx context.Context, p prepared, id int64) (models.Ticket, error) {
	ticket := p.ticket(id)
	ticket.CreatedAt = s.now().UTC()
	if err := s.store.Append(ctx, ticket); err != nil {
		return models.Ticket{}, fmt.Errorf("append ticket %d: %w", id, err)
	}
	return ticket, nil
}
