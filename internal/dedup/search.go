package dedup

import (
	"context"
	"fmt"
	"strings"

	"dupfinder/internal/models"
)

// SearchOutcome is the result of a search
type SearchOutcome struct {
	SessionID string
	Results   []models.SearchResult
}

// Search returns the tickets closest to the query and opens a feedback
// session for it
func (s *Service) Search(ctx context.Context, title, description string) (*SearchOutcome, error) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(description) == "" {
		return nil, ErrInvalidQuery
	}

	p, err := s.prepare(ctx, models.RawTicket{Title: title, Body: description})
	if err != nil {
		s.logger.Error().Err(err).Msg("Search pipeline failed")
		return nil, err
	}

	results, err := s.store.Search(ctx, p.embedding, s.opts.TopK)
	if err != nil {
		s.logger.Error().Err(err).Msg("Ticket store search failed")
		return nil, fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
	}
	if results == nil {
		results = []models.SearchResult{}
	}

	session := Session{
		ID:          s.newSessionID(),
		State:       StateAwaitingFeedback,
		Title:       title,
		Description: description,
		Summary:     p.summary,
		Embedding:   p.embedding,
		CreatedAt:   s.now().UTC(),
	}
	s.sessions.Set(session.ID, session, s.opts.SessionTTL)

	s.track(func(t Tracker) error { return t.TrackSearch(len(results)) })
	s.logger.Info().
		Str("session_id", session.ID).
		Int("results", len(results)).
		Msg("Search completed")

	return &SearchOutcome{SessionID: session.ID, Results: results}, nil
}

// Session returns the current state of a search session
func (s *Service) Session(id string) (Session, error) {
	session, ok := s.sessions.Get(id)
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}
