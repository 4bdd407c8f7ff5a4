package dedup

import (
	"context"
	"fmt"
	"strings"

	"dupfinder/internal/models"
)

// FeedbackOutcome is the acknowledgment of a feedback request
type FeedbackOutcome struct {
	State    State
	TicketID *int64
}

// Feedback records whether the search results answered the query. Negative
// feedback appends the query as a new ticket.
//
// With a session id the session's state machine guards the non-idempotent
// append: only the first feedback leaves StateAwaitingFeedback, and a failed
// ingestion puts the session back so the caller may retry. Without a session
// id every call is handled on its own.
func (s *Service) Feedback(ctx context.Context, req models.FeedbackRequest) (*FeedbackOutcome, error) {
	if req.SessionID == "" {
		return s.statelessFeedback(ctx, req)
	}

	session, found, err := s.sessions.Update(req.SessionID, func(current Session) (Session, error) {
		return current.begin(req.Helpful)
	})
	if !found {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Helpful {
		s.track(func(t Tracker) error { return t.TrackFeedback(true) })
		s.logger.Info().Str("session_id", session.ID).Msg("Session resolved by existing ticket")
		return &FeedbackOutcome{State: StateResolved}, nil
	}

	ticket, err := s.ingestFromSession(ctx, session, req)
	if err != nil {
		if _, _, rbErr := s.sessions.Update(session.ID, Session.rollback); rbErr != nil {
			s.logger.Error().Err(rbErr).Str("session_id", session.ID).Msg("Failed to roll back session")
		}
		s.logger.Error().Err(err).Str("session_id", session.ID).Msg("Feedback ingestion failed")
		return nil, fmt.Errorf("%w: %w", ErrFeedbackPersist, err)
	}

	if _, found, err := s.sessions.Update(session.ID, func(current Session) (Session, error) {
		return current.complete(ticket.ID)
	}); !found || err != nil {
		s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("Session gone before ingestion completed")
	}

	s.afterIngest(ctx, ticket)
	return &FeedbackOutcome{State: StateIngested, TicketID: &ticket.ID}, nil
}

// ingestFromSession reuses the session's summary and embedding unless the
// feedback carries different text than the search did
func (s *Service) ingestFromSession(ctx context.Context, session Session, req models.FeedbackRequest) (models.Ticket, error) {
	title, description := req.Title, req.Description
	if title == "" && description == "" {
		title, description = session.Title, session.Description
	}

	if title == session.Title && description == session.Description && session.Embedding != nil {
		p, err := s.prepareCached(session)
		if err != nil {
			return models.Ticket{}, err
		}
		return s.appendTicket(ctx, p, s.newTicketID())
	}

	p, err := s.prepare(ctx, models.RawTicket{Title: title, Body: description})
	if err != nil {
		return models.Ticket{}, err
	}
	return s.appendTicket(ctx, p, s.newTicketID())
}

func (s *Service) prepareCached(session Session) (prepared, error) {
	p := prepared{summary: session.Summary, embedding: session.Embedding}
	raw := models.RawTicket{Title: session.Title, Body: session.Description}
	clean, err := s.clean(raw)
	if err != nil {
		return prepared{}, err
	}
	p.clean = clean
	return p, nil
}

func (s *Service) statelessFeedback(ctx context.Context, req models.FeedbackRequest) (*FeedbackOutcome, error) {
	if req.Helpful {
		s.track(func(t Tracker) error { return t.TrackFeedback(true) })
		return &FeedbackOutcome{State: StateResolved}, nil
	}

	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Description) == "" {
		return nil, ErrInvalidQuery
	}

	p, err := s.prepare(ctx, models.RawTicket{Title: req.Title, Body: req.Description})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedbackPersist, err)
	}
	ticket, err := s.appendTicket(ctx, p, s.newTicketID())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedbackPersist, err)
	}

	s.afterIngest(ctx, ticket)
	return &FeedbackOutcome{State: StateIngested, TicketID: &ticket.ID}, nil
}

func (s *Service) afterIngest(ctx context.Context, ticket models.Ticket) {
	s.track(func(t Tracker) error { return t.TrackFeedback(false) })
	s.logger.Info().Int64("ticket_id", ticket.ID).Msg("Ticket added from feedback")

	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyNewTicket(ctx, ticket); err != nil {
		s.logger.Warn().Err(err).Int64("ticket_id", ticket.ID).Msg("Failed to send new ticket notification")
	}
}
