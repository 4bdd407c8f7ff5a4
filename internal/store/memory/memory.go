// Package memory is an in-process append-only ticket store.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dupfinder/internal/models"
	"dupfinder/internal/similarity"
	"dupfinder/internal/store"
)

// Store keeps tickets in insertion order. Stored tickets are never modified,
// so a reader can scan a snapshot of the slice after releasing the lock.
type Store struct {
	mu         sync.RWMutex
	tickets    []models.Ticket
	ids        map[int64]struct{}
	dimensions int
	now        func() time.Time
}

// New creates an empty store for vectors of the given length
func New(dimensions int) *Store {
	return &Store{
		ids:        make(map[int64]struct{}),
		dimensions: dimensions,
		now:        time.Now,
	}
}

// Append stores a ticket. The embedding is copied so later changes by the
// caller cannot reach stored data.
func (s *Store) Append(ctx context.Context, ticket models.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.CheckDimensions(ticket.Embedding, s.dimensions); err != nil {
		return err
	}

	ticket.Embedding = append([]float32(nil), ticket.Embedding...)
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[ticket.ID]; exists {
		return fmt.Errorf("%w: %d", store.ErrDuplicateTicket, ticket.ID)
	}
	s.ids[ticket.ID] = struct{}{}
	s.tickets = append(s.tickets, ticket)
	return nil
}

// Search returns the k tickets closest to vector
func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]models.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := store.CheckDimensions(vector, s.dimensions); err != nil {
		return nil, err
	}

	return similarity.TopK(vector, s.snapshot(), k), nil
}

// Count returns the number of stored tickets
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets), nil
}

// Get returns a stored ticket by id
func (s *Store) Get(id int64) (models.Ticket, bool) {
	for _, t := range s.snapshot() {
		if t.ID == id {
			return t, true
		}
	}
	return models.Ticket{}, false
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

func (s *Store) snapshot() []models.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Capping capacity keeps a concurrent append from writing into our view
	return s.tickets[:len(s.tickets):len(s.tickets)]
}
