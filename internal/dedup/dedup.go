// Package dedup runs the duplicate ticket workflow: a query is normalized,
// summarized and embedded, the closest stored tickets are returned, and
// negative feedback appends the query to the corpus.
package dedup

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"dupfinder/internal/cache"
	"dupfinder/internal/models"
	"dupfinder/internal/similarity"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Summarizer produces the synopsis that gets embedded
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Embedder maps text to a fixed-length vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// Store is an append-only ticket corpus with nearest-neighbour search
type Store interface {
	Append(ctx context.Context, ticket models.Ticket) error
	Search(ctx context.Context, vector []float32, k int) ([]models.SearchResult, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Tracker records workflow counters
type Tracker interface {
	TrackSearch(resultCount int) error
	TrackFeedback(helpful bool) error
	TrackIngest(ingested, dropped int) error
}

// Notifier is told about tickets created from negative feedback
type Notifier interface {
	NotifyNewTicket(ctx context.Context, ticket models.Ticket) error
}

// trackQueueSize bounds the analytics events waiting to be written
const trackQueueSize = 256

// Options tunes the service
type Options struct {
	TopK            int           // Results per search, similarity.DefaultTopK when zero
	SessionTTL      time.Duration // How long a session waits for feedback
	ExternalTimeout time.Duration // Per summarizer/embedder call; zero means none
}

// Service is the duplicate detection workflow
type Service struct {
	summarizer Summarizer
	embedder   Embedder
	store      Store
	tracker    Tracker
	notifier   Notifier
	sessions   *cache.Cache[Session]
	opts       Options
	logger     zerolog.Logger

	// Analytics writes run on one goroutine, off the request path
	events     chan func(Tracker) error
	eventsDone chan struct{}
	eventsMu   sync.RWMutex
	eventsShut bool

	newTicketID  func() int64
	newSessionID func() string
	now          func() time.Time
}

// Option configures optional collaborators
type Option func(*Service)

// WithTracker records search and feedback counters
func WithTracker(t Tracker) Option {
	return func(s *Service) { s.tracker = t }
}

// WithNotifier announces tickets created from feedback
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// NewService wires the workflow
func NewService(summarizer Summarizer, embedder Embedder, store Store, logger zerolog.Logger, opts Options, options ...Option) *Service {
	if opts.TopK <= 0 {
		opts.TopK = similarity.DefaultTopK
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}

	s := &Service{
		summarizer:   summarizer,
		embedder:     embedder,
		store:        store,
		sessions:     cache.New[Session](),
		opts:         opts,
		logger:       logger.With().Str("component", "dedup").Logger(),
		newTicketID:  NewTicketID,
		newSessionID: uuid.NewString,
		now:          time.Now,
	}
	for _, option := range options {
		option(s)
	}
	if s.tracker != nil {
		s.events = make(chan func(Tracker) error, trackQueueSize)
		s.eventsDone = make(chan struct{})
		go s.runTracker()
	}
	return s
}

// NewTicketID returns a random positive 63-bit id
func NewTicketID() int64 {
	u := uuid.New()
	return int64(binary.BigEndian.Uint64(u[:8]) & math.MaxInt64)
}

// Count returns the corpus size
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ping checks the store connection. Stores without a connection always pass.
func (s *Service) Ping(ctx context.Context) error {
	p, ok := s.store.(pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("ticket store unreachable: %w", err)
	}
	return nil
}

// PurgeSessions drops expired sessions and returns how many were removed
func (s *Service) PurgeSessions() int {
	return s.sessions.Purge()
}

// RunSessionJanitor purges expired sessions every interval until ctx ends
func (s *Service) RunSessionJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.PurgeSessions(); removed > 0 {
				s.logger.Debug().Int("removed", removed).Msg("Purged expired sessions")
			}
		}
	}
}

// Close writes the analytics events still queued. Later events are dropped.
func (s *Service) Close() {
	if s.events == nil {
		return
	}
	s.eventsMu.Lock()
	if !s.eventsShut {
		s.eventsShut = true
		close(s.events)
	}
	s.eventsMu.Unlock()
	<-s.eventsDone
}

// track queues an analytics event without waiting for it to be written
func (s *Service) track(fn func(Tracker) error) {
	if s.events == nil {
		return
	}
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	if s.eventsShut {
		return
	}
	select {
	case s.events <- fn:
	default:
		s.logger.Warn().Msg("Analytics queue full, dropping event")
	}
}

func (s *Service) runTracker() {
	defer close(s.eventsDone)
	for fn := range s.events {
		if err := fn(s.tracker); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to track analytics event")
		}
	}
}
