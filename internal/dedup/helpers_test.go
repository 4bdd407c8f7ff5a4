package dedup

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dupfinder/internal/embedder"
	"dupfinder/internal/models"
	"dupfinder/internal/store/memory"

	"github.com/rs/zerolog"
)

const testDimensions = 4096

// fakeSummarizer returns a canned summary per input text, or the text itself
type fakeSummarizer struct {
	mu        sync.Mutex
	summaries map[string]string
	err       error
	calls     atomic.Int32
	block     bool
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if summary, ok := f.summaries[text]; ok {
		return summary, nil
	}
	return text, nil
}

func (f *fakeSummarizer) set(text, summary string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summaries == nil {
		f.summaries = make(map[string]string)
	}
	f.summaries[text] = summary
}

// fakeEmbedder wraps the hashing embedder and can be told to misbehave
type fakeEmbedder struct {
	inner    *embedder.Hashing
	err      error
	truncate bool
	calls    atomic.Int32
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{inner: embedder.NewHashing(testDimensions)}
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	v, err := f.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if f.truncate {
		return v[:len(v)-1], nil
	}
	return v, nil
}

func (f *fakeEmbedder) Dimensions() int {
	return f.inner.Dimensions()
}

// flakyStore wraps the memory store with injectable failures
type flakyStore struct {
	*memory.Store
	appendErrs []error // consumed one per Append call
	searchErr  error
	pingErr    error
	hold       chan struct{}
	entered    chan struct{}
	mu         sync.Mutex
}

func (f *flakyStore) Append(ctx context.Context, ticket models.Ticket) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.hold != nil {
		<-f.hold
	}
	f.mu.Lock()
	var err error
	if len(f.appendErrs) > 0 {
		err, f.appendErrs = f.appendErrs[0], f.appendErrs[1:]
	}
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Store.Append(ctx, ticket)
}

func (f *flakyStore) Search(ctx context.Context, vector []float32, k int) ([]models.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.Store.Search(ctx, vector, k)
}

func (f *flakyStore) Ping(ctx context.Context) error {
	return f.pingErr
}

type fakeTracker struct {
	mu       sync.Mutex
	searches int
	helpful  int
	ingested int
	batches  [][2]int
}

func (f *fakeTracker) TrackSearch(resultCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches++
	return nil
}

func (f *fakeTracker) TrackFeedback(helpful bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if helpful {
		f.helpful++
	} else {
		f.ingested++
	}
	return nil
}

func (f *fakeTracker) TrackIngest(ingested, dropped int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, [2]int{ingested, dropped})
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	tickets []models.Ticket
	err     error
}

func (f *fakeNotifier) NotifyNewTicket(ctx context.Context, ticket models.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tickets = append(f.tickets, ticket)
	return f.err
}

type harness struct {
	svc        *Service
	store      *flakyStore
	summarizer *fakeSummarizer
	embedder   *fakeEmbedder
	tracker    *fakeTracker
	notifier   *fakeNotifier
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		store:      &flakyStore{Store: memory.New(testDimensions)},
		summarizer: &fakeSummarizer{},
		embedder:   newFakeEmbedder(),
		tracker:    &fakeTracker{},
		notifier:   &fakeNotifier{},
	}
	h.svc = NewService(h.summarizer, h.embedder, h.store, zerolog.Nop(), opts,
		WithTracker(h.tracker), WithNotifier(h.notifier))
	t.Cleanup(h.svc.Close)

	var next atomic.Int64
	next.Store(1_000_000)
	h.svc.newTicketID = func() int64 { return next.Add(1) }
	h.svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return h
}

// flush waits for queued analytics events to reach the tracker
func (h *harness) flush() {
	h.svc.Close()
}

func (h *harness) count(t *testing.T) int {
	t.Helper()
	n, err := h.store.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func (h *harness) seed(t *testing.T, rows ...models.RawTicket) {
	t.Helper()
	for _, row := range rows {
		if _, err := h.svc.Ingest(context.Background(), row); err != nil {
			t.Fatalf("seed ticket %d: %v", row.ID, err)
		}
	}
}

var errBoom = errors.New("boom")
