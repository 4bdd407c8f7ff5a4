// Package qdrantstore keeps tickets as points in a Qdrant collection with
// cosine distance.
package qdrantstore

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	"dupfinder/internal/models"
	"dupfinder/internal/similarity"
	"dupfinder/internal/store"

	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ErrNegativeID is returned for ticket ids Qdrant cannot use as point ids
var ErrNegativeID = errors.New("qdrant point ids must be non-negative")

const (
	payloadTitle      = "title"
	payloadBody       = "clean_question_body"
	payloadAnswer     = "clean_answer_body"
	payloadSummary    = "summary"
	payloadCreatedAt  = "created_at"
	payloadTimeLayout = time.RFC3339Nano
)

// Config describes the Qdrant connection
type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
	Dimensions int
}

type pointsAPI interface {
	Upsert(ctx context.Context, in *qdrant.UpsertPoints, opts ...grpc.CallOption) (*qdrant.PointsOperationResponse, error)
	Query(ctx context.Context, in *qdrant.QueryPoints, opts ...grpc.CallOption) (*qdrant.QueryResponse, error)
	Count(ctx context.Context, in *qdrant.CountPoints, opts ...grpc.CallOption) (*qdrant.CountResponse, error)
	Get(ctx context.Context, in *qdrant.GetPoints, opts ...grpc.CallOption) (*qdrant.GetResponse, error)
}

type collectionsAPI interface {
	Get(ctx context.Context, in *qdrant.GetCollectionInfoRequest, opts ...grpc.CallOption) (*qdrant.GetCollectionInfoResponse, error)
	Create(ctx context.Context, in *qdrant.CreateCollection, opts ...grpc.CallOption) (*qdrant.CollectionOperationResponse, error)
}

// Store is a Qdrant-backed ticket store
type Store struct {
	points      pointsAPI
	collections collectionsAPI
	conn        *grpc.ClientConn
	collection  string
	dimensions  int
	logger      zerolog.Logger

	// Qdrant upserts overwrite, so appends check and write under one lock
	appendMu sync.Mutex
}

// Open dials Qdrant over gRPC and makes sure the collection exists
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*Store, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	creds := insecure.NewCredentials()
	if cfg.UseTLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts := []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	if cfg.APIKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant at %s: %w", addr, err)
	}

	s := newStore(qdrant.NewPointsClient(conn), qdrant.NewCollectionsClient(conn), cfg, logger)
	s.conn = conn

	if err := s.EnsureCollection(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func newStore(points pointsAPI, collections collectionsAPI, cfg Config, logger zerolog.Logger) *Store {
	return &Store{
		points:      points,
		collections: collections,
		collection:  cfg.Collection,
		dimensions:  cfg.Dimensions,
		logger:      logger.With().Str("component", "qdrant_store").Str("collection", cfg.Collection).Logger(),
	}
}

func apiKeyInterceptor(apiKey string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", apiKey)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// EnsureCollection creates the collection when missing and fails when an
// existing one has a different vector size
func (s *Store) EnsureCollection(ctx context.Context) error {
	info, err := s.collections.Get(ctx, &qdrant.GetCollectionInfoRequest{CollectionName: s.collection})
	if err != nil {
		if st, ok := status.FromError(err); ok && st.Code() == codes.NotFound {
			s.logger.Info().Int("dimensions", s.dimensions).Msg("Collection not found, creating it")
			_, err := s.collections.Create(ctx, &qdrant.CreateCollection{
				CollectionName: s.collection,
				VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
					Size:     uint64(s.dimensions),
					Distance: qdrant.Distance_Cosine,
				}),
			})
			if err != nil {
				return fmt.Errorf("could not create collection: %w", err)
			}
			return nil
		}
		return fmt.Errorf("could not get collection info: %w", err)
	}

	size := info.GetResult().GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()
	if size != uint64(s.dimensions) {
		return fmt.Errorf("%w: collection %s holds %d-dimensional vectors, configured %d",
			store.ErrDimensionMismatch, s.collection, size, s.dimensions)
	}

	s.logger.Info().Msg("Collection already exists")
	return nil
}

// Append stores a ticket as a point keyed by its id
func (s *Store) Append(ctx context.Context, ticket models.Ticket) error {
	if ticket.ID < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeID, ticket.ID)
	}
	if err := store.CheckDimensions(ticket.Embedding, s.dimensions); err != nil {
		return err
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now().UTC()
	}

	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	existing, err := s.points.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            []*qdrant.PointId{qdrant.NewIDNum(uint64(ticket.ID))},
	})
	if err != nil {
		return fmt.Errorf("could not check ticket id: %w", err)
	}
	if len(existing.GetResult()) > 0 {
		return fmt.Errorf("%w: %d", store.ErrDuplicateTicket, ticket.ID)
	}

	_, err = s.points.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDNum(uint64(ticket.ID)),
			Vectors: qdrant.NewVectors(ticket.Embedding...),
			Payload: toPayload(ticket),
		}},
	})
	if err != nil {
		return fmt.Errorf("could not upsert ticket: %w", err)
	}
	return nil
}

// Search returns the k tickets closest to vector. Twice k candidates are
// fetched so equal scores at the cut-off can be ordered by ticket id; that
// holds while no more than k extra points share the cut-off score.
func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]models.SearchResult, error) {
	if err := store.CheckDimensions(vector, s.dimensions); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []models.SearchResult{}, nil
	}

	resp, err := s.points.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(2 * k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	results := make([]models.SearchResult, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		results = append(results, resultFromPoint(point))
	}
	similarity.SortResults(results)
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Count returns the exact number of stored tickets
func (s *Store) Count(ctx context.Context) (int, error) {
	resp, err := s.points.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count failed: %w", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// Close closes the gRPC connection
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func toPayload(ticket models.Ticket) map[string]*qdrant.Value {
	payload := map[string]any{
		payloadTitle:     ticket.Title,
		payloadBody:      ticket.CleanBody,
		payloadSummary:   ticket.Summary,
		payloadCreatedAt: ticket.CreatedAt.UTC().Format(payloadTimeLayout),
	}
	if ticket.AcceptedAnswerBody != nil {
		payload[payloadAnswer] = *ticket.AcceptedAnswerBody
	}
	return qdrant.NewValueMap(payload)
}

// resultFromPoint converts a cosine similarity score into a distance
func resultFromPoint(point *qdrant.ScoredPoint) models.SearchResult {
	payload := point.GetPayload()
	result := models.SearchResult{
		ID:                int64(point.GetId().GetNum()),
		Title:             payload[payloadTitle].GetStringValue(),
		CleanQuestionBody: payload[payloadBody].GetStringValue(),
		Distance:          clampDistance(1 - float64(point.GetScore())),
	}
	if answer, ok := payload[payloadAnswer]; ok {
		if _, isString := answer.GetKind().(*qdrant.Value_StringValue); isString {
			text := answer.GetStringValue()
			result.CleanAnswerBody = &text
		}
	}
	return result
}

func clampDistance(d float64) float64 {
	switch {
	case d < 0:
		return 0
	case d > 2:
		return 2
	}
	return d
}
