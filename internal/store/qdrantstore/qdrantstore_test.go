package qdrantstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"dupfinder/internal/models"
	"dupfinder/internal/store"

	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakePoints struct {
	stored   map[uint64]*qdrant.PointStruct
	scored   []*qdrant.ScoredPoint
	query    *qdrant.QueryPoints
	queryErr error
	getErr   error
}

func newFakePoints() *fakePoints {
	return &fakePoints{stored: make(map[uint64]*qdrant.PointStruct)}
}

func (f *fakePoints) Upsert(ctx context.Context, in *qdrant.UpsertPoints, opts ...grpc.CallOption) (*qdrant.PointsOperationResponse, error) {
	for _, p := range in.GetPoints() {
		f.stored[p.GetId().GetNum()] = p
	}
	return &qdrant.PointsOperationResponse{}, nil
}

func (f *fakePoints) Query(ctx context.Context, in *qdrant.QueryPoints, opts ...grpc.CallOption) (*qdrant.QueryResponse, error) {
	f.query = in
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &qdrant.QueryResponse{Result: f.scored}, nil
}

func (f *fakePoints) Count(ctx context.Context, in *qdrant.CountPoints, opts ...grpc.CallOption) (*qdrant.CountResponse, error) {
	return &qdrant.CountResponse{Result: &qdrant.CountResult{Count: uint64(len(f.stored))}}, nil
}

func (f *fakePoints) Get(ctx context.Context, in *qdrant.GetPoints, opts ...grpc.CallOption) (*qdrant.GetResponse, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var found []*qdrant.RetrievedPoint
	for _, id := range in.GetIds() {
		if p, ok := f.stored[id.GetNum()]; ok {
			found = append(found, &qdrant.RetrievedPoint{Id: p.GetId(), Payload: p.GetPayload()})
		}
	}
	return &qdrant.GetResponse{Result: found}, nil
}

type fakeCollections struct {
	size    uint64
	missing bool
	created *qdrant.CreateCollection
}

func (f *fakeCollections) Get(ctx context.Context, in *qdrant.GetCollectionInfoRequest, opts ...grpc.CallOption) (*qdrant.GetCollectionInfoResponse, error) {
	if f.missing {
		return nil, status.Error(codes.NotFound, "collection not found")
	}
	return &qdrant.GetCollectionInfoResponse{
		Result: &qdrant.CollectionInfo{
			Config: &qdrant.CollectionConfig{
				Params: &qdrant.CollectionParams{
					VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{Size: f.size, Distance: qdrant.Distance_Cosine}),
				},
			},
		},
	}, nil
}

func (f *fakeCollections) Create(ctx context.Context, in *qdrant.CreateCollection, opts ...grpc.CallOption) (*qdrant.CollectionOperationResponse, error) {
	f.created = in
	f.missing = false
	return &qdrant.CollectionOperationResponse{Result: true}, nil
}

func newTestStore(points *fakePoints, collections *fakeCollections) *Store {
	return newStore(points, collections, Config{Collection: "tickets", Dimensions: 2}, zerolog.Nop())
}

func scored(id uint64, score float32, title string) *qdrant.ScoredPoint {
	return &qdrant.ScoredPoint{
		Id:      qdrant.NewIDNum(id),
		Score:   score,
		Payload: qdrant.NewValueMap(map[string]any{payloadTitle: title, payloadBody: "body"}),
	}
}

func TestEnsureCollection(t *testing.T) {
	t.Run("creates missing collection", func(t *testing.T) {
		collections := &fakeCollections{missing: true}
		s := newTestStore(newFakePoints(), collections)

		require.NoError(t, s.EnsureCollection(context.Background()))
		require.NotNil(t, collections.created)
		assert.Equal(t, "tickets", collections.created.GetCollectionName())
		params := collections.created.GetVectorsConfig().GetParams()
		assert.Equal(t, uint64(2), params.GetSize())
		assert.Equal(t, qdrant.Distance_Cosine, params.GetDistance())
	})

	t.Run("accepts matching collection", func(t *testing.T) {
		s := newTestStore(newFakePoints(), &fakeCollections{size: 2})
		assert.NoError(t, s.EnsureCollection(context.Background()))
	})

	t.Run("rejects mismatched collection", func(t *testing.T) {
		s := newTestStore(newFakePoints(), &fakeCollections{size: 768})
		err := s.EnsureCollection(context.Background())
		assert.ErrorIs(t, err, store.ErrDimensionMismatch)
	})
}

func TestAppend(t *testing.T) {
	points := newFakePoints()
	s := newTestStore(points, &fakeCollections{size: 2})
	answer := "Reinstall."
	ticket := models.Ticket{
		ID:                 42,
		Title:              "App crashes",
		CleanBody:          "after splash",
		AcceptedAnswerBody: &answer,
		Summary:            "crash",
		Embedding:          []float32{0.6, 0.8},
		CreatedAt:          time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	require.NoError(t, s.Append(context.Background(), ticket))
	stored := points.stored[42]
	require.NotNil(t, stored)
	assert.Equal(t, "App crashes", stored.GetPayload()[payloadTitle].GetStringValue())
	assert.Equal(t, "Reinstall.", stored.GetPayload()[payloadAnswer].GetStringValue())
	assert.Equal(t, "2024-05-01T00:00:00Z", stored.GetPayload()[payloadCreatedAt].GetStringValue())

	count, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	err = s.Append(context.Background(), ticket)
	assert.ErrorIs(t, err, store.ErrDuplicateTicket)
}

func TestAppend_Rejections(t *testing.T) {
	s := newTestStore(newFakePoints(), &fakeCollections{size: 2})

	err := s.Append(context.Background(), models.Ticket{ID: -1, Embedding: []float32{1, 0}})
	assert.ErrorIs(t, err, ErrNegativeID)

	err = s.Append(context.Background(), models.Ticket{ID: 1, Embedding: []float32{1}})
	assert.ErrorIs(t, err, store.ErrDimensionMismatch)
}

func TestAppend_LookupFailure(t *testing.T) {
	points := newFakePoints()
	points.getErr = status.Error(codes.Unavailable, "down")
	s := newTestStore(points, &fakeCollections{size: 2})

	err := s.Append(context.Background(), models.Ticket{ID: 1, Embedding: []float32{1, 0}})
	assert.ErrorContains(t, err, "could not check ticket id")
	assert.Empty(t, points.stored)
}

func TestSearch_ConvertsScoresAndBreaksTies(t *testing.T) {
	points := newFakePoints()
	points.scored = []*qdrant.ScoredPoint{
		scored(9, 0.5, "tie high id"),
		scored(4, 0.5, "tie low id"),
		scored(1, 1.0000001, "exact"),
		scored(7, -0.2, "opposite"),
	}
	s := newTestStore(points, &fakeCollections{size: 2})

	results, err := s.Search(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, int64(1), results[0].ID)
	assert.Equal(t, 0.0, results[0].Distance)
	assert.Equal(t, int64(4), results[1].ID)
	assert.Equal(t, int64(9), results[2].ID)
	assert.InDelta(t, 0.5, results[1].Distance, 1e-6)
	assert.Nil(t, results[0].CleanAnswerBody)

	assert.Equal(t, uint64(6), points.query.GetLimit())
	assert.True(t, points.query.GetWithPayload().GetEnable())
}

func TestSearch_EmptyAndErrors(t *testing.T) {
	points := newFakePoints()
	s := newTestStore(points, &fakeCollections{size: 2})

	results, err := s.Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)

	points.queryErr = errors.New("unavailable")
	_, err = s.Search(context.Background(), []float32{1, 0}, 5)
	assert.ErrorContains(t, err, "qdrant query failed")

	_, err = s.Search(context.Background(), []float32{1, 0, 0}, 5)
	assert.ErrorIs(t, err, store.ErrDimensionMismatch)
}

func TestResultFromPoint_Answer(t *testing.T) {
	point := &qdrant.ScoredPoint{
		Id:    qdrant.NewIDNum(3),
		Score: 0.9,
		Payload: qdrant.NewValueMap(map[string]any{
			payloadTitle:  "t",
			payloadBody:   "b",
			payloadAnswer: "a",
		}),
	}

	result := resultFromPoint(point)
	assert.Equal(t, int64(3), result.ID)
	require.NotNil(t, result.CleanAnswerBody)
	assert.Equal(t, "a", *result.CleanAnswerBody)
	assert.InDelta(t, 0.1, result.Distance, 1e-6)
}

func TestClose_WithoutConnection(t *testing.T) {
	s := newTestStore(newFakePoints(), &fakeCollections{size: 2})
	assert.NoError(t, s.Close())
}
