package memory

import (
	"context"
	"sync"
	"testing"

	"dupfinder/internal/models"
	"dupfinder/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ticket(id int64, v ...float32) models.Ticket {
	return models.Ticket{ID: id, Title: "t", CleanBody: "b", Summary: "s", Embedding: v}
}

func TestAppendAndSearch(t *testing.T) {
	ctx := context.Background()
	s := New(2)

	require.NoError(t, s.Append(ctx, ticket(1, 1, 0)))
	require.NoError(t, s.Append(ctx, ticket(2, 0, 1)))
	require.NoError(t, s.Append(ctx, ticket(3, 1, 1)))

	results, err := s.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int64(1), results[0].ID)
	assert.Equal(t, int64(3), results[1].ID)
	assert.Equal(t, int64(2), results[2].ID)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSearch_EmptyStore(t *testing.T) {
	results, err := New(2).Search(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestAppend_Duplicate(t *testing.T) {
	ctx := context.Background()
	s := New(2)
	require.NoError(t, s.Append(ctx, ticket(1, 1, 0)))

	err := s.Append(ctx, ticket(1, 0, 1))
	assert.ErrorIs(t, err, store.ErrDuplicateTicket)

	count, _ := s.Count(ctx)
	assert.Equal(t, 1, count)
}

func TestDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	s := New(3)

	assert.ErrorIs(t, s.Append(ctx, ticket(1, 1, 0)), store.ErrDimensionMismatch)
	_, err := s.Search(ctx, []float32{1, 0}, 5)
	assert.ErrorIs(t, err, store.ErrDimensionMismatch)
}

func TestAppend_CopiesEmbedding(t *testing.T) {
	ctx := context.Background()
	s := New(2)
	tk := ticket(1, 1, 0)
	require.NoError(t, s.Append(ctx, tk))

	tk.Embedding[0] = 0
	tk.Embedding[1] = 1

	stored, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 0}, stored.Embedding)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestConcurrentAppendAndSearch(t *testing.T) {
	ctx := context.Background()
	s := New(2)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(id int64) {
			defer wg.Done()
			assert.NoError(t, s.Append(ctx, ticket(id, 1, float32(id))))
		}(int64(i))
		go func() {
			defer wg.Done()
			results, err := s.Search(ctx, []float32{1, 0}, 5)
			assert.NoError(t, err)
			for i := 1; i < len(results); i++ {
				assert.LessOrEqual(t, results[i-1].Distance, results[i].Distance)
			}
		}()
	}
	wg.Wait()

	count, _ := s.Count(ctx)
	assert.Equal(t, 50, count)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New(2)
	assert.ErrorIs(t, s.Append(ctx, ticket(1, 1, 0)), context.Canceled)
	_, err := s.Search(ctx, []float32{1, 0}, 5)
	assert.ErrorIs(t, err, context.Canceled)
}
