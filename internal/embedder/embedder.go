// Package embedder maps summaries to fixed-length vectors.
package embedder

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"

	"dupfinder/internal/similarity"
	"dupfinder/internal/utils"
)

// ErrEmptyResponse is returned when a provider returns no vector
var ErrEmptyResponse = errors.New("embedding response carried no vector")

// EmbeddingsCreator is the slice of the OpenAI client used for embeddings
type EmbeddingsCreator interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAI embeds text through the OpenAI embeddings endpoint
type OpenAI struct {
	client     EmbeddingsCreator
	dimensions int
}

// NewOpenAI creates an OpenAI embedder producing vectors of the given length
func NewOpenAI(client EmbeddingsCreator, dimensions int) *OpenAI {
	return &OpenAI{client: client, dimensions: dimensions}
}

// Embed returns the embedding of text
func (e *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.client.CreateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, ErrEmptyResponse
	}
	return vectors[0], nil
}

// Dimensions returns the configured vector length
func (e *OpenAI) Dimensions() int {
	return e.dimensions
}

// Hashing is a local bag-of-words embedder. Tokens are hashed into a fixed
// number of buckets and the result is scaled to unit length, so texts with
// no shared terms have cosine distance 1.
type Hashing struct {
	dimensions int
}

// NewHashing creates a Hashing embedder
func NewHashing(dimensions int) *Hashing {
	return &Hashing{dimensions: dimensions}
}

// Embed returns the hashed term-frequency vector of text
func (e *Hashing) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.dimensions <= 0 {
		return nil, fmt.Errorf("hashing embedder needs positive dimensions, got %d", e.dimensions)
	}

	vector := make([]float32, e.dimensions)
	for _, token := range utils.Tokens(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		vector[h.Sum64()%uint64(e.dimensions)]++
	}
	similarity.Normalize(vector)
	return vector, nil
}

// Dimensions returns the vector length
func (e *Hashing) Dimensions() int {
	return e.dimensions
}
