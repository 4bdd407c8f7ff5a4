// Package similarity ranks stored tickets by cosine distance to a query vector.
//
// Ranking is a brute-force linear scan. That is exact and fast enough for
// corpora up to roughly 10^4 tickets; an approximate index only becomes
// worth building somewhere around 10^6 entries.
package similarity

import (
	"cmp"
	"math"
	"slices"

	"dupfinder/internal/models"
)

// DefaultTopK is the number of results returned to the user
const DefaultTopK = 5

// CosineDistance returns 1 - cos(a, b), clamped to [0, 2].
// Vectors of different length or with zero norm are at distance 1.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}

	var dotProduct, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dotProduct += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 1
	}

	distance := 1 - dotProduct/(math.Sqrt(normA)*math.Sqrt(normB))
	return math.Min(2, math.Max(0, distance))
}

// TopK returns the k tickets closest to query, ascending by distance with
// ties broken by ascending ticket id. The input slice is not modified.
func TopK(query []float32, tickets []models.Ticket, k int) []models.SearchResult {
	if k <= 0 || len(tickets) == 0 {
		return []models.SearchResult{}
	}

	results := make([]models.SearchResult, len(tickets))
	for i, ticket := range tickets {
		results[i] = models.ResultFromTicket(ticket, CosineDistance(query, ticket.Embedding))
	}

	SortResults(results)

	if k < len(results) {
		results = results[:k]
	}
	return results
}

// SortResults orders results by distance, then by id
func SortResults(results []models.SearchResult) {
	slices.SortFunc(results, func(a, b models.SearchResult) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// Normalize scales v to unit length in place. Zero vectors are left untouched.
func Normalize(v []float32) {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
