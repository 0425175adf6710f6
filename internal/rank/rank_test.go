package rank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-assistant/internal/domain"
)

func TestCosineSimilarityIdentity(t *testing.T) {
	v := []float64{0.6, 0.8}

	assert.InDelta(t, 1, CosineSimilarity(v, v), 1e-12)
}

func TestCosineSimilarityOpposite(t *testing.T) {
	v := []float64{0.6, 0.8}
	neg := []float64{-0.6, -0.8}

	assert.InDelta(t, -1, CosineSimilarity(v, neg), 1e-12)
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	a := []float64{0.2, -0.5, 0.7}
	b := []float64{-0.1, 0.4, 0.9}

	assert.Equal(t, CosineSimilarity(a, b), CosineSimilarity(b, a))
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	zero := []float64{0, 0, 0}
	v := []float64{1, 2, 3}

	assert.Equal(t, 0.0, CosineSimilarity(zero, v))
	assert.Equal(t, 0.0, CosineSimilarity(v, zero))
	assert.Equal(t, 0.0, CosineSimilarity(zero, zero))
	assert.False(t, math.IsNaN(CosineSimilarity(zero, zero)))
}

func TestCosineSimilarityLengthMismatch(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{1, 0, 0}))
}

func TestCosineSimilarityScaleInvariant(t *testing.T) {
	a := []float64{1, 2, 3}
	scaled := []float64{10, 20, 30}

	assert.InDelta(t, 1, CosineSimilarity(a, scaled), 1e-12)
}

func TestAcceptThresholdBoundary(t *testing.T) {
	assert.True(t, Accept(0.45, 0.45))
	assert.True(t, Accept(0.46, 0.45))
	assert.False(t, Accept(0.4499, 0.45))
}

func storeChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "a-chunk-0", Vector: []float64{1, 0}},
		{ID: "b-chunk-0", Vector: []float64{0, 1}},
		{ID: "c-chunk-0", Vector: []float64{0.7071, 0.7071}},
	}
}

func TestRankOrdersDescending(t *testing.T) {
	results := Rank([]float64{1, 0}, storeChunks(), 10, -1)

	require.Len(t, results, 3)
	assert.Equal(t, "a-chunk-0", results[0].Chunk.ID)
	assert.Equal(t, "c-chunk-0", results[1].Chunk.ID)
	assert.Equal(t, "b-chunk-0", results[2].Chunk.ID)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestRankTiesKeepInsertionOrder(t *testing.T) {
	chunks := []domain.Chunk{
		{ID: "first", Vector: []float64{1, 0}},
		{ID: "second", Vector: []float64{2, 0}}, // same direction, same score
		{ID: "third", Vector: []float64{1, 0}},
	}

	results := Rank([]float64{1, 0}, chunks, 10, -1)

	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Chunk.ID)
	assert.Equal(t, "second", results[1].Chunk.ID)
	assert.Equal(t, "third", results[2].Chunk.ID)
}

func TestRankCapsAtTopK(t *testing.T) {
	results := Rank([]float64{1, 0}, storeChunks(), 2, -1)

	require.Len(t, results, 2)
	assert.Equal(t, "a-chunk-0", results[0].Chunk.ID)
}

func TestRankSmallStoreReturnsAll(t *testing.T) {
	results := Rank([]float64{1, 0}, storeChunks(), 50, -1)

	assert.Len(t, results, 3)
}

func TestRankFiltersBelowThreshold(t *testing.T) {
	results := Rank([]float64{1, 0}, storeChunks(), 10, 0.5)

	// b scores 0, c scores ~0.707; only a and c pass.
	require.Len(t, results, 2)
	assert.Equal(t, "a-chunk-0", results[0].Chunk.ID)
	assert.Equal(t, "c-chunk-0", results[1].Chunk.ID)
}

func TestRankEmptyStore(t *testing.T) {
	assert.Empty(t, Rank([]float64{1, 0}, nil, 3, 0.45))
}
