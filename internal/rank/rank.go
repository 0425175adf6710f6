// Package rank scores stored chunks against a query vector.
//
// Ranking is an exact linear scan over the whole store. The accept
// threshold used to filter results here is the same configured value the
// pipeline gates on; there is a single threshold end-to-end.
package rank

import (
	"math"
	"sort"

	"rag-assistant/internal/domain"
)

// CosineSimilarity returns dot(a,b)/(|a|*|b|) in [-1, 1]. When either
// vector has zero magnitude, or the lengths differ, the score is 0 rather
// than NaN so ranking can proceed over degenerate vectors.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Accept is the confidence gate: retrieval stands iff the top score meets
// the configured threshold.
func Accept(topScore, threshold float64) bool {
	return topScore >= threshold
}

// Rank scores every chunk against the query vector, keeps those whose score
// passes the threshold, and returns at most topK results ordered strictly
// descending by score. Ties keep store insertion order (stable sort); the
// order is never a ranking signal, only a tie-break.
func Rank(query []float64, chunks []domain.Chunk, topK int, threshold float64) []domain.ScoredChunk {
	scored := make([]domain.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		score := CosineSimilarity(query, c.Vector)
		if Accept(score, threshold) {
			scored = append(scored, domain.ScoredChunk{Chunk: c, Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK > 0 && topK < len(scored) {
		scored = scored[:topK]
	}
	return scored
}
