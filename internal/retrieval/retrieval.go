// Package retrieval implements brute-force nearest-neighbor search over chunk
// embeddings. The distance metric is cosine similarity, a deployment constant
// matching how the embedding vectors are produced.
package retrieval

import (
	"math"
	"sort"

	"docassist/internal/model"
)

// Scored pairs a chunk with its similarity to the query vector.
type Scored struct {
	Chunk model.Chunk
	Score float32
}

// CosineSimilarity returns the cosine of the angle between a and b, or 0 when
// either vector is empty, zero-length, or the dimensions differ.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

// TopK returns up to k chunks nearest to the query vector, nearest first.
// Ties are broken by ascending chunk ID so repeated searches over the same
// corpus return identical ordered results. Chunks whose stored embedding does
// not match the query dimension are skipped.
func TopK(query []float32, chunks []model.Chunk, k int) []Scored {
	if k <= 0 || len(query) == 0 || len(chunks) == 0 {
		return nil
	}

	scored := make([]Scored, 0, len(chunks))
	for i := range chunks {
		vec := chunks[i].EmbeddingVector()
		if len(vec) != len(query) {
			continue
		}
		scored = append(scored, Scored{
			Chunk: chunks[i],
			Score: CosineSimilarity(query, vec),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.ID < scored[j].Chunk.ID
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}
