package retrieval

import (
	"math"
	"reflect"
	"testing"

	"docassist/internal/model"
)

func chunkWithVec(id uint, vec []float32) model.Chunk {
	c := model.Chunk{ID: id, DocumentID: 1, Content: "c"}
	c.SetEmbedding(vec)
	return c
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"dimension mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CosineSimilarity(tc.a, tc.b)
			if math.Abs(float64(got-tc.want)) > 1e-6 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTopK_NearestFirst(t *testing.T) {
	chunks := []model.Chunk{
		chunkWithVec(1, []float32{0, 1}),
		chunkWithVec(2, []float32{1, 0}),
		chunkWithVec(3, []float32{0.7, 0.7}),
	}
	query := []float32{1, 0}

	got := TopK(query, chunks, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Chunk.ID != 2 || got[1].Chunk.ID != 3 {
		t.Errorf("expected order [2 3], got [%d %d]", got[0].Chunk.ID, got[1].Chunk.ID)
	}
}

func TestTopK_TieBreakByChunkID(t *testing.T) {
	// All three chunks are equidistant from the query.
	chunks := []model.Chunk{
		chunkWithVec(7, []float32{1, 0}),
		chunkWithVec(3, []float32{1, 0}),
		chunkWithVec(5, []float32{1, 0}),
	}
	got := TopK([]float32{1, 0}, chunks, 3)

	ids := []uint{got[0].Chunk.ID, got[1].Chunk.ID, got[2].Chunk.ID}
	if !reflect.DeepEqual(ids, []uint{3, 5, 7}) {
		t.Errorf("expected ties ordered by ascending id, got %v", ids)
	}
}

func TestTopK_KBounds(t *testing.T) {
	chunks := []model.Chunk{
		chunkWithVec(1, []float32{1, 0}),
		chunkWithVec(2, []float32{0, 1}),
	}
	if got := TopK([]float32{1, 0}, chunks, 5); len(got) != 2 {
		t.Errorf("k larger than corpus: expected 2 results, got %d", len(got))
	}
	if got := TopK([]float32{1, 0}, chunks, 0); got != nil {
		t.Errorf("k=0: expected nil, got %d results", len(got))
	}
	if got := TopK([]float32{1, 0}, nil, 3); got != nil {
		t.Errorf("empty corpus: expected nil, got %d results", len(got))
	}
}

func TestTopK_SkipsWrongDimension(t *testing.T) {
	chunks := []model.Chunk{
		chunkWithVec(1, []float32{1, 0}),
		chunkWithVec(2, []float32{1, 0, 0}),
	}
	got := TopK([]float32{1, 0}, chunks, 5)
	if len(got) != 1 || got[0].Chunk.ID != 1 {
		t.Errorf("expected only the matching-dimension chunk, got %d results", len(got))
	}
}

func TestTopK_Deterministic(t *testing.T) {
	chunks := []model.Chunk{
		chunkWithVec(1, []float32{0.9, 0.1}),
		chunkWithVec(2, []float32{0.1, 0.9}),
		chunkWithVec(3, []float32{0.5, 0.5}),
		chunkWithVec(4, []float32{0.5, 0.5}),
	}
	query := []float32{0.8, 0.2}

	first := TopK(query, chunks, 4)
	for i := 0; i < 10; i++ {
		again := TopK(query, chunks, 4)
		for j := range first {
			if first[j].Chunk.ID != again[j].Chunk.ID {
				t.Fatalf("run %d: result order differs at position %d", i, j)
			}
		}
	}
}
