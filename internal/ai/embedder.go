package ai

import (
	"context"
	"fmt"
	"strings"
)

// Embedder binds the client to one embedding model with a fixed output
// dimension. The dimension is a deployment constant: every vector that leaves
// this type has exactly Dimension elements, and a backend response with any
// other length is an error, never a silently truncated or zero vector.
type Embedder struct {
	client    *Client
	model     string
	dimension int
}

func NewEmbedder(client *Client, model string, dimension int) *Embedder {
	return &Embedder{
		client:    client,
		model:     model,
		dimension: dimension,
	}
}

// Dimension returns the configured vector length.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Embed returns the embedding vector for a single text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in input order, enforcing the configured dimension
// on every returned vector.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("embedding input %d is empty", i)
		}
	}
	vecs, err := e.client.EmbedBatch(ctx, e.model, texts)
	if err != nil {
		return nil, err
	}
	for i, v := range vecs {
		if len(v) != e.dimension {
			return nil, fmt.Errorf("embedding %d dimension mismatch: got %d, want %d", i, len(v), e.dimension)
		}
	}
	return vecs, nil
}
