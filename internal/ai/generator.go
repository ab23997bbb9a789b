package ai

import (
	"context"
	"strings"
)

// Generator binds the client to one chat model for answer generation.
type Generator struct {
	client *Client
	model  string
}

func NewGenerator(client *Client, model string) *Generator {
	return &Generator{client: client, model: model}
}

func (g *Generator) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	answer, err := g.client.Complete(ctx, g.model, messages)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
