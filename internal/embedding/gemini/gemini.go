// Package gemini embeds text with the Gemini embedding API.
package gemini

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"rag-assistant/internal/domain"
)

// Embedder calls the Gemini embedding model. Vectors come back mean-pooled
// and unit-normalized, so cosine ranking reduces to a dot product. Safe for
// concurrent use; the client holds no per-call state.
type Embedder struct {
	client *genai.Client
	model  string
}

// Config configures the Gemini embedder.
type Config struct {
	Model     string
	APIKeyEnv string
}

// New creates a Gemini embedder using the API key from the configured
// environment variable.
func New(ctx context.Context, cfg Config) (*Embedder, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Embedder{client: client, model: cfg.Model}, nil
}

// Name returns the model identity pinned in the vector store.
func (e *Embedder) Name() string { return e.model }

// Embed returns the embedding vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: cannot embed empty text", domain.ErrEmbedding)
	}
	resp, err := e.client.Models.EmbedContent(ctx, e.model,
		genai.Text(text), &genai.EmbedContentConfig{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", domain.ErrEmbedding)
	}
	values := resp.Embeddings[0].Values
	vec := make([]float64, len(values))
	for i, v := range values {
		vec[i] = float64(v)
	}
	return vec, nil
}
