// Package openai embeds text with the OpenAI embeddings API.
package openai

import (
	"context"
	"fmt"
	"math"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"rag-assistant/internal/domain"
)

// Embedder calls the OpenAI embeddings endpoint. Responses are explicitly
// L2-normalized so both providers yield unit vectors. Safe for concurrent
// use.
type Embedder struct {
	client *openai.Client
	model  string
}

// Config configures the OpenAI embedder.
type Config struct {
	Model     string
	APIKeyEnv string
}

// New creates an OpenAI embedder using the API key from the configured
// environment variable.
func New(cfg Config) (*Embedder, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	return &Embedder{client: openai.NewClient(key), model: cfg.Model}, nil
}

// Name returns the model identity pinned in the vector store.
func (e *Embedder) Name() string { return e.model }

// Embed returns the embedding vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: cannot embed empty text", domain.ErrEmbedding)
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbedding, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: no embedding data returned", domain.ErrEmbedding)
	}
	vec := make([]float64, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float64(v)
	}
	l2normalize(vec)
	return vec, nil
}

func l2normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] *= inv
	}
}
