// Package gemini generates replies with the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"

	"rag-assistant/internal/domain"
)

// Generator executes prompts against a Gemini model. Safe for concurrent
// outstanding calls; each call carries its own context and the client holds
// no mutable state.
type Generator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// Config configures the Gemini generator.
type Config struct {
	Model       string
	Temperature float64
	APIKeyEnv   string
}

// New creates a Gemini generator using the API key from the configured
// environment variable.
func New(ctx context.Context, cfg Config) (*Generator, error) {
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
	return &Generator{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
	}, nil
}

// Name returns the configured model identifier.
func (g *Generator) Name() string { return g.model }

// Generate runs the prompt and returns the model's plain-text reply.
// Failures are classified into the taxonomy: context deadline expiry maps
// to a timeout, an error payload from the provider to a provider error,
// and everything else (network, connection) to a transport failure.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt), &genai.GenerateContentConfig{
			Temperature: genai.Ptr(g.temperature),
		})
	if err != nil {
		return "", classify(ctx, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response envelope", domain.ErrGenerationProvider)
	}
	return text, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrGenerationTimeout, err)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %v", domain.ErrGenerationProvider, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrGenerationTransport, err)
}
