// Package pipeline orchestrates one retrieval-augmented query:
// embed the question, rank the store, gate on confidence, build the
// grounded prompt, and generate the reply.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rag-assistant/internal/domain"
	"rag-assistant/internal/prompt"
	"rag-assistant/internal/rank"
	"rag-assistant/internal/vectorstore"
)

// InsufficientInfoReply is the fixed response for queries the confidence
// gate rejects. Rejection is a successful response, not an error.
const InsufficientInfoReply = "I do not have sufficient information in the knowledge base to answer that."

// Pipeline answers questions against a loaded vector store. It is immutable
// after construction and safe for concurrent requests: the store is shared
// read-only state and the capability adapters are concurrency-safe.
type Pipeline struct {
	store      *vectorstore.Store
	embedder   domain.Embedder
	generator  domain.Generator
	topK       int
	threshold  float64
	genTimeout time.Duration
	logger     *slog.Logger
}

// Options carries the retrieval tuning shared by the ranker and the gate.
type Options struct {
	TopK            int
	AcceptThreshold float64
	GenTimeout      time.Duration
}

// New assembles a pipeline over a loaded store and the two capabilities.
func New(store *vectorstore.Store, embedder domain.Embedder, generator domain.Generator, opts Options, logger *slog.Logger) (*Pipeline, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.GenTimeout <= 0 {
		opts.GenTimeout = 60 * time.Second
	}
	return &Pipeline{
		store:      store,
		embedder:   embedder,
		generator:  generator,
		topK:       opts.TopK,
		threshold:  opts.AcceptThreshold,
		genTimeout: opts.GenTimeout,
		logger:     logger,
	}, nil
}

// Query runs the full pipeline for one question. No step retries; any
// failure after input validation aborts the request, and there is no
// partial-result fallback from a generation failure.
func (p *Pipeline) Query(ctx context.Context, message string) (*domain.Answer, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.ErrEmptyMessage
	}

	queryVec, err := p.embedder.Embed(ctx, message)
	if err != nil {
		return nil, err
	}
	if len(queryVec) != p.store.Dimension {
		return nil, fmt.Errorf("%w: query vector length %d, store dimension %d",
			domain.ErrEmbedding, len(queryVec), p.store.Dimension)
	}

	results := rank.Rank(queryVec, p.store.Chunks, p.topK, p.threshold)
	if len(results) == 0 || !rank.Accept(results[0].Score, p.threshold) {
		p.logger.Debug("query rejected by confidence gate", "threshold", p.threshold)
		return &domain.Answer{
			Reply:            InsufficientInfoReply,
			SimilarityScores: []float64{},
		}, nil
	}

	genCtx, cancel := context.WithTimeout(ctx, p.genTimeout)
	defer cancel()

	reply, err := p.generator.Generate(genCtx, prompt.Build(results, message))
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Score
	}
	p.logger.Debug("query answered",
		"retrievedChunks", len(results),
		"topScore", scores[0])

	return &domain.Answer{
		Reply:            reply,
		RetrievedChunks:  len(results),
		SimilarityScores: scores,
	}, nil
}
