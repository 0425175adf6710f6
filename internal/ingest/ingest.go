// Package ingest builds the vector store from raw documents.
//
// Ingestion is a one-shot, single-threaded batch: chunks are embedded
// sequentially and the full chunk set is assembled in memory before
// anything is written, so a failed run never leaves a partial store.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"rag-assistant/internal/chunker"
	"rag-assistant/internal/domain"
)

// LoadDocuments reads and validates the docs.json ingestion input.
func LoadDocuments(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrInvalidDocument, path, err)
	}
	var docs []domain.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidDocument, path, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s contains no documents", domain.ErrInvalidDocument, path)
	}
	seen := make(map[string]struct{}, len(docs))
	for i, d := range docs {
		if d.ID == "" {
			return nil, fmt.Errorf("%w: document %d has empty id", domain.ErrInvalidDocument, i)
		}
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate document id %q", domain.ErrInvalidDocument, d.ID)
		}
		seen[d.ID] = struct{}{}
		if d.Content == "" {
			return nil, fmt.Errorf("%w: document %q has empty content", domain.ErrInvalidDocument, d.ID)
		}
	}
	return docs, nil
}

// Ingestor chunks and embeds documents into store-ready chunks.
type Ingestor struct {
	chunkSize int
	overlap   int
	embedder  domain.Embedder
	logger    *slog.Logger
}

// New creates an Ingestor. The chunk window configuration is validated on
// first use by the chunker.
func New(chunkSize, overlap int, embedder domain.Embedder, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{chunkSize: chunkSize, overlap: overlap, embedder: embedder, logger: logger}
}

// Run chunks every document and embeds each chunk sequentially. Any
// embedding failure aborts the whole batch; the returned chunks all carry
// vectors of the same length, ordered by document and chunk index.
func (ing *Ingestor) Run(ctx context.Context, docs []domain.Document) ([]domain.Chunk, error) {
	var out []domain.Chunk
	dimension := 0

	for _, doc := range docs {
		pieces, err := chunker.Chunk(doc.Content, ing.chunkSize, ing.overlap)
		if err != nil {
			return nil, err
		}
		ing.logger.Info("chunked document", "doc", doc.ID, "title", doc.Title, "chunks", len(pieces))

		for i, text := range pieces {
			vec, err := ing.embedder.Embed(ctx, text)
			if err != nil {
				return nil, fmt.Errorf("embedding chunk %d of %q: %w", i, doc.ID, err)
			}
			if dimension == 0 {
				dimension = len(vec)
			} else if len(vec) != dimension {
				return nil, fmt.Errorf("%w: chunk %d of %q has vector length %d, want %d",
					domain.ErrEmbedding, i, doc.ID, len(vec), dimension)
			}
			out = append(out, domain.Chunk{
				ID:         domain.ChunkID(doc.ID, i),
				DocID:      doc.ID,
				Title:      doc.Title,
				ChunkIndex: i,
				Content:    text,
				Vector:     vec,
			})
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no chunks produced from %d documents", domain.ErrInvalidDocument, len(docs))
	}
	return out, nil
}
