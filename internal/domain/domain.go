package domain

import (
	"context"
	"fmt"
)

// Document is a raw knowledge-base entry supplied wholesale at ingestion.
type Document struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Chunk is an embedded slice of a document as persisted in the vector store.
// Vector length is constant across the whole store.
type Chunk struct {
	ID         string    `json:"id"`
	DocID      string    `json:"docId"`
	Title      string    `json:"title"`
	ChunkIndex int       `json:"chunkIndex"`
	Content    string    `json:"content"`
	Vector     []float64 `json:"vector"`
}

// ChunkID derives the store-unique id for a chunk of a document.
func ChunkID(docID string, index int) string {
	return fmt.Sprintf("%s-chunk-%d", docID, index)
}

// ScoredChunk pairs a stored chunk with its cosine similarity to a query.
// Produced per query, never persisted.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Answer is the reply plus retrieval metadata returned for one query.
// TokensUsed is always 0; token accounting is not implemented.
type Answer struct {
	Reply            string    `json:"reply"`
	TokensUsed       int       `json:"tokensUsed"`
	RetrievedChunks  int       `json:"retrievedChunks"`
	SimilarityScores []float64 `json:"similarityScores"`
}

// Embedder converts text into a numeric vector representation.
// The same model must embed both the corpus and the queries; Name
// identifies it and is pinned in the store file.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Generator executes a prompt against a text-generation model.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}
