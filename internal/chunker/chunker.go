package chunker

import (
	"fmt"
	"strings"

	"rag-assistant/internal/domain"
)

// Chunk splits text into overlapping windows of chunkSize words, advancing
// the window start by chunkSize-overlap words each step. The last window
// runs to the end of the word sequence and may be shorter; a document with
// fewer words than chunkSize yields exactly one chunk. Whitespace-only text
// yields no chunks.
//
// overlap must be strictly less than chunkSize: a zero or negative advance
// would never terminate, so the configuration is rejected up front.
func Chunk(text string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfig, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", domain.ErrInvalidConfig, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be less than chunk size %d", domain.ErrInvalidConfig, overlap, chunkSize)
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}

	var chunks []string
	step := chunkSize - overlap
	for start := 0; start < len(words); start += step {
		end := start + chunkSize
		if end >= len(words) {
			chunks = append(chunks, strings.Join(words[start:], " "))
			break
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks, nil
}
