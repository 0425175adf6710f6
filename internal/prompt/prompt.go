package prompt

import (
	"fmt"
	"strings"

	"rag-assistant/internal/domain"
)

// template keeps the generator grounded: it states the assistant's role,
// restricts answers to the provided context, and demands an explicit
// "do not know" when the context does not cover the question.
const template = `You are a legal assistant for a law firm.

Answer strictly using the provided context.
If the answer is not clearly found in the context, say you do not know.

Context:
%s

User Question:
%s
`

// Build assembles the generation prompt from the accepted chunks and the
// question. Chunk contents are concatenated in rank order, highest
// similarity first, separated by a blank line.
func Build(chunks []domain.ScoredChunk, question string) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Chunk.Content
	}
	return fmt.Sprintf(template, strings.Join(parts, "\n\n"), question)
}
