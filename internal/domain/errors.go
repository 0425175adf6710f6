package domain

import "errors"

// Error taxonomy. Callers classify failures with errors.Is; the concrete
// cause is wrapped alongside the sentinel.
var (
	// ErrMissingSession and ErrEmptyMessage are client input errors (4xx).
	ErrMissingSession = errors.New("sessionId is required")
	ErrEmptyMessage   = errors.New("message is required")

	// ErrInvalidDocument marks malformed ingestion input.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrStoreLoad marks a missing, unreadable, or schema-invalid vector
	// store. Fatal at startup; no serving begins.
	ErrStoreLoad = errors.New("vector store load failed")

	// ErrEmbedding marks a failed embedding call. Aborts the whole batch
	// during ingestion and surfaces as a server error for queries.
	ErrEmbedding = errors.New("embedding failed")

	// Generation failures, distinguished but all surfaced unretried.
	ErrGenerationTransport = errors.New("generation transport failure")
	ErrGenerationProvider  = errors.New("generation provider error")
	ErrGenerationTimeout   = errors.New("generation timed out")

	// ErrInvalidConfig marks configuration rejected at startup.
	ErrInvalidConfig = errors.New("invalid configuration")
)
