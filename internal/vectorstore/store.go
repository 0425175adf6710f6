// Package vectorstore persists embedded chunks as a single JSON file.
//
// The store is built fully in memory at ingestion time and written with
// overwrite semantics; the serving process loads it once and never mutates
// it, so concurrent reads need no locking.
package vectorstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rag-assistant/internal/domain"
)

// Store is the loaded, read-only collection of embedded chunks.
// The embedding model identity and dimensionality are pinned in the file so
// a mismatched embedder at load time fails loudly instead of misranking.
type Store struct {
	EmbeddingModel string         `json:"embeddingModel"`
	Dimension      int            `json:"dimension"`
	CreatedAt      time.Time      `json:"createdAt"`
	Chunks         []domain.Chunk `json:"chunks"`
}

// Load reads and validates the store at path. wantModel, when non-empty,
// must match the model recorded in the file. Any failure here is fatal for
// the serving process; there is no partial or lazy load.
func Load(path, wantModel string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrStoreLoad, path, err)
	}

	var s Store
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrStoreLoad, path, err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreLoad, err)
	}
	if wantModel != "" && s.EmbeddingModel != wantModel {
		return nil, fmt.Errorf("%w: store embedded with model %q, configured embedder is %q",
			domain.ErrStoreLoad, s.EmbeddingModel, wantModel)
	}
	return &s, nil
}

// Save writes the full chunk set to path with atomic overwrite semantics:
// the store is marshaled in memory, written to a temp file in the same
// directory, and renamed over the target. A crash mid-write never leaves a
// half-written store readable by the server.
func Save(path, model string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("refusing to save empty store")
	}
	s := Store{
		EmbeddingModel: model,
		Dimension:      len(chunks[0].Vector),
		CreatedAt:      time.Now().UTC(),
		Chunks:         chunks,
	}
	if err := s.validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(&s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling store: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (s *Store) validate() error {
	if s.Dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", s.Dimension)
	}
	if len(s.Chunks) == 0 {
		return fmt.Errorf("store contains no chunks")
	}
	seen := make(map[string]struct{}, len(s.Chunks))
	for i, c := range s.Chunks {
		if c.ID == "" {
			return fmt.Errorf("chunk %d has empty id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("duplicate chunk id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
		if len(c.Vector) != s.Dimension {
			return fmt.Errorf("chunk %q has vector length %d, want %d", c.ID, len(c.Vector), s.Dimension)
		}
	}
	return nil
}
