package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-assistant/internal/domain"
	"rag-assistant/internal/testutil"
)

func writeDocs(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docs.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDocuments(t *testing.T) {
	path := writeDocs(t, `[
		{"id":"fees","title":"Fee Policy","content":"Fees are $200."},
		{"id":"refunds","title":"Refund Policy","content":"Refunds within 14 days."}]`)

	docs, err := LoadDocuments(path)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "fees", docs[0].ID)
	assert.Equal(t, "Refund Policy", docs[1].Title)
}

func TestLoadDocumentsRejectsBadInput(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"malformed json", `{"not":"an array"`},
		{"empty array", `[]`},
		{"empty id", `[{"id":"","title":"T","content":"x"}]`},
		{"empty content", `[{"id":"a","title":"T","content":""}]`},
		{"duplicate id", `[{"id":"a","title":"T","content":"x"},{"id":"a","title":"T","content":"y"}]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadDocuments(writeDocs(t, tc.content))
			assert.ErrorIs(t, err, domain.ErrInvalidDocument)
		})
	}
}

func TestLoadDocumentsMissingFile(t *testing.T) {
	_, err := LoadDocuments(filepath.Join(t.TempDir(), "absent.json"))

	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
}

func TestRunBuildsChunks(t *testing.T) {
	emb := &testutil.StubEmbedder{Model: "stub-model", Default: []float64{0.6, 0.8}}
	ing := New(3, 1, emb, nil)
	docs := []domain.Document{
		{ID: "fees", Title: "Fee Policy", Content: "one two three four five"},
		{ID: "refunds", Title: "Refund Policy", Content: "six seven"},
	}

	chunks, err := ing.Run(context.Background(), docs)

	require.NoError(t, err)
	// 5 words at 3/1 → windows starting at words 0 and 2; plus one chunk
	// for refunds.
	require.Len(t, chunks, 3)
	assert.Equal(t, "fees-chunk-0", chunks[0].ID)
	assert.Equal(t, "fees-chunk-1", chunks[1].ID)
	assert.Equal(t, "refunds-chunk-0", chunks[2].ID)
	assert.Equal(t, "one two three", chunks[0].Content)
	assert.Equal(t, "three four five", chunks[1].Content)
	for i, c := range chunks[:2] {
		assert.Equal(t, "fees", c.DocID)
		assert.Equal(t, "Fee Policy", c.Title)
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, []float64{0.6, 0.8}, c.Vector)
	}
	assert.Equal(t, 0, chunks[2].ChunkIndex)
	assert.Equal(t, emb.Calls(), len(chunks))
}

func TestRunRejectsBadWindowConfig(t *testing.T) {
	emb := &testutil.StubEmbedder{Model: "stub-model", Default: []float64{1}}
	ing := New(50, 50, emb, nil)

	_, err := ing.Run(context.Background(), []domain.Document{
		{ID: "a", Title: "A", Content: "some words here"},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.Equal(t, 0, emb.Calls())
}

func TestRunAbortsBatchOnEmbeddingFailure(t *testing.T) {
	emb := &testutil.StubEmbedder{
		Model: "stub-model",
		Err:   fmt.Errorf("%w: boom", domain.ErrEmbedding),
	}
	ing := New(400, 50, emb, nil)

	chunks, err := ing.Run(context.Background(), []domain.Document{
		{ID: "a", Title: "A", Content: "some words here"},
	})

	assert.ErrorIs(t, err, domain.ErrEmbedding)
	assert.Nil(t, chunks)
}
