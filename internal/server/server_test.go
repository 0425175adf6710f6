package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rag-assistant/internal/domain"
	"rag-assistant/internal/pipeline"
	"rag-assistant/internal/testutil"
	"rag-assistant/internal/vectorstore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore() *vectorstore.Store {
	return &vectorstore.Store{
		EmbeddingModel: "stub-embedder",
		Dimension:      2,
		CreatedAt:      time.Now().UTC(),
		Chunks: []domain.Chunk{
			{
				ID:         domain.ChunkID("fees", 0),
				DocID:      "fees",
				Title:      "Fee Schedule",
				ChunkIndex: 0,
				Content:    "The filing fee is forty dollars.",
				Vector:     []float64{1, 0},
			},
			{
				ID:         domain.ChunkID("refunds", 0),
				DocID:      "refunds",
				Title:      "Refund Policy",
				ChunkIndex: 0,
				Content:    "Refunds are issued within thirty days.",
				Vector:     []float64{0, 1},
			},
		},
	}
}

func newTestServer(t *testing.T, embedder *testutil.StubEmbedder, generator *testutil.StubGenerator) *Server {
	t.Helper()
	p, err := pipeline.New(testStore(), embedder, generator, pipeline.Options{
		TopK:            3,
		AcceptThreshold: 0.45,
	}, testLogger())
	require.NoError(t, err)
	return New(p, []string{"http://localhost:5173"}, testLogger())
}

func postChat(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestChatAnswersQuestion(t *testing.T) {
	embedder := &testutil.StubEmbedder{
		Model:   "stub-embedder",
		Default: []float64{0.8, 0.6},
	}
	generator := &testutil.StubGenerator{Reply: "The filing fee is forty dollars."}
	srv := newTestServer(t, embedder, generator)

	rec := postChat(t, srv.Handler(), `{"sessionId":"s-1","message":"How much is the filing fee?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var answer domain.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.Equal(t, "The filing fee is forty dollars.", answer.Reply)
	assert.Zero(t, answer.TokensUsed)
	assert.Equal(t, 2, answer.RetrievedChunks)
	require.Len(t, answer.SimilarityScores, 2)
	assert.Greater(t, answer.SimilarityScores[0], answer.SimilarityScores[1])

	assert.Contains(t, generator.LastPrompt, "The filing fee is forty dollars.")
	assert.Contains(t, generator.LastPrompt, "How much is the filing fee?")
}

func TestChatLowConfidenceRefusal(t *testing.T) {
	embedder := &testutil.StubEmbedder{
		Model:   "stub-embedder",
		Default: []float64{-1, -1},
	}
	generator := &testutil.StubGenerator{Reply: "should never be used"}
	srv := newTestServer(t, embedder, generator)

	rec := postChat(t, srv.Handler(), `{"sessionId":"s-1","message":"What is the weather today?"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var answer domain.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.Equal(t, pipeline.InsufficientInfoReply, answer.Reply)
	assert.Zero(t, answer.RetrievedChunks)
	assert.Empty(t, answer.SimilarityScores)
	assert.Zero(t, generator.Calls())
}

func TestChatRejectsBadRequests(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"invalid JSON", `{"sessionId":`, "invalid request body"},
		{"missing session", `{"message":"hello"}`, domain.ErrMissingSession.Error()},
		{"empty message", `{"sessionId":"s-1","message":"   "}`, domain.ErrEmptyMessage.Error()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			embedder := &testutil.StubEmbedder{Model: "stub-embedder", Default: []float64{1, 0}}
			generator := &testutil.StubGenerator{Reply: "unused"}
			srv := newTestServer(t, embedder, generator)

			rec := postChat(t, srv.Handler(), tc.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantErr, resp.Error)
		})
	}
}

func TestChatEmbeddingFailureIsInternalError(t *testing.T) {
	embedder := &testutil.StubEmbedder{Model: "stub-embedder", Err: domain.ErrEmbedding}
	generator := &testutil.StubGenerator{Reply: "unused"}
	srv := newTestServer(t, embedder, generator)

	rec := postChat(t, srv.Handler(), `{"sessionId":"s-1","message":"hello"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Error)
}

func TestChatGenerationFailureIsInternalError(t *testing.T) {
	embedder := &testutil.StubEmbedder{Model: "stub-embedder", Default: []float64{1, 0}}
	generator := &testutil.StubGenerator{Err: domain.ErrGenerationProvider}
	srv := newTestServer(t, embedder, generator)

	rec := postChat(t, srv.Handler(), `{"sessionId":"s-1","message":"hello"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Error)
}

func TestChatRejectsNonPost(t *testing.T) {
	embedder := &testutil.StubEmbedder{Model: "stub-embedder", Default: []float64{1, 0}}
	srv := newTestServer(t, embedder, &testutil.StubGenerator{Reply: "unused"})

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestChatRejectsOversizedBody(t *testing.T) {
	embedder := &testutil.StubEmbedder{Model: "stub-embedder", Default: []float64{1, 0}}
	srv := newTestServer(t, embedder, &testutil.StubGenerator{Reply: "unused"})

	var buf bytes.Buffer
	buf.WriteString(`{"sessionId":"s-1","message":"`)
	buf.Write(bytes.Repeat([]byte("a"), maxBodyBytes+1))
	buf.WriteString(`"}`)

	rec := postChat(t, srv.Handler(), buf.String())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	embedder := &testutil.StubEmbedder{Model: "stub-embedder", Default: []float64{1, 0}}
	srv := newTestServer(t, embedder, &testutil.StubGenerator{Reply: "unused"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRootBanner(t *testing.T) {
	embedder := &testutil.StubEmbedder{Model: "stub-embedder", Default: []float64{1, 0}}
	srv := newTestServer(t, embedder, &testutil.StubGenerator{Reply: "unused"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "RAG Assistant Backend Running", rec.Body.String())
}

func TestCORSAllowedOrigin(t *testing.T) {
	embedder := &testutil.StubEmbedder{Model: "stub-embedder", Default: []float64{1, 0}}
	srv := newTestServer(t, embedder, &testutil.StubGenerator{Reply: "unused"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDisallowedOrigin(t *testing.T) {
	embedder := &testutil.StubEmbedder{Model: "stub-embedder", Default: []float64{1, 0}}
	srv := newTestServer(t, embedder, &testutil.StubGenerator{Reply: "unused"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	embedder := &testutil.StubEmbedder{Model: "stub-embedder", Default: []float64{1, 0}}
	srv := newTestServer(t, embedder, &testutil.StubGenerator{Reply: "unused"})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestRecoveryMiddleware(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
	handler := chain(panicking, recoveryMiddleware(testLogger()))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
