package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"rag-assistant/internal/domain"
	"rag-assistant/internal/pipeline"
)

// maxBodyBytes caps the chat request body.
const maxBodyBytes = 1 << 20

// ChatRequest is the body of POST /api/chat. The session id is opaque to
// the retrieval core; it is only validated and logged here.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// ChatHandler handles the chat endpoint.
type ChatHandler struct {
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// NewChatHandler creates a chat handler over the pipeline.
func NewChatHandler(p *pipeline.Pipeline, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{pipeline: p, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.handleChat)
}

func (h *ChatHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, domain.ErrMissingSession.Error())
		return
	}

	answer, err := h.pipeline.Query(r.Context(), req.Message)
	if err != nil {
		h.writeQueryError(w, req.SessionID, err)
		return
	}

	h.logger.Info("chat answered",
		"sessionId", req.SessionID,
		"retrievedChunks", answer.RetrievedChunks)
	writeJSON(w, http.StatusOK, answer)
}

// writeQueryError maps pipeline failures onto HTTP statuses. Client input
// errors are 400; everything else is surfaced as 500 with the cause logged
// but not leaked.
func (h *ChatHandler) writeQueryError(w http.ResponseWriter, sessionID string, err error) {
	if errors.Is(err, domain.ErrEmptyMessage) {
		writeError(w, http.StatusBadRequest, domain.ErrEmptyMessage.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrEmbedding):
		h.logger.Error("embedding failed", "sessionId", sessionID, "error", err)
	case errors.Is(err, domain.ErrGenerationTimeout):
		h.logger.Error("generation timed out", "sessionId", sessionID, "error", err)
	case errors.Is(err, domain.ErrGenerationProvider), errors.Is(err, domain.ErrGenerationTransport):
		h.logger.Error("generation failed", "sessionId", sessionID, "error", err)
	default:
		h.logger.Error("query failed", "sessionId", sessionID, "error", err)
	}
	writeError(w, http.StatusInternalServerError, "internal server error")
}
