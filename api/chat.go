package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shashtho/shashtho/internal/log"
	"github.com/shashtho/shashtho/internal/rag"
)

// Orchestrator is the chat handler's view of the answering pipeline.
type Orchestrator interface {
	Answer(ctx context.Context, userID, query string) (rag.Result, error)
}

// ChatRequest is the POST /chat payload.
type ChatRequest struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
}

// ChatHandler handles the chat endpoint.
type ChatHandler struct {
	orch   Orchestrator
	logger log.Logger
}

// NewChatHandler creates a chat handler backed by orch.
func NewChatHandler(orch Orchestrator, logger log.Logger) *ChatHandler {
	return &ChatHandler{orch: orch, logger: logger}
}

// RegisterRoutes registers chat routes on mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /chat", h.handleChat)
}

// handleChat answers a user query.
//
// Status mapping: 400 for malformed bodies and empty queries (no state is
// mutated), 500 for resource-initialization or generation failures, 200
// with the structured result on success.
func (h *ChatHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON with user_id and query")
		return
	}

	result, err := h.orch.Answer(r.Context(), req.UserID, req.Query)
	if err != nil {
		if errors.Is(err, rag.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "empty_query", "query cannot be empty")
			return
		}
		h.logger.Error("answering query failed",
			"request_id", RequestID(r.Context()),
			"user_id", req.UserID,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "generation_failed", "error during inference: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}
