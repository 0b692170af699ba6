package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shashtho/shashtho/internal/ingest"
	"github.com/shashtho/shashtho/internal/language"
	"github.com/shashtho/shashtho/internal/log"
)

// Ingestor is the build handler's view of the ingestion builder.
type Ingestor interface {
	Build(ctx context.Context, lang language.Language) (ingest.BuildResult, error)
}

// VectorDBRequest is the POST /build-vectordb payload.
type VectorDBRequest struct {
	Language string `json:"language"` // "bangla" or "english"
}

// VectorDBResponse reports a completed build.
type VectorDBResponse struct {
	Message      string `json:"message"`
	ChunksStored int    `json:"chunks_stored"`
	Path         string `json:"path"`
}

// VectorDBHandler handles vector index builds.
type VectorDBHandler struct {
	builder Ingestor
	logger  log.Logger
}

// NewVectorDBHandler creates a build handler backed by builder.
func NewVectorDBHandler(builder Ingestor, logger log.Logger) *VectorDBHandler {
	return &VectorDBHandler{builder: builder, logger: logger}
}

// RegisterRoutes registers build routes on mux.
func (h *VectorDBHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /build-vectordb", h.handleBuild)
}

// handleBuild (re)builds the vector index for one language.
//
// Status mapping: 400 for malformed bodies, unsupported languages, and
// empty chunk results; 404 when the source directory or files are
// missing; 500 for storage failures; 200 with chunk count and path on
// success.
func (h *VectorDBHandler) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req VectorDBRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON with a language field")
		return
	}

	lang, err := language.Parse(req.Language)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_language", "language must be 'bangla' or 'english'")
		return
	}

	result, err := h.builder.Build(r.Context(), lang)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrSourceNotFound):
			writeError(w, http.StatusNotFound, "source_not_found", err.Error())
		case errors.Is(err, ingest.ErrNoChunks):
			writeError(w, http.StatusBadRequest, "no_chunks", "no documents found after splitting")
		default:
			h.logger.Error("index build failed",
				"request_id", RequestID(r.Context()),
				"language", lang,
				"error", err,
			)
			writeError(w, http.StatusInternalServerError, "build_failed", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, VectorDBResponse{
		Message:      fmt.Sprintf("Stored %d chunks into vector index at '%s'", result.Chunks, result.Path),
		ChunksStored: result.Chunks,
		Path:         result.Path,
	})
}
