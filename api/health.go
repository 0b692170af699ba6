package api

import (
	"net/http"

	"github.com/shashtho/shashtho/internal/language"
	"github.com/shashtho/shashtho/internal/log"
)

// ReadinessReporter reports which languages have initialized resources.
// Satisfied by *rag.Registry.
type ReadinessReporter interface {
	Loaded() []language.Language
}

// HealthHandler handles liveness and readiness probes.
type HealthHandler struct {
	readiness ReadinessReporter
	logger    log.Logger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(readiness ReadinessReporter, logger log.Logger) *HealthHandler {
	return &HealthHandler{readiness: readiness, logger: logger}
}

// RegisterRoutes registers probe routes on mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.root)
	mux.HandleFunc("GET /health", h.liveness)
	mux.HandleFunc("GET /ready", h.readinessProbe)
}

// root is the constant liveness response on the service root.
func (h *HealthHandler) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "API is running!"})
}

// liveness returns 200 whenever the process is alive.
func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readinessProbe reports the languages whose resources are initialized.
// Lazy-initialization mode is a supported configuration, so an empty list
// is still 200; consumers decide what ready means for them.
func (h *HealthHandler) readinessProbe(w http.ResponseWriter, _ *http.Request) {
	loaded := h.readiness.Loaded()
	langs := make([]string, 0, len(loaded))
	for _, l := range loaded {
		langs = append(langs, l.String())
	}
	writeJSON(w, http.StatusOK, map[string]any{"loaded_languages": langs})
}
