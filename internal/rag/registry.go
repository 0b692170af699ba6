package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/firebase/genkit/go/ai"

	"github.com/shashtho/shashtho/internal/language"
	"github.com/shashtho/shashtho/internal/vector"
)

// warmupQuery is the throwaway retrieval issued during preload to force
// first-call latency (embedder startup, index load) before real traffic.
const warmupQuery = "menstrual health"

// Generator produces an answer from a fully rendered prompt.
// Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, promptText string) (string, error)
}

// Bundle is the per-language set of live handles needed to answer a
// query. Bundles are immutable after construction and owned by the
// Registry for the process lifetime.
type Bundle struct {
	Language  language.Language
	Index     *vector.Index
	Retriever ai.Retriever
	Generator Generator
}

// BundleBuilder constructs the Bundle for a language. Construction may be
// slow (index open, model resolution); the Registry guarantees it runs at
// most once per language at a time.
type BundleBuilder func(ctx context.Context, lang language.Language) (*Bundle, error)

// Registry hands out per-language resource bundles, constructing each at
// most once. Safe for concurrent use: two requests racing to initialize
// the same language serialize on a per-language guard, and the loser
// reuses the winner's bundle.
//
// A failed construction leaves the language uninitialized so the next
// request retries; there is no backoff.
type Registry struct {
	build  BundleBuilder
	logger *slog.Logger

	mu      sync.Mutex
	entries map[language.Language]*registryEntry
}

// registryEntry guards one language's construction. The bundle pointer is
// atomic so readers (Loaded, the cached fast path) never wait behind an
// in-flight construction holding mu.
type registryEntry struct {
	mu     sync.Mutex
	bundle atomic.Pointer[Bundle]
}

// NewRegistry creates a Registry that constructs bundles with build.
// A nil logger falls back to slog.Default.
func NewRegistry(build BundleBuilder, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		build:   build,
		logger:  logger,
		entries: make(map[language.Language]*registryEntry),
	}
}

// Ensure returns the bundle for lang, constructing it on first use.
// Subsequent calls return the cached bundle without reconstruction.
func (r *Registry) Ensure(ctx context.Context, lang language.Language) (*Bundle, error) {
	r.mu.Lock()
	entry, ok := r.entries[lang]
	if !ok {
		entry = &registryEntry{}
		r.entries[lang] = entry
	}
	r.mu.Unlock()

	if bundle := entry.bundle.Load(); bundle != nil {
		return bundle, nil
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if bundle := entry.bundle.Load(); bundle != nil {
		return bundle, nil
	}

	bundle, err := r.build(ctx, lang)
	if err != nil {
		return nil, fmt.Errorf("building %s resources: %w", lang, err)
	}

	chunks := 0
	if bundle.Index != nil {
		chunks = bundle.Index.Count()
	}
	r.logger.Info("language resources initialized",
		"language", lang,
		"indexed_chunks", chunks,
	)
	entry.bundle.Store(bundle)
	return bundle, nil
}

// Preload eagerly constructs bundles for langs and performs one warm-up
// retrieval per language. A failure for one language is logged and
// skipped; the remaining languages are still served and startup proceeds.
func (r *Registry) Preload(ctx context.Context, langs []language.Language) {
	for _, lang := range langs {
		bundle, err := r.Ensure(ctx, lang)
		if err != nil {
			r.logger.Warn("preload failed, language will initialize lazily",
				"language", lang, "error", err)
			continue
		}

		if _, err := bundle.Retriever.Retrieve(ctx, &ai.RetrieverRequest{
			Query: ai.DocumentFromText(warmupQuery, nil),
		}); err != nil {
			r.logger.Warn("warm-up retrieval failed",
				"language", lang, "error", err)
			continue
		}
		r.logger.Info("language preloaded", "language", lang)
	}
}

// Loaded reports the languages with an initialized bundle. Used by the
// readiness probe. Never waits on an in-flight construction: entries are
// snapshotted under the registry lock and their bundles read atomically,
// so a probe during one language's (slow) build still returns promptly.
func (r *Registry) Loaded() []language.Language {
	r.mu.Lock()
	snapshot := make(map[language.Language]*registryEntry, len(r.entries))
	for lang, entry := range r.entries {
		snapshot[lang] = entry
	}
	r.mu.Unlock()

	var langs []language.Language
	for lang, entry := range snapshot {
		if entry.bundle.Load() != nil {
			langs = append(langs, lang)
		}
	}
	return langs
}
