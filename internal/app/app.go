// Package app provides application initialization and dependency wiring.
//
// Setup builds the object graph in dependency order: tracing → Genkit →
// embedder → vector catalog → registry/pipeline/builder. Components
// receive their dependencies through constructors; nothing reaches for
// ambient globals, so tests can stand up fresh instances per case.
package app

import (
	"context"
	"log/slog"

	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/shashtho/shashtho/internal/config"
	"github.com/shashtho/shashtho/internal/history"
	"github.com/shashtho/shashtho/internal/ingest"
	"github.com/shashtho/shashtho/internal/rag"
	"github.com/shashtho/shashtho/internal/vector"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Genkit   *genkit.Genkit
	Catalog  *vector.Catalog
	Registry *rag.Registry
	History  *history.Store
	Pipeline *rag.Pipeline
	Builder  *ingest.Builder

	tracingShutdown func()
}

// Setup creates and initializes the application. Call Close to release.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{Config: cfg, Logger: logger}

	a.tracingShutdown = provideTracing(ctx, cfg, logger)

	g, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	embedder, err := provideEmbedder(g, cfg)
	if err != nil {
		return nil, err
	}

	a.Catalog = vector.NewCatalog(cfg.PersistDir, cfg.Collection, vector.NewEmbeddingFunc(embedder))

	a.Registry = rag.NewRegistry(
		rag.NewGenkitBuilder(g, a.Catalog.Open, rag.BuilderConfig{
			ModelName: cfg.QualifiedModelName(),
			TopK:      cfg.TopK,
		}),
		logger.With("component", "registry"),
	)

	a.History = history.NewStore()

	pipeline, err := rag.NewPipeline(rag.Config{
		Resources:   a.Registry,
		History:     a.History,
		Logger:      logger.With("component", "pipeline"),
		TopK:        cfg.TopK,
		RateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	})
	if err != nil {
		return nil, err
	}
	a.Pipeline = pipeline

	a.Builder = ingest.NewBuilder(
		cfg.DataDir,
		a.Catalog.Open,
		ingest.SplitConfig{ChunkSize: cfg.ChunkSize, ChunkOverlap: cfg.ChunkOverlap},
		logger.With("component", "ingest"),
	)

	return a, nil
}

// Close releases application resources. Index handles are process-lifetime
// and need no explicit teardown; only the trace exporter is flushed.
func (a *App) Close() {
	if a.tracingShutdown != nil {
		a.tracingShutdown()
	}
	a.Logger.Info("application shut down")
}
