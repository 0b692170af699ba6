package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"golang.org/x/time/rate"

	"github.com/shashtho/shashtho/internal/history"
	"github.com/shashtho/shashtho/internal/language"
	"github.com/shashtho/shashtho/internal/prompt"
)

// ErrEmptyQuery indicates a blank query. Rejected before any side effect;
// the API boundary maps it to a client error.
var ErrEmptyQuery = errors.New("query cannot be empty")

// Result is the structured answer returned to the caller. The core does
// not retain it.
type Result struct {
	Query    string            `json:"query"`
	Language language.Language `json:"language"`
	Response string            `json:"response"`
}

// Resources is the Pipeline's view of the Registry.
type Resources interface {
	Ensure(ctx context.Context, lang language.Language) (*Bundle, error)
}

// Config contains the Pipeline's dependencies.
type Config struct {
	Resources Resources
	History   *history.Store
	Logger    *slog.Logger

	// TopK is the retrieval depth per query. Zero means DefaultTopK.
	TopK int

	// RateLimiter bounds generation calls. Nil installs a default of
	// 10 req/s with burst 30.
	RateLimiter *rate.Limiter
}

func (cfg Config) validate() error {
	if cfg.Resources == nil {
		return errors.New("resources registry is required")
	}
	if cfg.History == nil {
		return errors.New("history store is required")
	}
	return nil
}

// Pipeline drives a query end to end: classify, ensure resources, compose
// a history-aware prompt, retrieve, generate, sanitize, record the turn.
// Stateless between requests and safe for concurrent use.
type Pipeline struct {
	resources Resources
	history   *history.Store
	limiter   *rate.Limiter
	topK      int
	logger    *slog.Logger
}

// NewPipeline creates a Pipeline from cfg.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	limiter := cfg.RateLimiter
	if limiter == nil {
		limiter = rate.NewLimiter(10, 30)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		resources: cfg.Resources,
		history:   cfg.History,
		limiter:   limiter,
		topK:      topK,
		logger:    logger,
	}, nil
}

// Answer resolves query for userID and returns the structured result.
//
// Failure modes: ErrEmptyQuery for blank input (no side effects); any
// other error means resource construction, retrieval, or generation
// failed — in every such case the user's history is left untouched, so a
// recorded turn always represents a successfully completed answer.
func (p *Pipeline) Answer(ctx context.Context, userID, query string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, ErrEmptyQuery
	}

	start := time.Now()
	lang := language.Classify(query)

	bundle, err := p.resources.Ensure(ctx, lang)
	if err != nil {
		return Result{}, err
	}

	// Prompt composition is per-request: the bundle's handles are shared,
	// the prompt never is.
	composed := prompt.Compose(p.history.FormatRecent(userID))

	resp, err := bundle.Retriever.Retrieve(ctx, &ai.RetrieverRequest{
		Query:   ai.DocumentFromText(query, nil),
		Options: map[string]any{"k": p.topK},
	})
	if err != nil {
		return Result{}, fmt.Errorf("retrieving %s context: %w", lang, err)
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return Result{}, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	raw, err := bundle.Generator.Generate(ctx, composed.Render(joinDocuments(resp.Documents), query))
	if err != nil {
		return Result{}, fmt.Errorf("generating answer: %w", err)
	}

	answer := Sanitize(raw)
	p.history.Append(userID, query, answer)

	p.logger.Debug("query answered",
		"user_id", userID,
		"language", lang,
		"retrieved", len(resp.Documents),
		"duration", time.Since(start),
	)

	return Result{Query: query, Language: lang, Response: answer}, nil
}
