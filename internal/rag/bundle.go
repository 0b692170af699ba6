package rag

// bundle.go wires Genkit into the registry: each language gets a Genkit
// retriever defined over its vector index and a generator bound to the
// configured model.

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/shashtho/shashtho/internal/language"
	"github.com/shashtho/shashtho/internal/vector"
)

// DefaultTopK is the number of passages retrieved per query when the
// request does not override it.
const DefaultTopK = 4

// IndexOpener yields the process-wide index handle for a language.
// Satisfied by (*vector.Catalog).Open.
type IndexOpener func(lang language.Language) (*vector.Index, error)

// BuilderConfig configures NewGenkitBuilder.
type BuilderConfig struct {
	// ModelName is the provider-qualified model identifier,
	// e.g. "googleai/gemini-2.5-flash" or "openai/llama-3.1-8b-instant".
	ModelName string

	// TopK is the default retrieval depth. Zero means DefaultTopK.
	TopK int
}

// NewGenkitBuilder returns a BundleBuilder that opens the language's
// index, defines a Genkit retriever over it, and binds a generator to
// cfg.ModelName. Retriever definitions are global to the Genkit instance,
// so the builder must run at most once per language — the Registry
// guarantees that.
func NewGenkitBuilder(g *genkit.Genkit, open IndexOpener, cfg BuilderConfig) BundleBuilder {
	topK := cfg.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	return func(_ context.Context, lang language.Language) (*Bundle, error) {
		ix, err := open(lang)
		if err != nil {
			return nil, err
		}

		name := fmt.Sprintf("shashtho/%s-retriever", lang)
		retriever := genkit.DefineRetriever(g, name, nil,
			func(ctx context.Context, req *ai.RetrieverRequest) (*ai.RetrieverResponse, error) {
				results, err := ix.Query(ctx, queryText(req), requestTopK(req, topK))
				if err != nil {
					return nil, err
				}

				docs := make([]*ai.Document, len(results))
				for i, r := range results {
					metadata := make(map[string]any, len(r.Document.Metadata)+1)
					for k, v := range r.Document.Metadata {
						metadata[k] = v
					}
					metadata["similarity"] = r.Similarity
					docs[i] = ai.DocumentFromText(r.Document.Content, metadata)
				}
				return &ai.RetrieverResponse{Documents: docs}, nil
			},
		)

		return &Bundle{
			Language:  lang,
			Index:     ix,
			Retriever: retriever,
			Generator: &modelGenerator{g: g, model: cfg.ModelName},
		}, nil
	}
}

// modelGenerator answers prompts through a Genkit model.
type modelGenerator struct {
	g     *genkit.Genkit
	model string
}

func (m *modelGenerator) Generate(ctx context.Context, promptText string) (string, error) {
	resp, err := genkit.Generate(ctx, m.g,
		ai.WithModelName(m.model),
		ai.WithPrompt(promptText),
	)
	if err != nil {
		return "", fmt.Errorf("model %s: %w", m.model, err)
	}
	return resp.Text(), nil
}

// queryText extracts the query string from a retriever request.
func queryText(req *ai.RetrieverRequest) string {
	if req.Query != nil && len(req.Query.Content) > 0 {
		return req.Query.Content[0].Text
	}
	return ""
}

// requestTopK reads a per-request "k" option, falling back to defaultK.
// Values outside [1, 20] are ignored.
func requestTopK(req *ai.RetrieverRequest, defaultK int) int {
	opts, ok := req.Options.(map[string]any)
	if !ok {
		return defaultK
	}
	raw, ok := opts["k"]
	if !ok {
		return defaultK
	}

	var k int
	switch v := raw.(type) {
	case int:
		k = v
	case int32:
		k = int(v)
	case int64:
		k = int(v)
	case float64:
		k = int(v)
	default:
		return defaultK
	}
	if k < 1 || k > 20 {
		return defaultK
	}
	return k
}

// joinDocuments renders retrieved documents into the prompt's context
// block, best match first.
func joinDocuments(docs []*ai.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if len(d.Content) > 0 && d.Content[0].Text != "" {
			parts = append(parts, d.Content[0].Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
