// Package vector wraps the persistent per-language vector index.
//
// Each supported language gets its own chromem database rooted at a
// deterministic filesystem path, {base}/{collection}_{language}. Handles
// are opened once and held for the process lifetime; the Catalog memoizes
// them so the ingestion builder and the resource registry share the same
// handle for a language.
package vector

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/firebase/genkit/go/ai"
	chromem "github.com/philippgille/chromem-go"

	"github.com/shashtho/shashtho/internal/language"
)

// Document is one retrievable unit of source text.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// Result is a retrieved document with its similarity score.
type Result struct {
	Document   Document
	Similarity float32
}

// NewEmbeddingFunc bridges a Genkit ai.Embedder to chromem's embedding
// callback. chromem normalizes vectors itself, so no manual normalization
// is needed here.
func NewEmbeddingFunc(embedder ai.Embedder) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := embedder.Embed(ctx, &ai.EmbedRequest{
			Input: []*ai.Document{ai.DocumentFromText(text, nil)},
		})
		if err != nil {
			return nil, fmt.Errorf("embed failed: %w", err)
		}
		if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
			return nil, fmt.Errorf("no embeddings returned")
		}
		return resp.Embeddings[0].Embedding, nil
	}
}

// IndexPath returns the deterministic storage path for a language's index.
func IndexPath(base, collection string, lang language.Language) string {
	return fmt.Sprintf("%s/%s_%s", base, collection, lang)
}

// Index is an open handle to one language's persistent index.
// Safe for concurrent use.
type Index struct {
	lang language.Language
	path string
	coll *chromem.Collection
}

// Open opens (creating if absent) the persistent index for lang under
// base, with embeddings computed by embed.
func Open(base, collection string, lang language.Language, embed chromem.EmbeddingFunc) (*Index, error) {
	path := IndexPath(base, collection, lang)

	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector db at %s: %w", path, err)
	}

	collName := fmt.Sprintf("%s_%s", collection, lang)
	coll, err := db.GetOrCreateCollection(collName, map[string]string{"language": lang.String()}, embed)
	if err != nil {
		return nil, fmt.Errorf("opening collection %s: %w", collName, err)
	}

	return &Index{lang: lang, path: path, coll: coll}, nil
}

// Language returns the language this index is scoped to.
func (ix *Index) Language() language.Language { return ix.lang }

// Path returns the index's storage path.
func (ix *Index) Path() string { return ix.path }

// Count returns the number of stored documents.
func (ix *Index) Count() int { return ix.coll.Count() }

// Add embeds and stores docs. Embedding runs with bounded concurrency.
func (ix *Index) Add(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	converted := make([]chromem.Document, len(docs))
	for i, d := range docs {
		converted[i] = chromem.Document{
			ID:       d.ID,
			Content:  d.Content,
			Metadata: d.Metadata,
		}
	}

	if err := ix.coll.AddDocuments(ctx, converted, runtime.NumCPU()); err != nil {
		return fmt.Errorf("adding %d documents to %s index: %w", len(docs), ix.lang, err)
	}
	return nil
}

// Query returns up to k documents most similar to text, best first.
// k is clamped to the stored document count; an empty index yields no
// results rather than an error.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]Result, error) {
	count := ix.coll.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	rows, err := ix.coll.Query(ctx, text, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying %s index: %w", ix.lang, err)
	}

	results := make([]Result, len(rows))
	for i, row := range rows {
		results[i] = Result{
			Document: Document{
				ID:       row.ID,
				Content:  row.Content,
				Metadata: row.Metadata,
			},
			Similarity: row.Similarity,
		}
	}
	return results, nil
}

// Catalog memoizes open Index handles per language.
// Safe for concurrent use; two racers opening the same language share the
// first opened handle.
type Catalog struct {
	base       string
	collection string
	embed      chromem.EmbeddingFunc

	mu      sync.Mutex
	indexes map[language.Language]*Index
}

// NewCatalog creates a catalog rooted at base with the given collection
// name prefix.
func NewCatalog(base, collection string, embed chromem.EmbeddingFunc) *Catalog {
	return &Catalog{
		base:       base,
		collection: collection,
		embed:      embed,
		indexes:    make(map[language.Language]*Index),
	}
}

// Open returns the process-wide Index handle for lang, opening it on
// first use.
func (c *Catalog) Open(lang language.Language) (*Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ix, ok := c.indexes[lang]; ok {
		return ix, nil
	}

	ix, err := Open(c.base, c.collection, lang, c.embed)
	if err != nil {
		return nil, err
	}
	c.indexes[lang] = ix
	return ix, nil
}
