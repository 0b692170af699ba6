// Package ingest builds the per-language vector indexes from raw source
// files.
//
// Ingestion is plumbing around the vector package: read {dataDir}/{lang}
// for .txt files, split them into chunks, and write the chunks (with
// embeddings) into the language's persistent index. The answering
// pipeline depends only on the resulting index being queryable.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shashtho/shashtho/internal/language"
	"github.com/shashtho/shashtho/internal/vector"
)

// Sentinel errors mapped to HTTP statuses at the API boundary.
var (
	// ErrSourceNotFound indicates the language's source directory is
	// missing or contains no .txt files.
	ErrSourceNotFound = errors.New("source files not found")

	// ErrNoChunks indicates splitting produced no chunks.
	ErrNoChunks = errors.New("no chunks produced")
)

// IndexOpener yields the index handle for a language. Satisfied by
// (*vector.Catalog).Open.
type IndexOpener func(lang language.Language) (*vector.Index, error)

// BuildResult summarizes a completed build.
type BuildResult struct {
	Language language.Language
	Chunks   int
	Path     string
	Duration time.Duration
}

// Builder ingests source files into per-language indexes.
type Builder struct {
	dataDir string
	open    IndexOpener
	split   SplitConfig
	logger  *slog.Logger
}

// NewBuilder creates a Builder reading sources from dataDir and writing
// through open. A nil logger falls back to slog.Default.
func NewBuilder(dataDir string, open IndexOpener, split SplitConfig, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{dataDir: dataDir, open: open, split: split, logger: logger}
}

// Build reads {dataDir}/{lang}/*.txt, splits the content, and stores the
// chunks in the language's index. Chunk IDs are content hashes, so
// rebuilding from unchanged sources overwrites rather than duplicates.
func (b *Builder) Build(ctx context.Context, lang language.Language) (BuildResult, error) {
	start := time.Now()

	srcDir := filepath.Join(b.dataDir, lang.String())
	if info, err := os.Stat(srcDir); err != nil || !info.IsDir() {
		return BuildResult{}, fmt.Errorf("%w: directory %s", ErrSourceNotFound, srcDir)
	}

	files, err := filepath.Glob(filepath.Join(srcDir, "*.txt"))
	if err != nil {
		return BuildResult{}, fmt.Errorf("listing source files: %w", err)
	}
	if len(files) == 0 {
		return BuildResult{}, fmt.Errorf("%w: no .txt files in %s", ErrSourceNotFound, srcDir)
	}

	var docs []vector.Document
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return BuildResult{}, fmt.Errorf("reading %s: %w", file, err)
		}

		source := filepath.Base(file)
		for _, chunk := range Split(string(content), b.split) {
			metadata := chunk.Metadata
			if metadata == nil {
				metadata = make(map[string]string, 1)
			}
			metadata["source"] = source

			docs = append(docs, vector.Document{
				ID:       chunkID(lang, source, chunk.Content),
				Content:  chunk.Content,
				Metadata: metadata,
			})
		}
	}

	if len(docs) == 0 {
		return BuildResult{}, ErrNoChunks
	}

	ix, err := b.open(lang)
	if err != nil {
		return BuildResult{}, fmt.Errorf("opening %s index: %w", lang, err)
	}

	if err := ix.Add(ctx, docs); err != nil {
		return BuildResult{}, err
	}

	result := BuildResult{
		Language: lang,
		Chunks:   len(docs),
		Path:     ix.Path(),
		Duration: time.Since(start),
	}
	b.logger.Info("vector index built",
		"language", lang,
		"files", len(files),
		"chunks", result.Chunks,
		"path", result.Path,
		"duration", result.Duration,
	)
	return result, nil
}

// chunkID derives a stable document ID from the language, source file,
// and chunk text. Including the source keeps identical passages from
// different files as distinct documents, so the stored count matches the
// reported count; rebuilding unchanged sources still overwrites in place.
func chunkID(lang language.Language, source, content string) string {
	sum := sha256.Sum256([]byte(lang.String() + "\x00" + source + "\x00" + content))
	return hex.EncodeToString(sum[:16])
}
