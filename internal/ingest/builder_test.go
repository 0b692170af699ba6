package ingest

import (
	"context"
	"crypto/sha256"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	chromem "github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/shashtho/shashtho/internal/language"
	"github.com/shashtho/shashtho/internal/log"
	"github.com/shashtho/shashtho/internal/vector"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubEmbedding derives a deterministic unit vector from the text hash so
// index tests run without a model backend.
func stubEmbedding() chromem.EmbeddingFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		sum := sha256.Sum256([]byte(text))
		v := make([]float32, 8)
		var norm float64
		for i := range v {
			v[i] = float32(sum[i]) + 1
			norm += float64(v[i]) * float64(v[i])
		}
		length := float32(math.Sqrt(norm))
		for i := range v {
			v[i] /= length
		}
		return v, nil
	}
}

// newTestBuilder wires a Builder over a temp data directory and a temp
// vector catalog.
func newTestBuilder(t *testing.T) (*Builder, string, *vector.Catalog) {
	t.Helper()

	dataDir := t.TempDir()
	catalog := vector.NewCatalog(t.TempDir(), "health_chunks", stubEmbedding())
	b := NewBuilder(dataDir, catalog.Open, SplitConfig{}, log.NewNop())
	return b, dataDir, catalog
}

func writeSource(t *testing.T, dataDir string, lang language.Language, name, content string) {
	t.Helper()

	dir := filepath.Join(dataDir, lang.String())
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestBuilder_Build(t *testing.T) {
	t.Parallel()

	b, dataDir, catalog := newTestBuilder(t)
	writeSource(t, dataDir, language.English, "cycle.txt",
		"# The Cycle\nMenstruation is a monthly cycle.\n## Phases\nThe cycle has four phases.")
	writeSource(t, dataDir, language.English, "hygiene.txt",
		"Pads and cups should be changed regularly.")

	result, err := b.Build(context.Background(), language.English)
	require.NoError(t, err)

	assert.Equal(t, language.English, result.Language)
	assert.Equal(t, 3, result.Chunks)
	assert.Contains(t, result.Path, "health_chunks_english")
	assert.Greater(t, result.Duration, time.Duration(0))

	ix, err := catalog.Open(language.English)
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Count())
}

func TestBuilder_RebuildOverwritesInsteadOfDuplicating(t *testing.T) {
	t.Parallel()

	b, dataDir, catalog := newTestBuilder(t)
	writeSource(t, dataDir, language.English, "cycle.txt", "Menstruation is a monthly cycle.")

	_, err := b.Build(context.Background(), language.English)
	require.NoError(t, err)
	_, err = b.Build(context.Background(), language.English)
	require.NoError(t, err)

	ix, err := catalog.Open(language.English)
	require.NoError(t, err)
	// Content-hashed IDs make rebuilds idempotent.
	assert.Equal(t, 1, ix.Count())
}

func TestBuilder_SameChunkInTwoFilesStoredSeparately(t *testing.T) {
	t.Parallel()

	b, dataDir, catalog := newTestBuilder(t)
	writeSource(t, dataDir, language.English, "leaflet.txt", "Menstruation is a monthly cycle.")
	writeSource(t, dataDir, language.English, "handbook.txt", "Menstruation is a monthly cycle.")

	result, err := b.Build(context.Background(), language.English)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Chunks)

	ix, err := catalog.Open(language.English)
	require.NoError(t, err)
	// Identical text from distinct files keeps both documents, so the
	// stored count matches the reported count.
	assert.Equal(t, 2, ix.Count())
}

func TestBuilder_MissingSourceDir(t *testing.T) {
	t.Parallel()

	b, _, _ := newTestBuilder(t)

	_, err := b.Build(context.Background(), language.Bangla)
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestBuilder_NoTxtFiles(t *testing.T) {
	t.Parallel()

	b, dataDir, _ := newTestBuilder(t)
	dir := filepath.Join(dataDir, language.English.String())
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("ignored"), 0o644))

	_, err := b.Build(context.Background(), language.English)
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestBuilder_BlankSourcesYieldNoChunks(t *testing.T) {
	t.Parallel()

	b, dataDir, _ := newTestBuilder(t)
	writeSource(t, dataDir, language.English, "empty.txt", "   \n\n")

	_, err := b.Build(context.Background(), language.English)
	assert.ErrorIs(t, err, ErrNoChunks)
}

func TestBuilder_ChunksCarrySourceMetadata(t *testing.T) {
	t.Parallel()

	b, dataDir, catalog := newTestBuilder(t)
	writeSource(t, dataDir, language.English, "cycle.txt", "# The Cycle\nMenstruation is a monthly cycle.")

	_, err := b.Build(context.Background(), language.English)
	require.NoError(t, err)

	ix, err := catalog.Open(language.English)
	require.NoError(t, err)

	results, err := ix.Query(context.Background(), "monthly cycle", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "cycle.txt", results[0].Document.Metadata["source"])
	assert.Equal(t, "The Cycle", results[0].Document.Metadata["chapter"])
}
