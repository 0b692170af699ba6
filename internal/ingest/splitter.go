package ingest

// splitter.go turns raw source text into retrievable chunks.
//
// Source material is markdown-ish educational text. Primary strategy is
// splitting on heading levels #..#### so each chunk stays within one
// topical section and carries its heading trail as metadata. Sections
// that still exceed the chunk size fall back to size-bounded overlapping
// windows so no chunk outgrows the embedder's useful input length.

import "strings"

// Default chunking parameters.
const (
	DefaultChunkSize    = 1024
	DefaultChunkOverlap = 100
)

// headingLevels maps markdown heading depth to the metadata key recorded
// on chunks under that heading.
var headingLevels = []string{"chapter", "section", "subsection", "sub-subsection"}

// Chunk is one bounded span of source text stored as a retrievable unit.
type Chunk struct {
	Content  string
	Metadata map[string]string
}

// SplitConfig bounds chunk sizes for the window fallback.
type SplitConfig struct {
	ChunkSize    int // maximum chunk length in runes
	ChunkOverlap int // overlap between consecutive window chunks
}

// withDefaults fills zero values with the package defaults. The overlap
// is kept strictly below the chunk size so the window step stays
// positive.
func (c SplitConfig) withDefaults() SplitConfig {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkOverlap <= 0 {
		c.ChunkOverlap = DefaultChunkOverlap
	}
	if c.ChunkOverlap >= c.ChunkSize {
		c.ChunkOverlap = min(DefaultChunkOverlap, c.ChunkSize-1)
	}
	return c
}

// Split chunks text by markdown headings, windowing oversized sections.
// Heading-only sections produce no chunk; blank text produces none.
func Split(text string, cfg SplitConfig) []Chunk {
	cfg = cfg.withDefaults()

	var chunks []Chunk
	headings := make(map[string]string)
	var body strings.Builder

	flush := func() {
		content := strings.TrimSpace(body.String())
		body.Reset()
		if content == "" {
			return
		}
		for _, window := range windows(content, cfg) {
			chunks = append(chunks, Chunk{
				Content:  window,
				Metadata: copyHeadings(headings),
			})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		level, title, ok := parseHeading(line)
		if !ok {
			body.WriteString(line)
			body.WriteString("\n")
			continue
		}

		flush()

		// A heading resets its own level and everything beneath it.
		headings[headingLevels[level]] = title
		for i := level + 1; i < len(headingLevels); i++ {
			delete(headings, headingLevels[i])
		}
	}
	flush()

	return chunks
}

// parseHeading reports whether line is a markdown heading of depth 1-4,
// returning the zero-based depth and title text.
func parseHeading(line string) (level int, title string, ok bool) {
	trimmed := strings.TrimSpace(line)
	hashes := 0
	for hashes < len(trimmed) && trimmed[hashes] == '#' {
		hashes++
	}
	if hashes == 0 || hashes > len(headingLevels) {
		return 0, "", false
	}
	rest := trimmed[hashes:]
	if rest == "" || rest[0] != ' ' {
		return 0, "", false
	}
	return hashes - 1, strings.TrimSpace(rest), true
}

// windows splits content into overlapping spans no longer than ChunkSize
// runes. Content within the limit is returned as-is.
func windows(content string, cfg SplitConfig) []string {
	runes := []rune(content)
	if len(runes) <= cfg.ChunkSize {
		return []string{content}
	}

	step := cfg.ChunkSize - cfg.ChunkOverlap
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + cfg.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		window := strings.TrimSpace(string(runes[start:end]))
		if window != "" {
			out = append(out, window)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}

func copyHeadings(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
