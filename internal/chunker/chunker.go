// Package chunker splits extracted per-page document text into overlapping
// fixed-size windows for embedding.
package chunker

import "strings"

const (
	// DefaultMaxChars is the maximum number of characters per chunk.
	DefaultMaxChars = 1800

	// DefaultOverlap is the number of characters shared between
	// consecutive chunks from the same page.
	DefaultOverlap = 200
)

// Chunk is a bounded window of page text tagged with its 1-based source page.
type Chunk struct {
	Page int    // 1-based page number
	Text string // non-empty, at most MaxChars characters
}

// Chunker splits page text into overlapping windows.
type Chunker struct {
	maxChars int
	overlap  int
}

// New creates a Chunker with the given window size and overlap.
// Non-positive maxChars falls back to DefaultMaxChars; a negative overlap or
// an overlap that is not smaller than maxChars falls back to DefaultOverlap.
func New(maxChars, overlap int) *Chunker {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if overlap < 0 || overlap >= maxChars {
		overlap = DefaultOverlap
		if overlap >= maxChars {
			overlap = maxChars / 2
		}
	}
	return &Chunker{
		maxChars: maxChars,
		overlap:  overlap,
	}
}

// ChunkPages splits each page into windows of up to maxChars characters,
// advancing the window start by maxChars-overlap each step. Windows are
// counted in runes so a chunk boundary never splits a multi-byte character.
// Blank or whitespace-only pages contribute no chunks. A page shorter than
// maxChars yields exactly one chunk.
func (c *Chunker) ChunkPages(pages []string) []Chunk {
	var chunks []Chunk
	for i, page := range pages {
		text := []rune(strings.TrimSpace(page))
		if len(text) == 0 {
			continue
		}
		start := 0
		for start < len(text) {
			end := min(start+c.maxChars, len(text))
			chunks = append(chunks, Chunk{
				Page: i + 1,
				Text: string(text[start:end]),
			})
			if end == len(text) {
				break
			}
			start = max(0, end-c.overlap)
		}
	}
	return chunks
}

// Texts returns the chunk texts in order.
func Texts(chunks []Chunk) []string {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	return texts
}

// Pages returns the chunk page tags in order.
func Pages(chunks []Chunk) []int {
	pages := make([]int, len(chunks))
	for i, chunk := range chunks {
		pages[i] = chunk.Page
	}
	return pages
}
