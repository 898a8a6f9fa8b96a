// Package chunker splits extracted document text into fixed-size overlapping
// windows, the unit of embedding and retrieval.
package chunker

import (
	"fmt"
	"strings"
)

const (
	// DefaultSize is the window length in bytes used when no size is configured.
	DefaultSize = 500

	// DefaultOverlap is the number of bytes shared between consecutive windows.
	DefaultOverlap = 50
)

// Chunker produces deterministic overlapping windows over a text.
// The zero value is not usable; construct with New.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker with the given window size and overlap.
// size must be positive and overlap must satisfy 0 <= overlap < size;
// anything else is rejected rather than clamped, since a non-positive
// advance would stall the cursor.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunker: size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunker: overlap must be in [0, size), got overlap=%d size=%d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the configured window length.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap length.
func (c *Chunker) Overlap() int { return c.overlap }

// Split cuts text into windows of at most size bytes, each consecutive pair
// sharing overlap bytes. Whitespace-only windows are dropped from the output
// but still advance the cursor, so the tiling over the source is preserved.
// Empty input yields a nil slice.
func (c *Chunker) Split(text string) []string {
	if len(text) == 0 {
		return nil
	}
	if len(text) <= c.size {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	var chunks []string
	step := c.size - c.overlap
	for start := 0; start < len(text); start += step {
		end := start + c.size
		if end > len(text) {
			end = len(text)
		}
		window := text[start:end]
		if strings.TrimSpace(window) != "" {
			chunks = append(chunks, window)
		}
	}
	return chunks
}
