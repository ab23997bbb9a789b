// Package chunker splits normalized text into ordered overlapping segments
// for embedding and retrieval. Splitting is a pure function of its inputs.
package chunker

import (
	"fmt"
	"strings"
)

// Validate checks a size/overlap pair once at startup. An overlap that is not
// strictly smaller than the chunk size would make splitting loop forever, so
// it is a configuration error, not a per-call failure.
func Validate(size, overlap int) error {
	if size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 {
		return fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= size {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", overlap, size)
	}
	return nil
}

// Normalize collapses all runs of whitespace to single spaces and trims the
// ends. Chunk boundaries are computed over normalized text so that stored
// chunk content is a contiguous slice of it.
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Split cuts text into rune-based windows of at most size runes, consecutive
// windows sharing overlap runes. Returns nil for empty or whitespace-only
// input. Inputs of at most size runes yield exactly one chunk. The caller
// must have validated size and overlap with Validate.
func Split(text string, size, overlap int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	step := size - overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
