package services

import (
	"strings"

	"voice-agent-platform/models"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// ChunkText splits normalized text into overlapping fixed-size windows.
// The window advances by chunkSize-overlap each step (minimum 1).
// Whitespace-only windows are dropped without disturbing the offsets, and
// the emitted index counts produced chunks rather than window positions.
// The final window may be shorter than chunkSize; whitespace-only input
// yields no chunks. Output is deterministic for a given input and
// configuration.
func ChunkText(input string, chunkSize, overlap int) []models.TextChunk {
	normalized := normalizeText(input)
	if normalized == "" {
		return nil
	}

	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	step := chunkSize - overlap
	if step < 1 {
		step = 1
	}

	runes := []rune(normalized)
	var chunks []models.TextChunk
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		text := strings.TrimSpace(string(runes[start:end]))
		if text != "" {
			chunks = append(chunks, models.TextChunk{Index: len(chunks), Text: text})
		}

		if end >= len(runes) {
			break
		}
	}

	return chunks
}
