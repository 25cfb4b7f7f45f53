// Package textproc holds the pure text algorithms behind typo
// checking: splitting oversized inputs into provider-sized chunks,
// re-basing per-chunk issue positions into the original coordinate
// space, and repairing results when a provider echoes a diff instead
// of the full corrected text.
package textproc

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the largest chunk sent to a provider.
const DefaultChunkSize = 8000

// sentence terminators searched for when adjusting a chunk boundary
var boundaryMarkers = []string{". ", "? ", "! ", ".\n", "?\n", "!\n"}

// Chunk splits text into ordered pieces of at most chunkSize bytes.
// Concatenating the pieces reproduces text exactly; only boundaries
// move. When a window must be cut, the last 20% of it is scanned
// backward for a sentence terminator and the split lands right after
// the punctuation; with no terminator there, the cut lands at
// chunkSize, backed off to the nearest rune start.
func Chunk(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	var chunks []string
	pos := 0
	for pos < len(text) {
		end := pos + chunkSize
		if end >= len(text) {
			chunks = append(chunks, text[pos:])
			break
		}

		searchStart := pos + chunkSize*8/10
		window := text[searchStart:end]

		best := -1
		for _, marker := range boundaryMarkers {
			if i := strings.LastIndex(window, marker); i > best {
				best = i
			}
		}
		if best > 0 {
			// split just past the punctuation, keeping the
			// trailing space/newline in the next chunk
			end = searchStart + best + 1
		} else {
			// hard cut: back off so a multi-byte rune is never severed
			for end > pos+1 && !utf8.RuneStart(text[end]) {
				end--
			}
		}

		chunks = append(chunks, text[pos:end])
		pos = end
	}
	return chunks
}
