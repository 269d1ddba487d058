package service

import (
	"strings"
	"unicode/utf8"
)

// chunkSeparators is the priority-ordered separator list: paragraph break,
// line break, sentence end, clause end, space, and finally a hard character
// split. A separator later in the list is tried only when splitting by the
// current one still leaves a piece over the size limit.
var chunkSeparators = []string{"\n\n", "\n", ". ", ", ", " ", ""}

// ChunkConfig controls document chunking for the index build.
type ChunkConfig struct {
	ChunkSize int
	Overlap   int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		ChunkSize: 500,
		Overlap:   80,
	}
}

// chunkText splits text into chunks of at most cfg.ChunkSize runes with
// roughly cfg.Overlap runes shared between consecutive chunks. The final
// chunk of a document may be shorter, with no forced overlap.
func chunkText(text string, cfg ChunkConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if cfg.ChunkSize <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = 0
	}

	pieces := splitBySeparators(clean, cfg.ChunkSize, chunkSeparators)

	chunks := make([]string, 0, 8)
	var window []string
	winLen := 0

	for _, piece := range pieces {
		pl := utf8.RuneCountInString(piece)
		if winLen+pl > cfg.ChunkSize && len(window) > 0 {
			if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
				chunks = append(chunks, chunk)
			}
			// Drop pieces from the front until the retained tail fits the
			// overlap budget and leaves room for the incoming piece.
			for len(window) > 0 && (winLen > cfg.Overlap || winLen+pl > cfg.ChunkSize) {
				winLen -= utf8.RuneCountInString(window[0])
				window = window[1:]
			}
		}
		window = append(window, piece)
		winLen += pl
	}

	if chunk := strings.TrimSpace(strings.Join(window, "")); chunk != "" {
		chunks = append(chunks, chunk)
	}

	return chunks
}

// splitBySeparators splits text into pieces of at most size runes. Each
// separator keeps its text attached to the preceding piece, so joining
// consecutive pieces reproduces the source verbatim.
func splitBySeparators(text string, size int, seps []string) []string {
	if utf8.RuneCountInString(text) <= size {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	sep := seps[0]
	if sep == "" {
		return splitHard(text, size)
	}

	parts := strings.SplitAfter(text, sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) <= size {
			out = append(out, part)
			continue
		}
		out = append(out, splitBySeparators(part, size, seps[1:])...)
	}
	return out
}

// splitHard cuts text into fixed windows of size runes. Last resort when no
// separator yields a small enough piece.
func splitHard(text string, size int) []string {
	runes := []rune(text)
	out := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
