package domain

import "fmt"

// Document is a raw source text with its origin identifier.
// Immutable once loaded; owned by the indexer.
type Document struct {
	SourceID string
	Text     string
}

// NewDocument creates a Document.
func NewDocument(sourceID, text string) Document {
	return Document{SourceID: sourceID, Text: text}
}

// Chunk is a bounded slice of a Document carrying provenance metadata.
// Created at index-build time and never mutated afterwards.
type Chunk struct {
	SourceID string
	Position int
	Content  string
}

// Provenance returns the human-readable origin of the chunk for display
// alongside retrieved content.
func (c Chunk) Provenance() string {
	return fmt.Sprintf("%s, chunk %d", c.SourceID, c.Position)
}

// IndexedChunk pairs a Chunk with its embedding vector.
type IndexedChunk struct {
	Chunk
	Embedding []float32
}

// ChunkMatch is a retrieval result: a chunk plus its similarity score.
type ChunkMatch struct {
	Chunk
	Score float32
}

// IndexMeta describes the embedding space a persisted index was built in.
// Retrieval must verify it against the live embedding provider before
// searching.
type IndexMeta struct {
	BuildID    string
	Model      string
	Dimensions int
	ChunkSize  int
	Overlap    int
}
