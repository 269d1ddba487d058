package repository

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cortexa-labs/cortexa/internal/domain"
)

// MemoryIndex is the in-memory vector index variant. It supports wholesale
// replacement, cosine-similarity search, and JSON file persistence that
// round-trips embeddings without recomputation.
type MemoryIndex struct {
	mu     sync.RWMutex
	meta   domain.IndexMeta
	chunks []domain.IndexedChunk
}

// NewMemoryIndex creates an empty MemoryIndex.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Replace swaps the index contents wholesale. Rebuilds take the write lock,
// so no retrieval observes a half-built index.
func (m *MemoryIndex) Replace(ctx context.Context, meta domain.IndexMeta, chunks []domain.IndexedChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.meta = meta
	m.chunks = append([]domain.IndexedChunk(nil), chunks...)
	return nil
}

// Search returns the k most similar chunks by cosine similarity, ordered by
// descending score with ties broken by insertion order.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]domain.ChunkMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matches := make([]domain.ChunkMatch, 0, len(m.chunks))
	for _, entry := range m.chunks {
		matches = append(matches, domain.ChunkMatch{
			Chunk: entry.Chunk,
			Score: cosineSimilarity(query, entry.Embedding),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Meta returns the embedding-space metadata recorded at build time.
func (m *MemoryIndex) Meta(ctx context.Context) (domain.IndexMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meta, nil
}

// Count returns the number of indexed chunks.
func (m *MemoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks), nil
}

// persistedIndex is the on-disk shape of a MemoryIndex.
type persistedIndex struct {
	Meta   persistedMeta    `json:"meta"`
	Chunks []persistedChunk `json:"chunks"`
}

type persistedMeta struct {
	BuildID    string `json:"build_id"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
	ChunkSize  int    `json:"chunk_size"`
	Overlap    int    `json:"overlap"`
}

type persistedChunk struct {
	SourceID  string    `json:"source_id"`
	Position  int       `json:"position"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

// Save writes the index and its metadata to path. Embeddings are stored
// verbatim so a later Load searches identically to the built index.
func (m *MemoryIndex) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := persistedIndex{
		Meta: persistedMeta{
			BuildID:    m.meta.BuildID,
			Model:      m.meta.Model,
			Dimensions: m.meta.Dimensions,
			ChunkSize:  m.meta.ChunkSize,
			Overlap:    m.meta.Overlap,
		},
		Chunks: make([]persistedChunk, 0, len(m.chunks)),
	}
	for _, entry := range m.chunks {
		out.Chunks = append(out.Chunks, persistedChunk{
			SourceID:  entry.SourceID,
			Position:  entry.Position,
			Content:   entry.Content,
			Embedding: entry.Embedding,
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodePersistence, "failed to encode index", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.NewDomainErrorWithCause(domain.ErrCodePersistence, "failed to create index directory", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodePersistence, "failed to write index file", err)
	}
	return nil
}

// LoadMemoryIndex reads a persisted index from path. A missing or corrupt
// file is a persistence error; callers treat it as "index absent, rebuild
// required", not as fatal.
func LoadMemoryIndex(path string) (*MemoryIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodePersistence, "failed to read index file", err)
	}

	var in persistedIndex
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodePersistence, "index file is corrupt", err)
	}

	idx := NewMemoryIndex()
	idx.meta = domain.IndexMeta{
		BuildID:    in.Meta.BuildID,
		Model:      in.Meta.Model,
		Dimensions: in.Meta.Dimensions,
		ChunkSize:  in.Meta.ChunkSize,
		Overlap:    in.Meta.Overlap,
	}
	idx.chunks = make([]domain.IndexedChunk, 0, len(in.Chunks))
	for _, c := range in.Chunks {
		if idx.meta.Dimensions > 0 && len(c.Embedding) != idx.meta.Dimensions {
			return nil, domain.NewDomainError(domain.ErrCodePersistence, "index file has inconsistent embedding dimensions")
		}
		idx.chunks = append(idx.chunks, domain.IndexedChunk{
			Chunk: domain.Chunk{
				SourceID: c.SourceID,
				Position: c.Position,
				Content:  c.Content,
			},
			Embedding: c.Embedding,
		})
	}
	return idx, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors score zero.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
