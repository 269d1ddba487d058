package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/cortexa-labs/cortexa/internal/domain"
	"github.com/cortexa-labs/cortexa/internal/telemetry"
	"github.com/google/uuid"
)

// EmbeddingClient defines the interface for generating embeddings. The same
// client (model and dimensions) must be used at index-build time and at
// query time.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	Model() string
	Dimensions() int
}

// VectorIndex is the capability set an index implementation must provide.
// Concrete variants live in the repository package: an in-memory index with
// file save/load, and a pgvector-backed one.
type VectorIndex interface {
	Replace(ctx context.Context, meta domain.IndexMeta, chunks []domain.IndexedChunk) error
	Search(ctx context.Context, query []float32, k int) ([]domain.ChunkMatch, error)
	Meta(ctx context.Context) (domain.IndexMeta, error)
	Count(ctx context.Context) (int, error)
}

// BuildReport summarizes an index build for inspection.
type BuildReport struct {
	BuildID     string
	TotalChunks int
	MinLength   int
	MaxLength   int
	AvgLength   int
	BySource    map[string]int
}

// IndexerService chunks documents, embeds each chunk, and replaces the
// backing index wholesale. There is no incremental update; re-indexing
// rebuilds everything.
type IndexerService struct {
	client EmbeddingClient
	index  VectorIndex
	cfg    ChunkConfig
}

// NewIndexerService creates a new IndexerService instance
func NewIndexerService(client EmbeddingClient, index VectorIndex) *IndexerService {
	return NewIndexerServiceWithConfig(client, index, DefaultChunkConfig())
}

// NewIndexerServiceWithConfig creates a new IndexerService with explicit
// chunking configuration.
func NewIndexerServiceWithConfig(client EmbeddingClient, index VectorIndex, cfg ChunkConfig) *IndexerService {
	if cfg.ChunkSize <= 0 {
		cfg = DefaultChunkConfig()
	}
	return &IndexerService{
		client: client,
		index:  index,
		cfg:    cfg,
	}
}

// Build chunks the given documents, embeds every chunk, and replaces the
// index contents. Fails with ErrEmptySource when no document yields a chunk.
func (s *IndexerService) Build(ctx context.Context, docs []domain.Document) (*BuildReport, error) {
	ctx, span := telemetry.StartSpan(ctx, "IndexerService.Build", telemetry.SpanAttributes{
		Operation: "index_build",
	})
	defer span.End()

	buildID := uuid.NewString()
	report := &BuildReport{
		BuildID:  buildID,
		BySource: make(map[string]int),
	}

	var entries []domain.IndexedChunk
	totalLen := 0
	for _, doc := range docs {
		chunks := chunkText(doc.Text, s.cfg)
		for i, content := range chunks {
			chunk := domain.Chunk{
				SourceID: doc.SourceID,
				Position: i,
				Content:  content,
			}
			embedding, err := s.client.GenerateEmbedding(ctx, content)
			if err != nil {
				span.SetError(err)
				return nil, fmt.Errorf("failed to embed chunk %s: %w", chunk.Provenance(), err)
			}
			entries = append(entries, domain.IndexedChunk{Chunk: chunk, Embedding: embedding})

			length := utf8.RuneCountInString(content)
			totalLen += length
			if report.MinLength == 0 || length < report.MinLength {
				report.MinLength = length
			}
			if length > report.MaxLength {
				report.MaxLength = length
			}
			report.BySource[doc.SourceID]++
		}
	}

	if len(entries) == 0 {
		span.SetError(domain.ErrEmptySource)
		return nil, domain.ErrEmptySource
	}

	report.TotalChunks = len(entries)
	report.AvgLength = totalLen / len(entries)

	meta := domain.IndexMeta{
		BuildID:    buildID,
		Model:      s.client.Model(),
		Dimensions: s.client.Dimensions(),
		ChunkSize:  s.cfg.ChunkSize,
		Overlap:    s.cfg.Overlap,
	}
	if err := s.index.Replace(ctx, meta, entries); err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to replace index contents: %w", err)
	}

	return report, nil
}
