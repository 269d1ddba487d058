package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cortexa-labs/cortexa/internal/domain"
	"github.com/cortexa-labs/cortexa/internal/telemetry"
)

// DefaultRetrievalK is the default number of chunks returned per query.
const DefaultRetrievalK = 2

// RetrievalService embeds a query and returns the most similar indexed
// chunks with provenance metadata.
type RetrievalService struct {
	client EmbeddingClient
	index  VectorIndex
	k      int
}

// NewRetrievalService creates a new RetrievalService instance
func NewRetrievalService(client EmbeddingClient, index VectorIndex, k int) *RetrievalService {
	if k <= 0 {
		k = DefaultRetrievalK
	}
	return &RetrievalService{
		client: client,
		index:  index,
		k:      k,
	}
}

// Retrieve returns up to k chunks ordered by descending similarity, ties
// broken by original insertion order. Fewer than k results is not an error;
// an embedding-space mismatch between query and index is.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, k int) ([]domain.ChunkMatch, error) {
	ctx, span := telemetry.StartSpan(ctx, "RetrievalService.Retrieve", telemetry.SpanAttributes{
		Operation: "retrieve",
	})
	defer span.End()

	if k <= 0 {
		k = s.k
	}

	meta, err := s.index.Meta(ctx)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to read index metadata: %w", err)
	}
	if meta.Model != s.client.Model() || meta.Dimensions != s.client.Dimensions() {
		err := domain.NewDomainErrorWithCause(
			domain.ErrCodeEmbeddingMismatch,
			fmt.Sprintf("index built with %s (%d dims), provider is %s (%d dims)",
				meta.Model, meta.Dimensions, s.client.Model(), s.client.Dimensions()),
			domain.ErrEmbeddingMismatch,
		)
		span.SetError(err)
		return nil, err
	}

	embedding, err := s.client.GenerateEmbedding(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embedding) != meta.Dimensions {
		err := domain.NewDomainErrorWithCause(
			domain.ErrCodeEmbeddingMismatch,
			fmt.Sprintf("query embedding has %d dims, index has %d", len(embedding), meta.Dimensions),
			domain.ErrEmbeddingMismatch,
		)
		span.SetError(err)
		return nil, err
	}

	matches, err := s.index.Search(ctx, embedding, k)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("index search failed: %w", err)
	}
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// FormatMatches serializes retrieval results for the knowledge layer, one
// line per chunk with its provenance attached.
func FormatMatches(matches []domain.ChunkMatch) string {
	if len(matches) == 0 {
		return "No relevant knowledge found"
	}
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("- %s (%s)", m.Content, m.Provenance()))
	}
	return strings.Join(lines, "\n")
}
