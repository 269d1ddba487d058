package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexa-labs/cortexa/internal/domain"
	"github.com/cortexa-labs/cortexa/internal/repository"
)

func seedIndex(t *testing.T, embedder *stubEmbedder, contents []string) *repository.MemoryIndex {
	t.Helper()

	index := repository.NewMemoryIndex()
	entries := make([]domain.IndexedChunk, 0, len(contents))
	for i, content := range contents {
		vec, err := embedder.GenerateEmbedding(context.Background(), content)
		require.NoError(t, err)
		entries = append(entries, domain.IndexedChunk{
			Chunk:     domain.Chunk{SourceID: "kb.txt", Position: i, Content: content},
			Embedding: vec,
		})
	}
	meta := domain.IndexMeta{
		BuildID:    "build-1",
		Model:      embedder.Model(),
		Dimensions: embedder.Dimensions(),
	}
	require.NoError(t, index.Replace(context.Background(), meta, entries))
	return index
}

func TestRetrievalService_Retrieve_OrderedByScore(t *testing.T) {
	embedder := newStubEmbedder(3)
	embedder.vectors["alpha"] = []float32{1, 0, 0}
	embedder.vectors["beta"] = []float32{0, 1, 0}
	embedder.vectors["mixed"] = []float32{1, 1, 0}
	embedder.vectors["query"] = []float32{1, 0.2, 0}

	index := seedIndex(t, embedder, []string{"beta", "mixed", "alpha"})
	retrieval := NewRetrievalService(embedder, index, 2)

	matches, err := retrieval.Retrieve(context.Background(), "query", 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, "alpha", matches[0].Content)
	assert.Equal(t, "mixed", matches[1].Content)
	assert.Equal(t, "beta", matches[2].Content)
	assert.Greater(t, matches[0].Score, matches[1].Score)

	// Provenance survives retrieval.
	assert.Equal(t, "kb.txt", matches[0].SourceID)
	assert.Equal(t, "kb.txt, chunk 2", matches[0].Provenance())
}

func TestRetrievalService_Retrieve_TiesKeepInsertionOrder(t *testing.T) {
	embedder := newStubEmbedder(3)
	embedder.vectors["first"] = []float32{0, 1, 0}
	embedder.vectors["second"] = []float32{0, 1, 0}
	embedder.vectors["query"] = []float32{0, 1, 0}

	index := seedIndex(t, embedder, []string{"first", "second"})
	retrieval := NewRetrievalService(embedder, index, 2)

	matches, err := retrieval.Retrieve(context.Background(), "query", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "first", matches[0].Content)
	assert.Equal(t, "second", matches[1].Content)
}

func TestRetrievalService_Retrieve_NeverMoreThanK(t *testing.T) {
	embedder := newStubEmbedder(3)
	index := seedIndex(t, embedder, []string{"a", "b", "c", "d", "e"})
	retrieval := NewRetrievalService(embedder, index, 2)

	matches, err := retrieval.Retrieve(context.Background(), "anything", 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	// k <= 0 falls back to the configured default.
	matches, err = retrieval.Retrieve(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestRetrievalService_Retrieve_FewerChunksThanK(t *testing.T) {
	embedder := newStubEmbedder(3)
	index := seedIndex(t, embedder, []string{"only"})
	retrieval := NewRetrievalService(embedder, index, 2)

	matches, err := retrieval.Retrieve(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestRetrievalService_Retrieve_Idempotent(t *testing.T) {
	embedder := newStubEmbedder(3)
	index := seedIndex(t, embedder, []string{"gross revenue", "net revenue", "churn"})
	retrieval := NewRetrievalService(embedder, index, 2)

	first, err := retrieval.Retrieve(context.Background(), "revenue", 2)
	require.NoError(t, err)
	second, err := retrieval.Retrieve(context.Background(), "revenue", 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRetrievalService_Retrieve_ModelMismatch(t *testing.T) {
	builder := newStubEmbedder(3)
	index := seedIndex(t, builder, []string{"content"})

	querier := newStubEmbedder(3)
	querier.model = "different-model"
	retrieval := NewRetrievalService(querier, index, 2)

	_, err := retrieval.Retrieve(context.Background(), "query", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingMismatch)
}

func TestRetrievalService_Retrieve_DimensionMismatch(t *testing.T) {
	builder := newStubEmbedder(3)
	index := seedIndex(t, builder, []string{"content"})

	querier := newStubEmbedder(3)
	querier.vectors["query"] = []float32{1, 0}
	retrieval := NewRetrievalService(querier, index, 2)

	_, err := retrieval.Retrieve(context.Background(), "query", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingMismatch)
}

func TestFormatMatches(t *testing.T) {
	assert.Equal(t, "No relevant knowledge found", FormatMatches(nil))

	matches := []domain.ChunkMatch{
		{Chunk: domain.Chunk{SourceID: "kb.txt", Position: 3, Content: "AOV is revenue over orders."}},
	}
	assert.Equal(t, "- AOV is revenue over orders. (kb.txt, chunk 3)", FormatMatches(matches))
}
