package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexa-labs/cortexa/internal/domain"
)

type stubRetriever struct {
	matches []domain.ChunkMatch
	err     error
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, k int) ([]domain.ChunkMatch, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.matches) > k {
		return s.matches[:k], nil
	}
	return s.matches, nil
}

func newTestAssembler(retriever Retriever) *Assembler {
	memory := NewConversationMemory(4)
	return NewAssembler("You are a data analyst.", memory, retriever, NewRegistry(), 2)
}

func TestAssembler_Assemble_FiveLayersInOrder(t *testing.T) {
	retriever := &stubRetriever{
		matches: []domain.ChunkMatch{
			{Chunk: domain.Chunk{SourceID: "kb.txt", Position: 0, Content: "NRR measures expansion."}},
		},
	}
	assembler := newTestAssembler(retriever)

	assembled, err := assembler.Assemble(context.Background(), "What is NRR?")
	require.NoError(t, err)
	require.Len(t, assembled.Layers, 5)

	assert.Equal(t, domain.LayerOrder, []string{
		assembled.Layers[0].Name,
		assembled.Layers[1].Name,
		assembled.Layers[2].Name,
		assembled.Layers[3].Name,
		assembled.Layers[4].Name,
	})

	assert.Equal(t, "You are a data analyst.", assembled.Layers[0].Content)
	assert.Equal(t, "No previous conversation", assembled.Layers[1].Content)
	assert.Equal(t, "- NRR measures expansion. (kb.txt, chunk 0)", assembled.Layers[2].Content)
	assert.Equal(t, "What is NRR?", assembled.Layers[3].Content)
	assert.Contains(t, assembled.Layers[4].Content, "stam(")
}

func TestAssembler_Assemble_Deterministic(t *testing.T) {
	retriever := &stubRetriever{
		matches: []domain.ChunkMatch{
			{Chunk: domain.Chunk{SourceID: "kb.txt", Position: 1, Content: "Churn is customer loss."}},
		},
	}
	assembler := newTestAssembler(retriever)
	assembler.Memory().Append(domain.NewUserTurn("hello"))
	assembler.Memory().Append(domain.NewAssistantTurn("hi there"))

	first, err := assembler.Assemble(context.Background(), "What is churn?")
	require.NoError(t, err)
	second, err := assembler.Assemble(context.Background(), "What is churn?")
	require.NoError(t, err)

	assert.Equal(t, first.Prompt(), second.Prompt())
}

func TestAssembler_Assemble_HistoryReflectsMemory(t *testing.T) {
	assembler := newTestAssembler(&stubRetriever{})
	assembler.Memory().Append(domain.NewUserTurn("What is AOV?"))
	assembler.Memory().Append(domain.NewAssistantTurn("Average order value."))

	assembled, err := assembler.Assemble(context.Background(), "And churn?")
	require.NoError(t, err)

	history, ok := assembled.Layer(domain.LayerHistory)
	require.True(t, ok)
	assert.Equal(t, "User: What is AOV?\nAssistant: Average order value.", history.Content)
}

func TestAssembler_Assemble_EmptyKnowledge(t *testing.T) {
	assembler := newTestAssembler(&stubRetriever{})

	assembled, err := assembler.Assemble(context.Background(), "anything")
	require.NoError(t, err)
	knowledge, ok := assembled.Layer(domain.LayerKnowledge)
	require.True(t, ok)
	assert.Equal(t, "No relevant knowledge found", knowledge.Content)
}

func TestAssembler_Assemble_RetrievalFailureAborts(t *testing.T) {
	retrievalErr := errors.New("index unavailable")
	assembler := newTestAssembler(&stubRetriever{err: retrievalErr})

	_, err := assembler.Assemble(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, retrievalErr)
}

func TestAssembledContext_Prompt(t *testing.T) {
	assembled := &domain.AssembledContext{
		Query: "q",
		Layers: []domain.ContextLayer{
			{Name: "First", Content: "one"},
			{Name: "Second", Content: "two"},
		},
	}
	assert.Equal(t, "### First\none\n\n### Second\ntwo", assembled.Prompt())
}
