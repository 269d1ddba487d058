package service

import (
	"context"
	"fmt"

	"github.com/cortexa-labs/cortexa/internal/domain"
	"github.com/cortexa-labs/cortexa/internal/telemetry"
)

// Retriever is the assembler's view of knowledge retrieval.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]domain.ChunkMatch, error)
}

// Assembler composes memory, retrieved knowledge, the live query, and the
// tool surface into the fixed five-layer context structure. Given identical
// inputs it produces byte-identical output.
type Assembler struct {
	instructions string
	memory       *ConversationMemory
	retriever    Retriever
	registry     *Registry
	k            int
}

// NewAssembler creates a new Assembler instance
func NewAssembler(
	instructions string,
	memory *ConversationMemory,
	retriever Retriever,
	registry *Registry,
	k int,
) *Assembler {
	return &Assembler{
		instructions: instructions,
		memory:       memory,
		retriever:    retriever,
		registry:     registry,
		k:            k,
	}
}

// Memory exposes the conversation memory so the caller can feed the model
// response back in after each exchange.
func (a *Assembler) Memory() *ConversationMemory {
	return a.memory
}

// Assemble builds the five-layer context for one query. A retrieval failure
// aborts assembly; proceeding with a silently empty knowledge layer would
// break traceability.
func (a *Assembler) Assemble(ctx context.Context, query string) (*domain.AssembledContext, error) {
	ctx, span := telemetry.StartSpan(ctx, "Assembler.Assemble", telemetry.SpanAttributes{
		SessionID: a.memory.SessionID(),
		Operation: "assemble",
	})
	defer span.End()

	matches, err := a.retriever.Retrieve(ctx, query, a.k)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("knowledge retrieval failed: %w", err)
	}

	return &domain.AssembledContext{
		Query: query,
		Layers: []domain.ContextLayer{
			{Name: domain.LayerInstructions, Content: a.instructions},
			{Name: domain.LayerHistory, Content: FormatHistory(a.memory.Recent())},
			{Name: domain.LayerKnowledge, Content: FormatMatches(matches)},
			{Name: domain.LayerQuery, Content: query},
			{Name: domain.LayerTools, Content: FormatDescriptors(a.registry.Descriptors())},
		},
	}, nil
}
