package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cortexa-labs/cortexa/internal/domain"
	"github.com/cortexa-labs/cortexa/internal/telemetry"
)

// ToolCall is a tool-invocation request extracted from a model response.
type ToolCall struct {
	Name      string
	Arguments string
}

// ModelResponse is what the model invocation collaborator returns for one
// assembled context.
type ModelResponse struct {
	Text      string
	ToolCalls []ToolCall
}

// ModelClient is the model invocation collaborator boundary. The core never
// talks to a vendor directly; the openai package provides the concrete
// implementation.
type ModelClient interface {
	Complete(ctx context.Context, prompt string, tools []domain.ToolDescriptor) (*ModelResponse, error)
}

// QueryResult carries everything one pipeline pass produced.
type QueryResult struct {
	Context      *domain.AssembledContext
	Measurements []LayerMeasurement
	Response     string
	ToolResults  []string
}

// Pipeline runs the per-query chain: assemble, measure, invoke the model,
// route tool calls to the registry, and feed the exchange back into memory.
// Stages execute sequentially; the only state shared across queries is the
// conversation memory and the index.
type Pipeline struct {
	assembler  *Assembler
	accountant *TokenAccountant
	registry   *Registry
	model      ModelClient
}

// NewPipeline creates a new Pipeline instance
func NewPipeline(assembler *Assembler, accountant *TokenAccountant, registry *Registry, model ModelClient) *Pipeline {
	return &Pipeline{
		assembler:  assembler,
		accountant: accountant,
		registry:   registry,
		model:      model,
	}
}

// Memory exposes the session's conversation memory for host-level
// operations like resetting a session.
func (p *Pipeline) Memory() *ConversationMemory {
	return p.assembler.Memory()
}

// Assemble exposes context assembly without model invocation, for
// inspection flows.
func (p *Pipeline) Assemble(ctx context.Context, query string) (*domain.AssembledContext, []LayerMeasurement, error) {
	assembled, err := p.assembler.Assemble(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	return assembled, p.accountant.Measure(assembled), nil
}

// ProcessQuery runs the full chain for one query. A failed tool call is
// reported as that tool's result string rather than failing the pipeline,
// so the next turn's context reflects the failure.
func (p *Pipeline) ProcessQuery(ctx context.Context, query string) (*QueryResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "Pipeline.ProcessQuery", telemetry.SpanAttributes{
		SessionID: p.assembler.Memory().SessionID(),
		Operation: "process_query",
	})
	defer span.End()

	assembled, measurements, err := p.Assemble(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	resp, err := p.model.Complete(ctx, assembled.Prompt(), p.registry.Descriptors())
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("model invocation failed: %w", err)
	}

	toolResults := make([]string, 0, len(resp.ToolCalls))
	for _, call := range resp.ToolCalls {
		result, err := p.registry.Invoke(call.Name, call.Arguments)
		if err != nil {
			toolResults = append(toolResults, fmt.Sprintf("%s failed: %v", call.Name, err))
			continue
		}
		toolResults = append(toolResults, result.Formatted)
	}

	response := resp.Text
	if len(toolResults) > 0 {
		parts := append([]string{}, toolResults...)
		if response != "" {
			parts = append([]string{response}, toolResults...)
		}
		response = strings.Join(parts, "\n")
	}

	memory := p.assembler.Memory()
	memory.Append(domain.NewUserTurn(query))
	memory.Append(domain.NewAssistantTurn(response))

	return &QueryResult{
		Context:      assembled,
		Measurements: measurements,
		Response:     response,
		ToolResults:  toolResults,
	}, nil
}
