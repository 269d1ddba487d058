package domain

import "strings"

// Layer names, in assembly order. The five-layer order is fixed: stable
// instructions first, live query and tool surface last.
const (
	LayerInstructions = "System Instructions"
	LayerHistory      = "Conversation History"
	LayerKnowledge    = "Retrieved Knowledge (RAG)"
	LayerQuery        = "User Query"
	LayerTools        = "Available Tools"
)

// LayerOrder is the canonical ordering of context layers.
var LayerOrder = []string{
	LayerInstructions,
	LayerHistory,
	LayerKnowledge,
	LayerQuery,
	LayerTools,
}

// ContextLayer is one labeled section of an assembled model input.
type ContextLayer struct {
	Name    string
	Content string
}

// AssembledContext is the five-layer structure handed to the model
// invocation collaborator. Built fresh per query and never mutated after
// handoff.
type AssembledContext struct {
	Query  string
	Layers []ContextLayer
}

// Layer returns the layer with the given name, if present.
func (a *AssembledContext) Layer(name string) (ContextLayer, bool) {
	for _, l := range a.Layers {
		if l.Name == name {
			return l, true
		}
	}
	return ContextLayer{}, false
}

// Prompt serializes the assembled context into a single model input string.
// Every layer gets an explicit label header so sections are never
// concatenated ambiguously. The output is byte-deterministic for identical
// layer content.
func (a *AssembledContext) Prompt() string {
	var b strings.Builder
	for i, l := range a.Layers {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("### ")
		b.WriteString(l.Name)
		b.WriteString("\n")
		b.WriteString(l.Content)
	}
	return b.String()
}

// ToolDescriptor describes an invocable tool: its name and the ordered
// roles of its expected arguments. Descriptors are attached to the context;
// execution happens only when the model requests it.
type ToolDescriptor struct {
	Name        string
	Version     string
	Description string
	Args        []string
}
