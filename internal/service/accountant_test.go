package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cortexa-labs/cortexa/internal/domain"
)

func TestTokenAccountant_EstimateTokens(t *testing.T) {
	accountant := NewTokenAccountant(4)

	assert.Equal(t, 0, accountant.EstimateTokens(""))
	assert.Equal(t, 1, accountant.EstimateTokens("a"))
	assert.Equal(t, 1, accountant.EstimateTokens("abcd"))
	assert.Equal(t, 2, accountant.EstimateTokens("abcde"))
	assert.Equal(t, 25, accountant.EstimateTokens(strings.Repeat("x", 100)))
}

func TestTokenAccountant_Measure(t *testing.T) {
	accountant := NewTokenAccountant(4)
	assembled := &domain.AssembledContext{
		Layers: []domain.ContextLayer{
			{Name: domain.LayerInstructions, Content: strings.Repeat("a", 120)}, // 30 tokens
			{Name: domain.LayerHistory, Content: strings.Repeat("b", 40)},       // 10 tokens
			{Name: domain.LayerKnowledge, Content: strings.Repeat("c", 200)},    // 50 tokens
			{Name: domain.LayerQuery, Content: strings.Repeat("d", 24)},         // 6 tokens
			{Name: domain.LayerTools, Content: strings.Repeat("e", 16)},         // 4 tokens
		},
	}

	measurements := accountant.Measure(assembled)
	require.Len(t, measurements, 5)

	assert.Equal(t, 30, measurements[0].Tokens)
	assert.Equal(t, 10, measurements[1].Tokens)
	assert.Equal(t, 50, measurements[2].Tokens)
	assert.Equal(t, 6, measurements[3].Tokens)
	assert.Equal(t, 4, measurements[4].Tokens)
	assert.Equal(t, 100, TotalTokens(measurements))

	assert.InDelta(t, 30.0, measurements[0].Percent, 0.001)
	assert.InDelta(t, 50.0, measurements[2].Percent, 0.001)

	sum := 0.0
	for _, m := range measurements {
		sum += m.Percent
	}
	assert.InDelta(t, 100.0, sum, 1.0)

	// Layer labels carry through in assembly order.
	for i, m := range measurements {
		assert.Equal(t, domain.LayerOrder[i], m.Layer)
	}
}

func TestTokenAccountant_Measure_PercentagesSumNearHundred(t *testing.T) {
	accountant := NewTokenAccountant(4)
	assembled := &domain.AssembledContext{
		Layers: []domain.ContextLayer{
			{Name: "A", Content: strings.Repeat("x", 13)},
			{Name: "B", Content: strings.Repeat("x", 7)},
			{Name: "C", Content: strings.Repeat("x", 311)},
		},
	}

	sum := 0.0
	for _, m := range accountant.Measure(assembled) {
		sum += m.Percent
	}
	assert.InDelta(t, 100.0, sum, 1.0)
}

func TestTokenAccountant_Measure_AllEmptyLayers(t *testing.T) {
	accountant := NewTokenAccountant(4)
	assembled := &domain.AssembledContext{
		Layers: []domain.ContextLayer{{Name: "A"}, {Name: "B"}},
	}

	for _, m := range accountant.Measure(assembled) {
		assert.Equal(t, 0, m.Tokens)
		assert.Equal(t, 0.0, m.Percent)
	}
}

func TestTokenAccountant_Render(t *testing.T) {
	accountant := NewTokenAccountant(4)
	measurements := []LayerMeasurement{
		{Layer: "System Instructions", Tokens: 50, Percent: 50},
		{Layer: "User Query", Tokens: 50, Percent: 50},
	}

	out := accountant.Render(measurements)

	assert.Contains(t, out, "CONTEXT WINDOW BREAKDOWN")
	assert.Contains(t, out, "1. SYSTEM INSTRUCTIONS")
	assert.Contains(t, out, "2. USER QUERY")
	assert.Contains(t, out, "Tokens: 50 (50.0%)")
	assert.Contains(t, out, strings.Repeat("█", 25))
	assert.Contains(t, out, "TOTAL CONTEXT TOKENS: 100")
}

func TestTokenAccountant_Render_DoesNotMutateInput(t *testing.T) {
	accountant := NewTokenAccountant(4)
	measurements := []LayerMeasurement{
		{Layer: "System Instructions", Tokens: 7, Percent: 70},
		{Layer: "User Query", Tokens: 3, Percent: 30},
	}
	before := make([]LayerMeasurement, len(measurements))
	copy(before, measurements)

	_ = accountant.Render(measurements)
	assert.Equal(t, before, measurements)
}

func TestNewTokenAccountant_DefaultRatio(t *testing.T) {
	accountant := NewTokenAccountant(0)
	assert.Equal(t, 1, accountant.EstimateTokens("abcd"))
	assert.Equal(t, 2, accountant.EstimateTokens("abcdefg"))
}
