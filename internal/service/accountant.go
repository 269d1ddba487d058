package service

import (
	"fmt"
	"strings"

	"github.com/cortexa-labs/cortexa/internal/domain"
)

// DefaultCharsPerToken is the fixed estimation ratio. Roughly four
// characters per token for English text; good enough for proportional
// accounting, not billing.
const DefaultCharsPerToken = 4

// LayerMeasurement is the token count and share of one context layer.
type LayerMeasurement struct {
	Layer   string
	Tokens  int
	Percent float64
}

// TokenAccountant estimates per-layer token cost and renders a
// proportional breakdown. The same ratio applies uniformly to every layer;
// cross-layer consistency is the invariant, not absolute accuracy.
type TokenAccountant struct {
	charsPerToken int
}

// NewTokenAccountant creates an accountant with the given ratio.
func NewTokenAccountant(charsPerToken int) *TokenAccountant {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return &TokenAccountant{charsPerToken: charsPerToken}
}

// EstimateTokens converts content length to a token estimate, rounding up
// so non-empty content never counts as zero.
func (t *TokenAccountant) EstimateTokens(content string) int {
	if len(content) == 0 {
		return 0
	}
	return (len(content) + t.charsPerToken - 1) / t.charsPerToken
}

// Measure computes the token count and percentage for every layer of an
// assembled context. Percentages are taken against the sum across all
// layers and total 100 within integer-rounding tolerance.
func (t *TokenAccountant) Measure(assembled *domain.AssembledContext) []LayerMeasurement {
	measurements := make([]LayerMeasurement, len(assembled.Layers))
	total := 0
	for i, layer := range assembled.Layers {
		tokens := t.EstimateTokens(layer.Content)
		measurements[i] = LayerMeasurement{Layer: layer.Name, Tokens: tokens}
		total += tokens
	}
	if total == 0 {
		return measurements
	}
	for i := range measurements {
		measurements[i].Percent = float64(measurements[i].Tokens) / float64(total) * 100
	}
	return measurements
}

// TotalTokens sums the token counts of a measurement set.
func TotalTokens(measurements []LayerMeasurement) int {
	total := 0
	for _, m := range measurements {
		total += m.Tokens
	}
	return total
}

// Render produces the human-readable proportional breakdown: one gauge per
// layer plus the total. Read-only over Measure's output.
func (t *TokenAccountant) Render(measurements []LayerMeasurement) string {
	var b strings.Builder
	rule := strings.Repeat("=", 80)

	b.WriteString(rule + "\n")
	b.WriteString("CONTEXT WINDOW BREAKDOWN\n")
	b.WriteString(rule + "\n")

	for i, m := range measurements {
		barLen := int(m.Percent / 2)
		bar := strings.Repeat("█", barLen)
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, strings.ToUpper(m.Layer))
		fmt.Fprintf(&b, "   Tokens: %d (%.1f%%)\n", m.Tokens, m.Percent)
		fmt.Fprintf(&b, "   [%-50s]\n", bar)
	}

	fmt.Fprintf(&b, "\n%s\nTOTAL CONTEXT TOKENS: %d\n%s\n", rule, TotalTokens(measurements), rule)
	return b.String()
}
