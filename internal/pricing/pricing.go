// Package pricing converts token counts into dollar costs using versioned
// per-model pricing tables.
package pricing

import (
	"strings"

	"github.com/blackwell-systems/roiwatch/internal/claude"
)

// Tier holds per-million-token rates for a pricing tier.
type Tier struct {
	InputPerMillion      float64
	OutputPerMillion     float64
	CacheReadPerMillion  float64
	CacheWritePerMillion float64
}

// Breakdown is a monetary cost breakdown for some token usage.
type Breakdown struct {
	InputCost      float64 `json:"input_cost"`
	OutputCost     float64 `json:"output_cost"`
	CacheReadCost  float64 `json:"cache_read_cost"`
	CacheWriteCost float64 `json:"cache_write_cost"`
	TotalCost      float64 `json:"total_cost"`
}

// Add accumulates another breakdown into this one.
func (b *Breakdown) Add(other Breakdown) {
	b.InputCost += other.InputCost
	b.OutputCost += other.OutputCost
	b.CacheReadCost += other.CacheReadCost
	b.CacheWriteCost += other.CacheWriteCost
	b.TotalCost += other.TotalCost
}

// Vintage selects which pricing table generation to use.
type Vintage string

const (
	// VintageVersioned matches full model IDs by longest prefix, so
	// "claude-sonnet-4-5-20250929" resolves to the claude-sonnet-4 tier.
	VintageVersioned Vintage = "versioned"

	// VintageFlat is the older scheme: one rate per model family matched
	// by substring, ignoring version differences.
	VintageFlat Vintage = "flat"
)

// versionedEntry pairs a model ID prefix with its tier.
type versionedEntry struct {
	Prefix string
	Tier   Tier
}

// versionedTable maps model ID prefixes to pricing. Longest-prefix matching
// lets versioned IDs like "claude-sonnet-4-5-20250929" match "claude-sonnet-4".
var versionedTable = []versionedEntry{
	{"claude-opus-4", Tier{15.00, 75.00, 1.50, 18.75}},
	{"claude-sonnet-4", Tier{3.00, 15.00, 0.30, 3.75}},
	{"claude-haiku-4", Tier{0.80, 4.00, 0.08, 1.00}},
	{"claude-3-opus", Tier{15.00, 75.00, 1.50, 18.75}},
	{"claude-3-7-sonnet", Tier{3.00, 15.00, 0.30, 3.75}},
	{"claude-3-5-sonnet", Tier{3.00, 15.00, 0.30, 3.75}},
	{"claude-3-sonnet", Tier{3.00, 15.00, 0.30, 3.75}},
	{"claude-3-5-haiku", Tier{0.80, 4.00, 0.08, 1.00}},
	{"claude-3-haiku", Tier{0.25, 1.25, 0.03, 0.30}},
}

// flatTable maps model family substrings to pricing.
var flatTable = map[string]Tier{
	"opus":   {15.00, 75.00, 1.50, 18.75},
	"sonnet": {3.00, 15.00, 0.30, 3.75},
	"haiku":  {0.25, 1.25, 0.03, 0.30},
}

// Lookup resolves the pricing tier for a model identifier. The boolean is
// false for unrecognized models, whose cost must degrade to zero.
func Lookup(model string, vintage Vintage) (Tier, bool) {
	lower := strings.ToLower(model)

	if vintage == VintageFlat {
		for family, tier := range flatTable {
			if strings.Contains(lower, family) {
				return tier, true
			}
		}
		return Tier{}, false
	}

	var best Tier
	bestLen := -1
	for _, entry := range versionedTable {
		if strings.HasPrefix(lower, entry.Prefix) && len(entry.Prefix) > bestLen {
			best = entry.Tier
			bestLen = len(entry.Prefix)
		}
	}
	return best, bestLen >= 0
}

// tokensToCost converts a token count to dollars given a per-million rate.
func tokensToCost(tokens int64, perMillion float64) float64 {
	return float64(tokens) / 1_000_000.0 * perMillion
}

// Cost computes the breakdown for one model's usage. Unknown models cost
// zero rather than failing.
func Cost(model string, usage claude.TokenUsage, vintage Vintage) Breakdown {
	tier, ok := Lookup(model, vintage)
	if !ok {
		return Breakdown{}
	}

	b := Breakdown{
		InputCost:      tokensToCost(usage.InputTokens, tier.InputPerMillion),
		OutputCost:     tokensToCost(usage.OutputTokens, tier.OutputPerMillion),
		CacheReadCost:  tokensToCost(usage.CacheReadInputTokens, tier.CacheReadPerMillion),
		CacheWriteCost: tokensToCost(usage.CacheCreationInputTokens, tier.CacheWritePerMillion),
	}
	b.TotalCost = b.InputCost + b.OutputCost + b.CacheReadCost + b.CacheWriteCost
	return b
}

// SessionCost computes the whole-session breakdown as the sum of per-model
// costs, each at its own tier. Mixing tiers any other way misattributes
// cheap-model tokens at expensive rates.
func SessionCost(modelUsage map[string]claude.TokenUsage, vintage Vintage) Breakdown {
	var total Breakdown
	for model, usage := range modelUsage {
		total.Add(Cost(model, usage, vintage))
	}
	return total
}
