package pricing

import (
	"math"
	"testing"

	"github.com/blackwell-systems/roiwatch/internal/claude"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestSessionCost_PerModelAdditivity(t *testing.T) {
	// 1M sonnet input tokens at $3/M plus 100K opus output tokens at
	// $75/M: each model priced at its own tier, then summed.
	usage := map[string]claude.TokenUsage{
		"claude-sonnet-4-5-20250929": {InputTokens: 1_000_000},
		"claude-opus-4-1-20250805":   {OutputTokens: 100_000},
	}

	b := SessionCost(usage, VintageVersioned)

	if !almostEqual(b.InputCost, 3.00) {
		t.Errorf("InputCost = %v, want 3.00", b.InputCost)
	}
	if !almostEqual(b.OutputCost, 7.50) {
		t.Errorf("OutputCost = %v, want 7.50", b.OutputCost)
	}
	if !almostEqual(b.TotalCost, 10.50) {
		t.Errorf("TotalCost = %v, want 10.50", b.TotalCost)
	}
}

func TestCost_UnknownModelIsZero(t *testing.T) {
	usage := claude.TokenUsage{InputTokens: 5_000_000, OutputTokens: 1_000_000}

	b := Cost("experimental-model-x", usage, VintageVersioned)

	if b.TotalCost != 0 {
		t.Errorf("TotalCost = %v, want 0 for unknown model", b.TotalCost)
	}
}

func TestLookup_LongestPrefixWins(t *testing.T) {
	// claude-3-5-haiku must match its own tier, not the cheaper
	// claude-3-haiku entry.
	tier, ok := Lookup("claude-3-5-haiku-20241022", VintageVersioned)
	if !ok {
		t.Fatal("expected a tier for claude-3-5-haiku")
	}
	if tier.InputPerMillion != 0.80 {
		t.Errorf("InputPerMillion = %v, want 0.80", tier.InputPerMillion)
	}

	tier, ok = Lookup("claude-3-haiku-20240307", VintageVersioned)
	if !ok {
		t.Fatal("expected a tier for claude-3-haiku")
	}
	if tier.InputPerMillion != 0.25 {
		t.Errorf("InputPerMillion = %v, want 0.25", tier.InputPerMillion)
	}
}

func TestLookup_VintagesDisagreeOnHaiku(t *testing.T) {
	// The flat table prices every haiku at the old 3-haiku rate; the
	// versioned table knows 3.5-haiku costs more.
	versioned, ok := Lookup("claude-3-5-haiku-20241022", VintageVersioned)
	if !ok {
		t.Fatal("versioned lookup failed")
	}
	flat, ok := Lookup("claude-3-5-haiku-20241022", VintageFlat)
	if !ok {
		t.Fatal("flat lookup failed")
	}

	if versioned.InputPerMillion != 0.80 {
		t.Errorf("versioned InputPerMillion = %v, want 0.80", versioned.InputPerMillion)
	}
	if flat.InputPerMillion != 0.25 {
		t.Errorf("flat InputPerMillion = %v, want 0.25", flat.InputPerMillion)
	}
}

func TestCost_CacheTokens(t *testing.T) {
	usage := claude.TokenUsage{
		CacheReadInputTokens:     10_000_000,
		CacheCreationInputTokens: 1_000_000,
	}

	b := Cost("claude-sonnet-4-20250514", usage, VintageVersioned)

	if !almostEqual(b.CacheReadCost, 3.00) {
		t.Errorf("CacheReadCost = %v, want 3.00", b.CacheReadCost)
	}
	if !almostEqual(b.CacheWriteCost, 3.75) {
		t.Errorf("CacheWriteCost = %v, want 3.75", b.CacheWriteCost)
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	if _, ok := Lookup("Claude-Sonnet-4-20250514", VintageVersioned); !ok {
		t.Error("lookup should ignore case")
	}
}

func TestBreakdown_Add(t *testing.T) {
	a := Breakdown{InputCost: 1, OutputCost: 2, TotalCost: 3}
	a.Add(Breakdown{InputCost: 0.5, CacheReadCost: 0.25, TotalCost: 0.75})

	if !almostEqual(a.InputCost, 1.5) {
		t.Errorf("InputCost = %v, want 1.5", a.InputCost)
	}
	if !almostEqual(a.TotalCost, 3.75) {
		t.Errorf("TotalCost = %v, want 3.75", a.TotalCost)
	}
}
