package metrics

import (
	"testing"

	"github.com/blackwell-systems/roiwatch/internal/correlate"
)

func fp(v float64) *float64 { return &v }

func TestGradeFor_Ladder(t *testing.T) {
	cases := []struct {
		name     string
		cpc      float64
		survival int
		want     string
	}{
		{"cheap and durable", 3.00, 90, "A"},
		{"cheap but churny", 3.00, 70, "B"},
		{"mid cost", 12.00, 75, "B"},
		{"pricey", 35.00, 50, "C"},
		{"expensive", 90.00, 30, "D"},
		{"very expensive", 150.00, 100, "F"},
		{"durable but unaffordable", 101.00, 95, "F"},
		{"boundary A", 5.00, 80, "A"},
		{"boundary D", 100.00, 20, "D"},
	}

	for _, tc := range cases {
		if got := gradeFor(fp(tc.cpc), 1, tc.survival); got != tc.want {
			t.Errorf("%s: gradeFor($%.2f, survival %d) = %s, want %s",
				tc.name, tc.cpc, tc.survival, got, tc.want)
		}
	}
}

func TestGradeFor_ZeroCommitsAlwaysF(t *testing.T) {
	if got := gradeFor(nil, 0, 100); got != "F" {
		t.Errorf("grade with zero commits = %s, want F", got)
	}
}

func gradeRank(g string) int {
	switch g {
	case "A":
		return 0
	case "B":
		return 1
	case "C":
		return 2
	case "D":
		return 3
	default:
		return 4
	}
}

func TestGradeFor_Monotonic(t *testing.T) {
	// Lowering cost-per-commit or raising survival must never worsen the
	// grade.
	costs := []float64{1, 5, 10, 15, 30, 40, 80, 100, 200}
	survivals := []int{0, 20, 40, 60, 80, 100}

	for _, s := range survivals {
		prev := "F"
		for i := len(costs) - 1; i >= 0; i-- {
			g := gradeFor(fp(costs[i]), 1, s)
			if gradeRank(g) > gradeRank(prev) {
				t.Errorf("grade worsened from %s to %s as cost dropped to $%.0f (survival %d)",
					prev, g, costs[i], s)
			}
			prev = g
		}
	}

	for _, c := range costs {
		prev := "F"
		for _, s := range survivals {
			g := gradeFor(fp(c), 1, s)
			if gradeRank(g) > gradeRank(prev) {
				t.Errorf("grade worsened from %s to %s as survival rose to %d (cost $%.0f)",
					prev, g, s, c)
			}
			prev = g
		}
	}
}

func TestGradeSession(t *testing.T) {
	cs := &correlate.CorrelatedSession{
		CommitCount:   2,
		CostPerCommit: fp(4.0),
	}
	if got := GradeSession(cs, 85); got != "A" {
		t.Errorf("GradeSession = %s, want A", got)
	}
}
