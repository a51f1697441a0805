package correlate

import (
	"testing"
	"time"

	"github.com/blackwell-systems/roiwatch/internal/gitlog"
)

func day(d, hour int) time.Time {
	return time.Date(2025, 6, d, hour, 0, 0, 0, time.UTC)
}

func TestEstimateSurvival_NoAdditions(t *testing.T) {
	stats := EstimateSurvival(nil, 0)
	if stats.Rate != 100 {
		t.Errorf("Rate = %d, want 100", stats.Rate)
	}
}

func TestEstimateSurvival_ChurnWithinWindow(t *testing.T) {
	commits := []gitlog.Commit{
		mkCommit("c1", day(2, 10), gitlog.FileChange{Path: "a.go", Added: 100}),
		mkCommit("c2", day(2, 15), gitlog.FileChange{Path: "a.go", Added: 0, Deleted: 40}),
	}

	stats := EstimateSurvival(commits, 24*time.Hour)

	if stats.TotalAdded != 100 {
		t.Errorf("TotalAdded = %d, want 100", stats.TotalAdded)
	}
	if stats.TotalChurned != 40 {
		t.Errorf("TotalChurned = %d, want 40", stats.TotalChurned)
	}
	if stats.Rate != 60 {
		t.Errorf("Rate = %d, want 60", stats.Rate)
	}
}

func TestEstimateSurvival_OutsideWindowDoesNotChurn(t *testing.T) {
	commits := []gitlog.Commit{
		mkCommit("c1", day(2, 10), gitlog.FileChange{Path: "a.go", Added: 100}),
		mkCommit("c2", day(4, 10), gitlog.FileChange{Path: "a.go", Deleted: 100}),
	}

	stats := EstimateSurvival(commits, 24*time.Hour)

	if stats.TotalChurned != 0 {
		t.Errorf("TotalChurned = %d, want 0", stats.TotalChurned)
	}
	if stats.Rate != 100 {
		t.Errorf("Rate = %d, want 100", stats.Rate)
	}
}

func TestEstimateSurvival_ChurnCappedByAddition(t *testing.T) {
	// The rewrite deletes more lines than the first commit added; churn
	// is capped at what was added.
	commits := []gitlog.Commit{
		mkCommit("c1", day(2, 10), gitlog.FileChange{Path: "a.go", Added: 10}),
		mkCommit("c2", day(2, 12), gitlog.FileChange{Path: "a.go", Added: 5, Deleted: 80}),
	}

	stats := EstimateSurvival(commits, 24*time.Hour)

	if stats.TotalChurned != 10 {
		t.Errorf("TotalChurned = %d, want 10", stats.TotalChurned)
	}
	if stats.TotalAdded != 15 {
		t.Errorf("TotalAdded = %d, want 15", stats.TotalAdded)
	}
}

func TestEstimateSurvival_DifferentFilesIndependent(t *testing.T) {
	commits := []gitlog.Commit{
		mkCommit("c1", day(2, 10), gitlog.FileChange{Path: "a.go", Added: 50}),
		mkCommit("c2", day(2, 11), gitlog.FileChange{Path: "b.go", Deleted: 50}),
	}

	stats := EstimateSurvival(commits, 24*time.Hour)

	if stats.TotalChurned != 0 {
		t.Errorf("TotalChurned = %d, want 0", stats.TotalChurned)
	}
}

func TestEstimateSurvival_SkipsGeneratedAndBinary(t *testing.T) {
	commits := []gitlog.Commit{
		mkCommit("c1", day(2, 10),
			gitlog.FileChange{Path: "go.sum", Added: 500, Generated: true},
			gitlog.FileChange{Path: "logo.png", Binary: true},
		),
	}

	stats := EstimateSurvival(commits, 24*time.Hour)

	if stats.TotalAdded != 0 {
		t.Errorf("TotalAdded = %d, want 0", stats.TotalAdded)
	}
	if stats.Rate != 100 {
		t.Errorf("Rate = %d, want 100", stats.Rate)
	}
}

func TestEstimateSurvival_RateRoundsToFives(t *testing.T) {
	// 33/100 churned leaves 67%, which rounds to 65.
	commits := []gitlog.Commit{
		mkCommit("c1", day(2, 10), gitlog.FileChange{Path: "a.go", Added: 100}),
		mkCommit("c2", day(2, 12), gitlog.FileChange{Path: "a.go", Deleted: 33}),
	}

	stats := EstimateSurvival(commits, 24*time.Hour)

	if stats.Rate != 65 {
		t.Errorf("Rate = %d, want 65", stats.Rate)
	}
	if stats.Rate%5 != 0 {
		t.Errorf("Rate = %d, want a multiple of 5", stats.Rate)
	}
}

func TestSurvivalRate_Bounds(t *testing.T) {
	if got := survivalRate(0, 0); got != 100 {
		t.Errorf("survivalRate(0, 0) = %d, want 100", got)
	}
	if got := survivalRate(10, 10); got != 0 {
		t.Errorf("survivalRate(10, 10) = %d, want 0", got)
	}
	if got := survivalRate(10, 0); got != 100 {
		t.Errorf("survivalRate(10, 0) = %d, want 100", got)
	}
}

func TestMergeSurvival(t *testing.T) {
	merged := MergeSurvival(
		SurvivalStats{TotalAdded: 100, TotalChurned: 50},
		SurvivalStats{TotalAdded: 100, TotalChurned: 0},
	)

	if merged.TotalAdded != 200 {
		t.Errorf("TotalAdded = %d, want 200", merged.TotalAdded)
	}
	if merged.Rate != 75 {
		t.Errorf("Rate = %d, want 75", merged.Rate)
	}
}
