package metrics

import "github.com/blackwell-systems/roiwatch/internal/correlate"

// gradeStep is one rung of the grading ladder: a grade is earned when
// cost-per-commit is at most MaxCostPerCommit AND survival is at least
// MinSurvival. Steps loosen monotonically, so improving either input can
// never produce a worse grade.
type gradeStep struct {
	Grade            string
	MaxCostPerCommit float64
	MinSurvival      int
}

var gradeLadder = []gradeStep{
	{"A", 5.0, 80},
	{"B", 15.0, 60},
	{"C", 40.0, 40},
	{"D", 100.0, 20},
}

// gradeFor walks the ladder. Zero commits is always an F: money was spent
// and nothing shipped, regardless of how little.
func gradeFor(costPerCommit *float64, commits int, survival int) string {
	if commits == 0 || costPerCommit == nil {
		return "F"
	}
	for _, step := range gradeLadder {
		if *costPerCommit <= step.MaxCostPerCommit && survival >= step.MinSurvival {
			return step.Grade
		}
	}
	return "F"
}

// GradeSession grades one correlated session against its repository's
// survival rate.
func GradeSession(cs *correlate.CorrelatedSession, survival int) string {
	return gradeFor(cs.CostPerCommit, cs.CommitCount, survival)
}

// GradeOverall grades the whole report from aggregate cost-per-commit and
// the merged survival rate.
func GradeOverall(t Totals, survival int) string {
	return gradeFor(t.CostPerCommit, t.Commits, survival)
}
