// Package metrics folds correlated sessions and organic commits into the
// final ROI report: totals, grades, breakdowns, and insights.
package metrics

import (
	"time"

	"github.com/blackwell-systems/roiwatch/internal/correlate"
	"github.com/blackwell-systems/roiwatch/internal/gitlog"
	"github.com/blackwell-systems/roiwatch/internal/pricing"
)

// Report is the single structure handed to presentation. All ratios that
// could divide by zero are pointers; nil means "no defined value".
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`

	Totals  Totals `json:"totals"`
	Grade   string `json:"grade"`

	// Sessions carry their assigned commits, costs, and grades; Organic
	// lists commits no session claimed.
	Sessions []correlate.CorrelatedSession `json:"sessions"`
	Organic  []gitlog.Commit               `json:"organic_commits"`

	Daily    []DayStats `json:"daily"`
	BestDay  *DayStats  `json:"best_day,omitempty"`
	WorstDay *DayStats  `json:"worst_day,omitempty"`

	Models        []ModelFamilyStats `json:"models"`
	Tools         []ToolStats        `json:"tools"`
	LengthBuckets []LengthBucket     `json:"length_buckets"`

	// Heatmap counts won commits per weekday (Sunday = 0) and hour,
	// using each commit's own timestamp.
	Heatmap [7][24]int `json:"heatmap"`

	Repos []RepoStats `json:"repos"`

	Survival correlate.SurvivalStats `json:"survival"`
	Funnel   WasteFunnel             `json:"funnel"`

	Insights []Insight `json:"insights"`
}

// Totals aggregates across every session and repository.
type Totals struct {
	Sessions         int `json:"sessions"`
	OrphanedSessions int `json:"orphaned_sessions"`
	Commits          int `json:"commits"`
	OrganicCommits   int `json:"organic_commits"`

	// DefaultBranchCommits counts won commits that reached the default
	// branch.
	DefaultBranchCommits int `json:"default_branch_commits"`

	LinesAdded   int `json:"lines_added"`
	LinesDeleted int `json:"lines_deleted"`
	NetLines     int `json:"net_lines"`

	TotalTokens int64             `json:"total_tokens"`
	Cost        pricing.Breakdown `json:"cost"`

	CostPerCommit *float64 `json:"cost_per_commit"`
	CostPerLine   *float64 `json:"cost_per_line"`
}

// DayStats is one calendar day's rollup (local time).
type DayStats struct {
	Date     string  `json:"date"`
	Sessions int     `json:"sessions"`
	Commits  int     `json:"commits"`
	Cost     float64 `json:"cost"`
	Tokens   int64   `json:"tokens"`

	// CommitsPerDollar ranks days; the denominator is floored so free
	// days with commits rank highest rather than dividing by zero.
	CommitsPerDollar float64 `json:"commits_per_dollar"`
}

// ModelFamilyStats attributes usage to a model family. Sessions and
// commits are fractional: a session splits across the families it used in
// proportion to each family's token share.
type ModelFamilyStats struct {
	Family   string  `json:"family"`
	Tokens   int64   `json:"tokens"`
	Cost     float64 `json:"cost"`
	Sessions float64 `json:"sessions"`
	Commits  float64 `json:"commits"`
}

// ToolStats is the total invocation count for one tool.
type ToolStats struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// LengthBucket groups sessions by total message count to surface the
// sweet-spot session size.
type LengthBucket struct {
	Label    string `json:"label"`
	MinMsgs  int    `json:"min_msgs"`
	MaxMsgs  int    `json:"max_msgs"` // 0 means unbounded
	Sessions int    `json:"sessions"`
	Commits  int    `json:"commits"`

	Cost          float64  `json:"cost"`
	CostPerCommit *float64 `json:"cost_per_commit"`
}

// RepoStats is the per-repository rollup.
type RepoStats struct {
	RepoPath       string  `json:"repo_path"`
	Sessions       int     `json:"sessions"`
	Commits        int     `json:"commits"`
	OrganicCommits int     `json:"organic_commits"`
	LinesAdded     int     `json:"lines_added"`
	Cost           float64 `json:"cost"`
	SurvivalRate   int     `json:"survival_rate"`
}

// WasteFunnel partitions all session tokens into exactly one of three
// buckets: productive (the session shipped a commit), orphaned (meaningful
// effort, nothing shipped), exploratory (everything else).
type WasteFunnel struct {
	ProductiveTokens  int64 `json:"productive_tokens"`
	OrphanedTokens    int64 `json:"orphaned_tokens"`
	ExploratoryTokens int64 `json:"exploratory_tokens"`

	ProductiveSessions  int `json:"productive_sessions"`
	OrphanedSessions    int `json:"orphaned_sessions"`
	ExploratorySessions int `json:"exploratory_sessions"`

	ProductiveCost  float64 `json:"productive_cost"`
	OrphanedCost    float64 `json:"orphaned_cost"`
	ExploratoryCost float64 `json:"exploratory_cost"`
}

// Insight is one natural-language observation about the report.
type Insight struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
