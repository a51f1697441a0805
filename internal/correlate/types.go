// Package correlate assigns commits to the agent sessions that most
// plausibly produced them, flagging the rest as organic work.
package correlate

import (
	"time"

	"github.com/blackwell-systems/roiwatch/internal/claude"
	"github.com/blackwell-systems/roiwatch/internal/gitlog"
	"github.com/blackwell-systems/roiwatch/internal/pricing"
)

// Strategy selects the commit-assignment algorithm.
type Strategy string

const (
	// StrategyNearest is the two-phase candidate-then-resolve algorithm:
	// every commit picks its single best session globally, so results do
	// not depend on session input order.
	StrategyNearest Strategy = "nearest"

	// StrategyGreedy is the legacy first-session-wins scan. Kept for
	// comparison; its assignments depend on session ordering.
	StrategyGreedy Strategy = "greedy"
)

// Default tuning constants.
const (
	// DefaultBufferWindow extends the match window past session end, so
	// commits made shortly after a session closes still attribute to it.
	DefaultBufferWindow = 2 * time.Hour

	// DefaultOrphanThreshold is the message count above which a session
	// with zero commits counts as orphaned effort.
	DefaultOrphanThreshold = 10

	// DefaultChurnWindow is the gap within which a later deletion counts
	// as churn against an earlier addition to the same file.
	DefaultChurnWindow = 24 * time.Hour
)

// Options tunes the correlation run.
type Options struct {
	// BufferWindow extends each session's match window past its end time.
	BufferWindow time.Duration

	// OrphanThreshold is the minimum message count for the orphan flag.
	OrphanThreshold int

	// ChurnWindow is the survival estimator's churn window.
	ChurnWindow time.Duration

	// Strategy picks the assignment algorithm.
	Strategy Strategy
}

// withDefaults fills zero-valued options.
func (o Options) withDefaults() Options {
	if o.BufferWindow <= 0 {
		o.BufferWindow = DefaultBufferWindow
	}
	if o.OrphanThreshold <= 0 {
		o.OrphanThreshold = DefaultOrphanThreshold
	}
	if o.ChurnWindow <= 0 {
		o.ChurnWindow = DefaultChurnWindow
	}
	if o.Strategy == "" {
		o.Strategy = StrategyNearest
	}
	return o
}

// CorrelatedSession is a session augmented with its assigned commits and
// the line/cost attribution derived from them.
type CorrelatedSession struct {
	claude.Session

	// Commits assigned to this session, ordered by timestamp. A commit
	// belongs to at most one session.
	Commits []gitlog.Commit `json:"commits"`

	CommitCount          int `json:"commit_count"`
	DefaultBranchCommits int `json:"default_branch_commits"`

	// Line counts attributable to this session. For file-overlap matches
	// only the overlapping files count; chat-only matches take the whole
	// commit.
	LinesAdded   int `json:"lines_added"`
	LinesDeleted int `json:"lines_deleted"`
	NetLines     int `json:"net_lines"`

	// FilesTouched is the distinct file count across assigned commits.
	FilesTouched int `json:"files_touched"`

	// Orphaned marks sessions with meaningful effort but no shipped
	// commits.
	Orphaned bool `json:"orphaned"`

	// UncommittedFiles are written files never seen in any assigned
	// commit, sorted.
	UncommittedFiles []string `json:"uncommitted_files,omitempty"`

	// Cost fields are filled during metrics aggregation. The per-unit
	// ratios are nil when the denominator is zero.
	Cost           pricing.Breakdown `json:"cost"`
	CostPerCommit  *float64          `json:"cost_per_commit"`
	CostPerLine    *float64          `json:"cost_per_line"`
	CostPerNetLine *float64          `json:"cost_per_net_line"`

	// Grade is the letter grade A-F assigned during aggregation.
	Grade string `json:"grade,omitempty"`
}

// RepoResult is the correlation outcome for a single repository.
type RepoResult struct {
	RepoPath string `json:"repo_path"`

	// Sessions are the repository's correlated sessions, ordered by
	// start time.
	Sessions []CorrelatedSession `json:"sessions"`

	// Organic are commits no session claimed, ordered by timestamp.
	Organic []gitlog.Commit `json:"organic"`

	// Survival is the churn-based line survival estimate over all of the
	// user's commits in this repository.
	Survival SurvivalStats `json:"survival"`
}

// Result is the correlation outcome across all repositories.
type Result struct {
	// Repos is keyed by repository path.
	Repos map[string]*RepoResult `json:"repos"`
}

// AllSessions returns every correlated session across repositories,
// ordered by repository path then start time.
func (r *Result) AllSessions() []CorrelatedSession {
	var all []CorrelatedSession
	for _, path := range sortedRepoPaths(r.Repos) {
		all = append(all, r.Repos[path].Sessions...)
	}
	return all
}

// AllOrganic returns every organic commit across repositories, ordered by
// repository path then timestamp.
func (r *Result) AllOrganic() []gitlog.Commit {
	var all []gitlog.Commit
	for _, path := range sortedRepoPaths(r.Repos) {
		all = append(all, r.Repos[path].Organic...)
	}
	return all
}
