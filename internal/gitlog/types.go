// Package gitlog extracts commit history with per-file diff stats by
// invoking git, producing the commit records the correlator consumes.
package gitlog

import "time"

// FileChange is the numstat entry for one file in a commit.
type FileChange struct {
	Path    string `json:"path"`
	Added   int    `json:"added"`
	Deleted int    `json:"deleted"`

	// Binary marks files git reports with "-" numstat counts.
	Binary bool `json:"binary,omitempty"`

	// Generated marks lock files and generated code excluded from the
	// commit's aggregate line counts.
	Generated bool `json:"generated,omitempty"`
}

// Commit is one version-control checkpoint with authored diff stats.
type Commit struct {
	Hash        string    `json:"hash"`
	AuthorEmail string    `json:"author_email"`
	Timestamp   time.Time `json:"timestamp"`
	Subject     string    `json:"subject"`

	// Branches are the branch names this commit is decorated with.
	Branches []string `json:"branches,omitempty"`

	// OnDefaultBranch is true when the commit is reachable from the
	// repository's default branch.
	OnDefaultBranch bool `json:"on_default_branch"`

	// Files lists per-file changes in numstat order.
	Files []FileChange `json:"files"`

	// LinesAdded and LinesDeleted aggregate non-generated file changes.
	LinesAdded   int `json:"lines_added"`
	LinesDeleted int `json:"lines_deleted"`
}

// NetLines returns added minus deleted lines.
func (c *Commit) NetLines() int {
	return c.LinesAdded - c.LinesDeleted
}

// RepoLog holds the extracted history for one repository.
type RepoLog struct {
	// RepoPath is the repository root the log was taken from.
	RepoPath string `json:"repo_path"`

	// DefaultBranch is the resolved primary branch name.
	DefaultBranch string `json:"default_branch"`

	// Mine are commits authored by the configured identity, newest first.
	Mine []Commit `json:"mine"`

	// All is the superset across branches, used for default-branch tagging.
	All []Commit `json:"all"`
}
