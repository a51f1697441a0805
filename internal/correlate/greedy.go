package correlate

import (
	"time"

	"github.com/blackwell-systems/roiwatch/internal/claude"
	"github.com/blackwell-systems/roiwatch/internal/gitlog"
)

// greedyAssign is the legacy single-pass strategy: sessions are scanned in
// order and each claims every still-unclaimed commit in its window. The
// shared claimed set makes the outcome depend on session ordering, which
// is why StrategyNearest is the default; this variant survives as an
// explicit configuration choice.
func greedyAssign(sessions []claude.Session, commits []gitlog.Commit, opts Options) (map[int][]gitlog.Commit, []gitlog.Commit) {
	claimed := make(map[string]bool)
	assigned := make(map[int][]gitlog.Commit)

	for i, s := range sessions {
		files := relativeFileSet(s.FilesWritten, s.RepoPath)
		windowEnd := s.EndTime.Add(opts.BufferWindow)

		for _, c := range commits {
			if claimed[c.Hash] {
				continue
			}
			if !inWindow(c.Timestamp, s.StartTime, windowEnd) {
				continue
			}
			if len(files) > 0 && !commitOverlaps(&c, files) {
				continue
			}
			claimed[c.Hash] = true
			assigned[i] = append(assigned[i], c)
		}
	}

	var organic []gitlog.Commit
	for _, c := range commits {
		if !claimed[c.Hash] {
			organic = append(organic, c)
		}
	}

	return assigned, organic
}

// inWindow reports ts in [start, end] inclusive.
func inWindow(ts, start, end time.Time) bool {
	return !ts.Before(start) && !ts.After(end)
}
