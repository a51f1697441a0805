package correlate

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/roiwatch/internal/claude"
	"github.com/blackwell-systems/roiwatch/internal/gitlog"
)

// Run partitions each repository's commits among that repository's sessions
// and flags unclaimed commits as organic. Repositories are independent, so
// they are processed concurrently; within a repository resolution is
// strictly deterministic.
func Run(sessions []claude.Session, logs map[string]*gitlog.RepoLog, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	byRepo := make(map[string][]claude.Session)
	for _, s := range sessions {
		byRepo[s.RepoPath] = append(byRepo[s.RepoPath], s)
	}

	// Every repo that has sessions or commits gets a result entry.
	paths := make(map[string]bool)
	for path := range byRepo {
		paths[path] = true
	}
	for path := range logs {
		paths[path] = true
	}

	result := &Result{Repos: make(map[string]*RepoResult, len(paths))}
	for path := range paths {
		result.Repos[path] = &RepoResult{RepoPath: path}
	}

	var g errgroup.Group
	for path := range paths {
		g.Go(func() error {
			var commits []gitlog.Commit
			if log, ok := logs[path]; ok && log != nil {
				commits = log.Mine
			}
			// Each goroutine writes only to its own pre-created entry.
			*result.Repos[path] = correlateRepo(path, byRepo[path], commits, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

// candidate is one qualifying (session, commit) pairing.
type candidate struct {
	session  int
	overlap  bool
	distance time.Duration
}

// correlateRepo runs the configured strategy for one repository.
func correlateRepo(repoPath string, sessions []claude.Session, commits []gitlog.Commit, opts Options) RepoResult {
	// Canonical session order removes any input-order dependence.
	sorted := make([]claude.Session, len(sessions))
	copy(sorted, sessions)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartTime.Equal(sorted[j].StartTime) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	ordered := make([]gitlog.Commit, len(commits))
	copy(ordered, commits)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Timestamp.Equal(ordered[j].Timestamp) {
			return ordered[i].Hash < ordered[j].Hash
		}
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var assigned map[int][]gitlog.Commit
	var organic []gitlog.Commit
	if opts.Strategy == StrategyGreedy {
		assigned, organic = greedyAssign(sorted, ordered, opts)
	} else {
		assigned, organic = nearestAssign(sorted, ordered, opts)
	}

	repo := RepoResult{
		RepoPath: repoPath,
		Organic:  organic,
		Survival: EstimateSurvival(commits, opts.ChurnWindow),
	}

	for i, s := range sorted {
		repo.Sessions = append(repo.Sessions, buildCorrelated(s, repoPath, assigned[i], opts))
	}

	return repo
}

// nearestAssign implements two-phase nearest-session-wins matching: collect
// every qualifying candidate per commit, then give each commit to the single
// best session. File overlap beats temporal closeness; remaining ties go to
// the smaller distance.
func nearestAssign(sessions []claude.Session, commits []gitlog.Commit, opts Options) (map[int][]gitlog.Commit, []gitlog.Commit) {
	fileSets := make([]map[string]bool, len(sessions))
	for i, s := range sessions {
		fileSets[i] = relativeFileSet(s.FilesWritten, s.RepoPath)
	}

	assigned := make(map[int][]gitlog.Commit)
	var organic []gitlog.Commit

	for _, c := range commits {
		var best *candidate

		for i, s := range sessions {
			cand, ok := makeCandidate(i, &s, fileSets[i], &c, opts.BufferWindow)
			if !ok {
				continue
			}
			if best == nil || betterCandidate(cand, *best) {
				chosen := cand
				best = &chosen
			}
		}

		if best == nil {
			organic = append(organic, c)
			continue
		}
		assigned[best.session] = append(assigned[best.session], c)
	}

	return assigned, organic
}

// makeCandidate checks whether the commit qualifies for the session. A
// commit qualifies when its timestamp falls in [start, end+buffer] and,
// for sessions that wrote files, at least one commit path overlaps the
// written set. Chat-only sessions match on the time window alone.
func makeCandidate(idx int, s *claude.Session, files map[string]bool, c *gitlog.Commit, buffer time.Duration) (candidate, bool) {
	if c.Timestamp.Before(s.StartTime) || c.Timestamp.After(s.EndTime.Add(buffer)) {
		return candidate{}, false
	}

	overlap := commitOverlaps(c, files)
	if len(files) > 0 && !overlap {
		// Sessions that wrote files only claim commits touching them.
		// Advice-only sessions fall through to time-based matching.
		return candidate{}, false
	}

	return candidate{
		session:  idx,
		overlap:  overlap,
		distance: temporalDistance(c.Timestamp, s.StartTime, s.EndTime),
	}, true
}

// temporalDistance is zero inside [start, end] (inclusive of both
// endpoints), otherwise the distance to the nearer endpoint.
func temporalDistance(ts, start, end time.Time) time.Duration {
	if !ts.Before(start) && !ts.After(end) {
		return 0
	}
	if ts.Before(start) {
		return start.Sub(ts)
	}
	return ts.Sub(end)
}

// betterCandidate reports whether a should win over b for the same commit.
func betterCandidate(a, b candidate) bool {
	if a.overlap != b.overlap {
		return a.overlap
	}
	if a.distance != b.distance {
		return a.distance < b.distance
	}
	// Exact tie: the earlier session wins; sessions are pre-sorted by
	// (start time, ID) so index order is that order.
	return a.session < b.session
}

// commitOverlaps reports whether any commit file is in the session's
// written-file set.
func commitOverlaps(c *gitlog.Commit, files map[string]bool) bool {
	if len(files) == 0 {
		return false
	}
	for _, fc := range c.Files {
		if files[fc.Path] {
			return true
		}
	}
	return false
}

// relativeFileSet maps a session's absolute written paths to repo-relative
// form so they compare against git's numstat paths.
func relativeFileSet(files map[string]bool, repoPath string) map[string]bool {
	rel := make(map[string]bool, len(files))
	for p := range files {
		rel[relativeTo(p, repoPath)] = true
	}
	return rel
}

// relativeTo strips the repository prefix from an absolute path. Paths
// outside the repository are kept as-is; they simply never match.
func relativeTo(p, repoPath string) string {
	if repoPath != "" {
		if rest, ok := strings.CutPrefix(p, repoPath+"/"); ok {
			return rest
		}
	}
	return p
}

// buildCorrelated derives the per-session attribution from its won commits.
func buildCorrelated(s claude.Session, repoPath string, commits []gitlog.Commit, opts Options) CorrelatedSession {
	cs := CorrelatedSession{
		Session:     s,
		Commits:     commits,
		CommitCount: len(commits),
	}

	files := relativeFileSet(s.FilesWritten, repoPath)
	chatOnly := len(s.FilesWritten) == 0

	committed := make(map[string]bool)
	touched := make(map[string]bool)

	for _, c := range commits {
		if c.OnDefaultBranch {
			cs.DefaultBranchCommits++
		}
		for _, fc := range c.Files {
			committed[fc.Path] = true
			touched[fc.Path] = true

			if fc.Generated {
				continue
			}
			// With file-based matching a session only gets credit for
			// lines in files it actually touched.
			if chatOnly || files[fc.Path] {
				cs.LinesAdded += fc.Added
				cs.LinesDeleted += fc.Deleted
			}
		}
	}

	cs.NetLines = cs.LinesAdded - cs.LinesDeleted
	cs.FilesTouched = len(touched)
	cs.Orphaned = len(commits) == 0 && s.TotalMessages() > opts.OrphanThreshold

	for p := range files {
		if !committed[p] {
			cs.UncommittedFiles = append(cs.UncommittedFiles, p)
		}
	}
	sort.Strings(cs.UncommittedFiles)

	return cs
}

// sortedRepoPaths returns map keys in ascending order.
func sortedRepoPaths(repos map[string]*RepoResult) []string {
	paths := make([]string, 0, len(repos))
	for path := range repos {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
