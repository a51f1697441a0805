package correlate

import (
	"testing"
	"time"

	"github.com/blackwell-systems/roiwatch/internal/claude"
	"github.com/blackwell-systems/roiwatch/internal/gitlog"
)

const testRepo = "/home/dev/project"

func at(hour, min int) time.Time {
	return time.Date(2025, 6, 2, hour, min, 0, 0, time.UTC)
}

func mkSession(id string, start, end time.Time, msgs int, files ...string) claude.Session {
	s := claude.Session{
		ID:           id,
		RepoPath:     testRepo,
		StartTime:    start,
		EndTime:      end,
		UserMessages: msgs,
		FilesWritten: make(map[string]bool),
	}
	for _, f := range files {
		s.FilesWritten[testRepo+"/"+f] = true
	}
	return s
}

func mkCommit(hash string, ts time.Time, files ...gitlog.FileChange) gitlog.Commit {
	c := gitlog.Commit{Hash: hash, Timestamp: ts, Files: files}
	for _, fc := range files {
		if !fc.Generated {
			c.LinesAdded += fc.Added
			c.LinesDeleted += fc.Deleted
		}
	}
	return c
}

func runOne(t *testing.T, sessions []claude.Session, commits []gitlog.Commit, opts Options) *RepoResult {
	t.Helper()
	logs := map[string]*gitlog.RepoLog{
		testRepo: {RepoPath: testRepo, Mine: commits},
	}
	result, err := Run(sessions, logs, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	repo, ok := result.Repos[testRepo]
	if !ok {
		t.Fatalf("no result for %s", testRepo)
	}
	return repo
}

func sessionByID(t *testing.T, repo *RepoResult, id string) *CorrelatedSession {
	t.Helper()
	for i := range repo.Sessions {
		if repo.Sessions[i].ID == id {
			return &repo.Sessions[i]
		}
	}
	t.Fatalf("session %s not in result", id)
	return nil
}

func TestRun_FileOverlapBeatsTemporalDistance(t *testing.T) {
	// Session A wrote a.js, session B wrote b.js. The commit at 10:35
	// touches b.js: A's window covers it only via buffer, but A requires
	// file overlap it does not have, so B wins.
	sessions := []claude.Session{
		mkSession("a", at(10, 0), at(10, 30), 5, "a.js"),
		mkSession("b", at(10, 20), at(10, 40), 5, "b.js"),
	}
	commits := []gitlog.Commit{
		mkCommit("c1", at(10, 35), gitlog.FileChange{Path: "b.js", Added: 10}),
	}

	repo := runOne(t, sessions, commits, Options{})

	if got := sessionByID(t, repo, "b").CommitCount; got != 1 {
		t.Errorf("session b CommitCount = %d, want 1", got)
	}
	if got := sessionByID(t, repo, "a").CommitCount; got != 0 {
		t.Errorf("session a CommitCount = %d, want 0", got)
	}
	if len(repo.Organic) != 0 {
		t.Errorf("organic = %d commits, want 0", len(repo.Organic))
	}
}

func TestRun_NearerSessionWinsOnSharedFile(t *testing.T) {
	// Both sessions wrote shared.go. The commit lands at 12:10, inside
	// neither active window, so the smaller distance to an endpoint wins.
	sessions := []claude.Session{
		mkSession("far", at(9, 0), at(10, 0), 5, "shared.go"),
		mkSession("near", at(11, 0), at(12, 0), 5, "shared.go"),
	}
	commits := []gitlog.Commit{
		mkCommit("c1", at(12, 10), gitlog.FileChange{Path: "shared.go", Added: 3}),
	}

	repo := runOne(t, sessions, commits, Options{})

	if got := sessionByID(t, repo, "near").CommitCount; got != 1 {
		t.Errorf("near session CommitCount = %d, want 1", got)
	}
}

func TestRun_ChatOnlySessionMatchesByTime(t *testing.T) {
	sessions := []claude.Session{
		mkSession("chat", at(10, 0), at(11, 0), 5),
	}
	commits := []gitlog.Commit{
		mkCommit("c1", at(10, 30), gitlog.FileChange{Path: "anything.go", Added: 7}),
	}

	repo := runOne(t, sessions, commits, Options{})

	cs := sessionByID(t, repo, "chat")
	if cs.CommitCount != 1 {
		t.Fatalf("CommitCount = %d, want 1", cs.CommitCount)
	}
	// Chat-only sessions take line credit for the whole commit.
	if cs.LinesAdded != 7 {
		t.Errorf("LinesAdded = %d, want 7", cs.LinesAdded)
	}
}

func TestRun_OverlapBeatsChatOnly(t *testing.T) {
	// A chat-only session sits right on top of the commit, but a session
	// that wrote the committed file overlaps and wins regardless.
	sessions := []claude.Session{
		mkSession("chat", at(10, 0), at(11, 0), 5),
		mkSession("writer", at(8, 0), at(9, 30), 5, "x.go"),
	}
	commits := []gitlog.Commit{
		mkCommit("c1", at(10, 30), gitlog.FileChange{Path: "x.go", Added: 2}),
	}

	repo := runOne(t, sessions, commits, Options{})

	if got := sessionByID(t, repo, "writer").CommitCount; got != 1 {
		t.Errorf("writer CommitCount = %d, want 1", got)
	}
	if got := sessionByID(t, repo, "chat").CommitCount; got != 0 {
		t.Errorf("chat CommitCount = %d, want 0", got)
	}
}

func TestRun_BufferWindowBoundaries(t *testing.T) {
	sessions := []claude.Session{
		mkSession("s", at(10, 0), at(11, 0), 5, "f.go"),
	}
	commits := []gitlog.Commit{
		// Exactly at start: inside.
		mkCommit("atStart", at(10, 0), gitlog.FileChange{Path: "f.go", Added: 1}),
		// Exactly at end+buffer: inside.
		mkCommit("atBuffer", at(13, 0), gitlog.FileChange{Path: "f.go", Added: 1}),
		// One minute past the buffer: organic.
		mkCommit("late", at(13, 1), gitlog.FileChange{Path: "f.go", Added: 1}),
		// Before the session started: organic.
		mkCommit("early", at(9, 59), gitlog.FileChange{Path: "f.go", Added: 1}),
	}

	repo := runOne(t, sessions, commits, Options{BufferWindow: 2 * time.Hour})

	if got := sessionByID(t, repo, "s").CommitCount; got != 2 {
		t.Errorf("CommitCount = %d, want 2", got)
	}
	if len(repo.Organic) != 2 {
		t.Errorf("organic = %d commits, want 2", len(repo.Organic))
	}
}

func TestRun_PartitionInvariant(t *testing.T) {
	sessions := []claude.Session{
		mkSession("a", at(9, 0), at(10, 0), 5, "a.go"),
		mkSession("b", at(10, 0), at(11, 0), 5, "b.go"),
		mkSession("chat", at(14, 0), at(15, 0), 5),
	}
	commits := []gitlog.Commit{
		mkCommit("c1", at(9, 30), gitlog.FileChange{Path: "a.go", Added: 1}),
		mkCommit("c2", at(10, 30), gitlog.FileChange{Path: "b.go", Added: 1}),
		mkCommit("c3", at(14, 30), gitlog.FileChange{Path: "other.go", Added: 1}),
		mkCommit("c4", at(20, 0), gitlog.FileChange{Path: "a.go", Added: 1}),
		mkCommit("c5", at(9, 45), gitlog.FileChange{Path: "unrelated.go", Added: 1}),
	}

	repo := runOne(t, sessions, commits, Options{})

	seen := make(map[string]int)
	for _, cs := range repo.Sessions {
		for _, c := range cs.Commits {
			seen[c.Hash]++
		}
	}
	for _, c := range repo.Organic {
		seen[c.Hash]++
	}

	if len(seen) != len(commits) {
		t.Errorf("partition covers %d commits, want %d", len(seen), len(commits))
	}
	for hash, n := range seen {
		if n != 1 {
			t.Errorf("commit %s appears %d times, want exactly 1", hash, n)
		}
	}
}

func TestRun_DeterministicUnderInputReordering(t *testing.T) {
	forward := []claude.Session{
		mkSession("a", at(10, 0), at(10, 30), 5, "shared.go"),
		mkSession("b", at(10, 0), at(10, 30), 5, "shared.go"),
		mkSession("c", at(10, 10), at(10, 40), 5, "shared.go"),
	}
	reversed := []claude.Session{forward[2], forward[0], forward[1]}

	commits := []gitlog.Commit{
		mkCommit("c1", at(10, 20), gitlog.FileChange{Path: "shared.go", Added: 1}),
		mkCommit("c2", at(10, 35), gitlog.FileChange{Path: "shared.go", Added: 1}),
	}

	first := runOne(t, forward, commits, Options{})
	second := runOne(t, reversed, commits, Options{})

	for _, cs := range first.Sessions {
		want := cs.CommitCount
		got := sessionByID(t, second, cs.ID).CommitCount
		if got != want {
			t.Errorf("session %s: CommitCount = %d after reorder, want %d", cs.ID, got, want)
		}
	}
}

func TestRun_ExactTieGoesToEarlierSession(t *testing.T) {
	// Identical windows and files: the session sorting first by ID wins.
	sessions := []claude.Session{
		mkSession("zz", at(10, 0), at(11, 0), 5, "f.go"),
		mkSession("aa", at(10, 0), at(11, 0), 5, "f.go"),
	}
	commits := []gitlog.Commit{
		mkCommit("c1", at(10, 30), gitlog.FileChange{Path: "f.go", Added: 1}),
	}

	repo := runOne(t, sessions, commits, Options{})

	if got := sessionByID(t, repo, "aa").CommitCount; got != 1 {
		t.Errorf("session aa CommitCount = %d, want 1", got)
	}
}

func TestRun_OrphanThreshold(t *testing.T) {
	sessions := []claude.Session{
		mkSession("busy", at(10, 0), at(11, 0), 15, "f.go"),
		mkSession("brief", at(12, 0), at(12, 30), 5, "g.go"),
	}

	repo := runOne(t, sessions, nil, Options{})

	if !sessionByID(t, repo, "busy").Orphaned {
		t.Error("15-message zero-commit session should be orphaned")
	}
	if sessionByID(t, repo, "brief").Orphaned {
		t.Error("5-message zero-commit session should not be orphaned")
	}
}

func TestRun_LineAttribution(t *testing.T) {
	sessions := []claude.Session{
		mkSession("s", at(10, 0), at(11, 0), 5, "mine.go"),
	}
	commits := []gitlog.Commit{
		mkCommit("c1", at(10, 30),
			gitlog.FileChange{Path: "mine.go", Added: 10, Deleted: 2},
			gitlog.FileChange{Path: "other.go", Added: 50},
			gitlog.FileChange{Path: "go.sum", Added: 400, Generated: true},
		),
	}

	repo := runOne(t, sessions, commits, Options{})
	cs := sessionByID(t, repo, "s")

	// Only the overlapping non-generated file counts.
	if cs.LinesAdded != 10 {
		t.Errorf("LinesAdded = %d, want 10", cs.LinesAdded)
	}
	if cs.LinesDeleted != 2 {
		t.Errorf("LinesDeleted = %d, want 2", cs.LinesDeleted)
	}
	if cs.NetLines != 8 {
		t.Errorf("NetLines = %d, want 8", cs.NetLines)
	}
	if cs.FilesTouched != 3 {
		t.Errorf("FilesTouched = %d, want 3", cs.FilesTouched)
	}
}

func TestRun_UncommittedFiles(t *testing.T) {
	sessions := []claude.Session{
		mkSession("s", at(10, 0), at(11, 0), 5, "kept.go", "never_committed.go"),
	}
	commits := []gitlog.Commit{
		mkCommit("c1", at(10, 30), gitlog.FileChange{Path: "kept.go", Added: 1}),
	}

	repo := runOne(t, sessions, commits, Options{})
	cs := sessionByID(t, repo, "s")

	if len(cs.UncommittedFiles) != 1 || cs.UncommittedFiles[0] != "never_committed.go" {
		t.Errorf("UncommittedFiles = %v, want [never_committed.go]", cs.UncommittedFiles)
	}
}

func TestRun_RepoWithOnlyCommits(t *testing.T) {
	commits := []gitlog.Commit{
		mkCommit("c1", at(10, 0), gitlog.FileChange{Path: "f.go", Added: 1}),
	}

	repo := runOne(t, nil, commits, Options{})

	if len(repo.Sessions) != 0 {
		t.Errorf("Sessions = %d, want 0", len(repo.Sessions))
	}
	if len(repo.Organic) != 1 {
		t.Errorf("Organic = %d, want 1", len(repo.Organic))
	}
}

func TestTemporalDistance(t *testing.T) {
	start, end := at(10, 0), at(11, 0)

	if d := temporalDistance(at(10, 30), start, end); d != 0 {
		t.Errorf("distance inside window = %v, want 0", d)
	}
	if d := temporalDistance(at(10, 0), start, end); d != 0 {
		t.Errorf("distance at start = %v, want 0", d)
	}
	if d := temporalDistance(at(11, 0), start, end); d != 0 {
		t.Errorf("distance at end = %v, want 0", d)
	}
	if d := temporalDistance(at(11, 30), start, end); d != 30*time.Minute {
		t.Errorf("distance after end = %v, want 30m", d)
	}
	if d := temporalDistance(at(9, 45), start, end); d != 15*time.Minute {
		t.Errorf("distance before start = %v, want 15m", d)
	}
}

func TestRelativeTo(t *testing.T) {
	if got := relativeTo("/home/dev/project/src/a.go", testRepo); got != "src/a.go" {
		t.Errorf("relativeTo = %q, want src/a.go", got)
	}
	if got := relativeTo("/elsewhere/a.go", testRepo); got != "/elsewhere/a.go" {
		t.Errorf("path outside repo = %q, want unchanged", got)
	}
}
