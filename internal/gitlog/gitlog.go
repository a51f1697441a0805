package gitlog

import (
	"fmt"
	"os/exec"
	"strings"
)

// LogOptions controls history extraction for one repository.
type LogOptions struct {
	// AuthorEmail is the identity whose commits populate RepoLog.Mine.
	// Empty means every commit counts as mine.
	AuthorEmail string

	// Days is the look-back window. Zero or negative means no limit.
	Days int
}

// Load extracts the commit history for the repository at repoPath.
func Load(repoPath string, opts LogOptions) (*RepoLog, error) {
	out, err := runGit(repoPath, logArgs(opts)...)
	if err != nil {
		return nil, fmt.Errorf("git log in %s: %w", repoPath, err)
	}

	all := ParseLog(out)

	log := &RepoLog{
		RepoPath:      repoPath,
		DefaultBranch: detectDefaultBranch(repoPath),
		All:           all,
	}

	tagDefaultBranch(repoPath, log, opts.Days)

	for _, c := range all {
		if opts.AuthorEmail == "" || strings.EqualFold(c.AuthorEmail, opts.AuthorEmail) {
			log.Mine = append(log.Mine, c)
		}
	}

	return log, nil
}

// logArgs builds the git log invocation. Fields are separated by the unit
// separator byte so subjects containing pipes or tabs parse cleanly.
func logArgs(opts LogOptions) []string {
	args := []string{
		"log", "--all", "--no-merges", "--numstat",
		"--date=iso-strict",
		"--pretty=format:%x01%H%x1f%ae%x1f%aI%x1f%D%x1f%s",
	}
	if opts.Days > 0 {
		args = append(args, fmt.Sprintf("--since=%d days ago", opts.Days))
	}
	return args
}

// detectDefaultBranch resolves the repository's primary branch, preferring
// the origin HEAD symref and falling back to main, then master.
func detectDefaultBranch(repoPath string) string {
	if out, err := runGit(repoPath, "symbolic-ref", "refs/remotes/origin/HEAD", "--short"); err == nil {
		ref := strings.TrimSpace(out)
		if ref != "" {
			return strings.TrimPrefix(ref, "origin/")
		}
	}
	for _, name := range []string{"main", "master"} {
		if _, err := runGit(repoPath, "rev-parse", "--verify", "--quiet", "refs/heads/"+name); err == nil {
			return name
		}
	}
	return ""
}

// tagDefaultBranch marks commits reachable from the default branch.
func tagDefaultBranch(repoPath string, log *RepoLog, days int) {
	if log.DefaultBranch == "" {
		return
	}

	args := []string{"rev-list", log.DefaultBranch}
	if days > 0 {
		args = append(args, fmt.Sprintf("--since=%d days ago", days))
	}
	out, err := runGit(repoPath, args...)
	if err != nil {
		return
	}

	onDefault := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		if hash := strings.TrimSpace(line); hash != "" {
			onDefault[hash] = true
		}
	}

	for i := range log.All {
		log.All[i].OnDefaultBranch = onDefault[log.All[i].Hash]
	}
}

// Fingerprint returns a cheap cache key for a repository's history: the
// current HEAD hash plus the extraction options. Any new commit, amend, or
// rebase moves HEAD and invalidates the cached log.
func Fingerprint(repoPath string, opts LogOptions) string {
	head, err := runGit(repoPath, "rev-parse", "HEAD")
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s:%s:%d", strings.TrimSpace(head), opts.AuthorEmail, opts.Days)
}

// IsRepo reports whether path is inside a git work tree.
func IsRepo(path string) bool {
	_, err := runGit(path, "rev-parse", "--git-dir")
	return err == nil
}

// runGit executes a git subcommand in the given repository.
func runGit(repoPath string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = repoPath
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
