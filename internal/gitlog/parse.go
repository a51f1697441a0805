package gitlog

import (
	"path"
	"strconv"
	"strings"
	"time"
)

// Field and record separators used in the git log pretty format.
const (
	recordSep = "\x01"
	fieldSep  = "\x1f"
)

// ParseLog parses the output of git log with the package's pretty format
// and --numstat. Commit headers start with the record separator; the
// following lines until the next header are that commit's numstat entries.
// Lines that fail to parse are skipped.
func ParseLog(out string) []Commit {
	var commits []Commit
	var current *Commit

	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, recordSep); ok {
			if current != nil {
				commits = append(commits, *current)
			}
			current = parseHeader(rest)
			continue
		}

		if current == nil {
			continue
		}
		if fc, ok := parseNumstat(line); ok {
			current.Files = append(current.Files, fc)
			if !fc.Generated {
				current.LinesAdded += fc.Added
				current.LinesDeleted += fc.Deleted
			}
		}
	}

	if current != nil {
		commits = append(commits, *current)
	}

	return commits
}

// parseHeader parses a hash/author/date/decorations/subject header line.
// Returns nil when the line does not have the expected field count or an
// unparseable timestamp.
func parseHeader(line string) *Commit {
	fields := strings.SplitN(line, fieldSep, 5)
	if len(fields) != 5 || fields[0] == "" {
		return nil
	}

	ts := parseISOTime(fields[2])
	if ts.IsZero() {
		return nil
	}

	return &Commit{
		Hash:        fields[0],
		AuthorEmail: fields[1],
		Timestamp:   ts,
		Branches:    parseDecorations(fields[3]),
		Subject:     fields[4],
	}
}

// parseISOTime parses git's iso-strict author date.
func parseISOTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseDecorations extracts branch names from a %D decoration string like
// "HEAD -> main, origin/main, tag: v1.2.0".
func parseDecorations(decor string) []string {
	if decor == "" {
		return nil
	}

	var branches []string
	for _, part := range strings.Split(decor, ",") {
		name := strings.TrimSpace(part)
		name = strings.TrimPrefix(name, "HEAD -> ")
		if name == "" || name == "HEAD" || strings.HasPrefix(name, "tag: ") {
			continue
		}
		branches = append(branches, name)
	}
	return branches
}

// parseNumstat parses an "added\tdeleted\tpath" line. Binary files report
// "-" counts and parse as 0/0 with Binary set.
func parseNumstat(line string) (FileChange, bool) {
	fields := strings.SplitN(line, "\t", 3)
	if len(fields) != 3 || fields[2] == "" {
		return FileChange{}, false
	}

	fc := FileChange{Path: cleanRenamePath(fields[2])}

	if fields[0] == "-" && fields[1] == "-" {
		fc.Binary = true
	} else {
		added, err1 := strconv.Atoi(fields[0])
		deleted, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			return FileChange{}, false
		}
		fc.Added = added
		fc.Deleted = deleted
	}

	fc.Generated = IsGeneratedPath(fc.Path)
	return fc, true
}

// cleanRenamePath resolves rename notation like "dir/{old => new}/file.go"
// or "old.go => new.go" to the post-rename path.
func cleanRenamePath(p string) string {
	if !strings.Contains(p, " => ") {
		return p
	}

	open := strings.Index(p, "{")
	closing := strings.Index(p, "}")
	if open >= 0 && closing > open {
		inner := p[open+1 : closing]
		parts := strings.SplitN(inner, " => ", 2)
		result := p[:open] + parts[len(parts)-1] + p[closing+1:]
		return path.Clean(strings.ReplaceAll(result, "//", "/"))
	}

	parts := strings.SplitN(p, " => ", 2)
	return parts[len(parts)-1]
}

// generatedNames are exact basenames always treated as generated.
var generatedNames = map[string]bool{
	"go.sum":            true,
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"Cargo.lock":        true,
	"composer.lock":     true,
	"Gemfile.lock":      true,
	"poetry.lock":       true,
	"uv.lock":           true,
	"flake.lock":        true,
}

// generatedSuffixes are path suffixes treated as generated.
var generatedSuffixes = []string{
	".pb.go",
	"_generated.go",
	".gen.go",
	".min.js",
	".min.css",
	".snap",
}

// generatedDirs are path segments whose contents are treated as generated.
var generatedDirs = []string{
	"node_modules/",
	"vendor/",
	"dist/",
	".next/",
}

// IsGeneratedPath reports whether a path is a lock file or generated code
// that should not count toward a commit's aggregate line totals.
func IsGeneratedPath(p string) bool {
	if generatedNames[path.Base(p)] {
		return true
	}
	for _, suffix := range generatedSuffixes {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	for _, dir := range generatedDirs {
		if strings.HasPrefix(p, dir) || strings.Contains(p, "/"+dir) {
			return true
		}
	}
	return false
}
