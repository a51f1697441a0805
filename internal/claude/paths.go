package claude

import "path/filepath"

// NormalizePath cleans a file path to a canonical form suitable for
// comparison against git-reported paths. It resolves ".." components,
// removes trailing slashes, and normalizes separators. Returns an empty
// string for empty input.
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}

// ProjectName returns the short name of a repo path, used to match the
// --project filter. Empty input yields an empty string.
func ProjectName(repoPath string) string {
	if repoPath == "" {
		return ""
	}
	return filepath.Base(NormalizePath(repoPath))
}
