package claude

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Fingerprint returns a cache key covering every transcript under
// claudeHome/projects/. It folds file count, total size, and the newest
// modification time, so any new or rewritten transcript invalidates the
// cached sessions.
func Fingerprint(claudeHome string, opts LoadOptions) string {
	projectsDir := filepath.Join(claudeHome, "projects")

	var count int
	var bytes, newest int64

	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(projectsDir, entry.Name()))
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".jsonl") {
				continue
			}
			info, err := f.Info()
			if err != nil {
				continue
			}
			count++
			bytes += info.Size()
			if mt := info.ModTime().UnixNano(); mt > newest {
				newest = mt
			}
		}
	}

	return fmt.Sprintf("%d:%d:%d:%d:%s", count, bytes, newest, opts.Days, opts.Project)
}
