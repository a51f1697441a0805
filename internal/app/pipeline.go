package app

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/blackwell-systems/roiwatch/internal/claude"
	"github.com/blackwell-systems/roiwatch/internal/config"
	"github.com/blackwell-systems/roiwatch/internal/correlate"
	"github.com/blackwell-systems/roiwatch/internal/gitlog"
	"github.com/blackwell-systems/roiwatch/internal/metrics"
	"github.com/blackwell-systems/roiwatch/internal/pricing"
	"github.com/blackwell-systems/roiwatch/internal/store"
)

// pipelineOptions carries the per-command overrides for a report build.
type pipelineOptions struct {
	days    int
	project string
	noCache bool
}

// buildReport runs the full pipeline: load sessions, extract git history,
// correlate, and aggregate. Transcript and git-log parsing go through the
// SQLite cache unless noCache is set.
func buildReport(cfg *config.Config, opts pipelineOptions) (*metrics.Report, error) {
	if opts.days <= 0 {
		opts.days = cfg.Days
	}

	var db *store.DB
	if !opts.noCache {
		if d, err := store.Open(config.DBPath()); err == nil {
			db = d
			defer db.Close()
		} else if flagVerbose {
			fmt.Fprintln(os.Stderr, "cache unavailable:", err)
		}
	}

	sessions, err := loadSessions(cfg, opts, db)
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}

	logs := loadLogs(cfg, discoverRepos(sessions, cfg.Repos), opts, db)

	result, err := correlate.Run(sessions, logs, correlationOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("correlating: %w", err)
	}

	return metrics.Aggregate(result, metrics.Options{
		Vintage: pricing.Vintage(cfg.PricingVintage),
	}), nil
}

// loadSessions reads sessions through the parse cache. The fingerprint
// includes the current date because the look-back cutoff moves daily.
func loadSessions(cfg *config.Config, opts pipelineOptions, db *store.DB) ([]claude.Session, error) {
	loadOpts := claude.LoadOptions{Days: opts.days, Project: opts.project}

	var fp string
	if db != nil {
		if base := claude.Fingerprint(cfg.ClaudeHome, loadOpts); base != "" {
			fp = base + ":" + time.Now().Format("2006-01-02")
		}
	}

	if fp != "" {
		if payload, ok, err := db.Get(store.KindSessions, cfg.ClaudeHome, fp); err == nil && ok {
			var sessions []claude.Session
			if json.Unmarshal(payload, &sessions) == nil {
				return sessions, nil
			}
		}
	}

	sessions, err := claude.LoadSessions(cfg.ClaudeHome, loadOpts)
	if err != nil {
		return nil, err
	}

	if fp != "" {
		if payload, err := json.Marshal(sessions); err == nil {
			db.Put(store.KindSessions, cfg.ClaudeHome, fp, payload)
		}
	}
	return sessions, nil
}

// discoverRepos combines session working directories with configured repo
// paths, keeping only those that are actually git work trees.
func discoverRepos(sessions []claude.Session, extra []string) []string {
	seen := make(map[string]bool)
	for _, s := range sessions {
		if s.RepoPath != "" {
			seen[s.RepoPath] = true
		}
	}
	for _, p := range extra {
		if p != "" {
			seen[p] = true
		}
	}

	var repos []string
	for path := range seen {
		if gitlog.IsRepo(path) {
			repos = append(repos, path)
		}
	}
	sort.Strings(repos)
	return repos
}

// loadLogs extracts git history for each repository, through the cache
// when available. A repository that fails to load is skipped rather than
// failing the whole report.
func loadLogs(cfg *config.Config, repos []string, opts pipelineOptions, db *store.DB) map[string]*gitlog.RepoLog {
	logOpts := gitlog.LogOptions{AuthorEmail: cfg.AuthorEmail, Days: opts.days}

	logs := make(map[string]*gitlog.RepoLog, len(repos))
	for _, repo := range repos {
		var fp string
		if db != nil {
			if base := gitlog.Fingerprint(repo, logOpts); base != "" {
				fp = base + ":" + time.Now().Format("2006-01-02")
			}
		}

		if fp != "" {
			if payload, ok, err := db.Get(store.KindGitLog, repo, fp); err == nil && ok {
				var log gitlog.RepoLog
				if json.Unmarshal(payload, &log) == nil {
					logs[repo] = &log
					continue
				}
			}
		}

		log, err := gitlog.Load(repo, logOpts)
		if err != nil {
			if flagVerbose {
				fmt.Fprintln(os.Stderr, "skipping repo:", err)
			}
			continue
		}
		logs[repo] = log

		if fp != "" {
			if payload, err := json.Marshal(log); err == nil {
				db.Put(store.KindGitLog, repo, fp, payload)
			}
		}
	}
	return logs
}

// correlationOptions maps config values onto correlation tuning.
func correlationOptions(cfg *config.Config) correlate.Options {
	return correlate.Options{
		BufferWindow:    time.Duration(cfg.Correlation.BufferWindowHours) * time.Hour,
		OrphanThreshold: cfg.Correlation.OrphanThreshold,
		ChurnWindow:     time.Duration(cfg.Correlation.ChurnWindowHours) * time.Hour,
		Strategy:        correlate.Strategy(cfg.Correlation.Strategy),
	}
}
