package correlate

import (
	"math"
	"sort"
	"time"

	"github.com/blackwell-systems/roiwatch/internal/gitlog"
)

// SurvivalStats estimates what fraction of added lines survive without
// being overwritten shortly after. This is a same-file churn heuristic,
// not blame-based provenance tracking: it can both under- and over-count
// relative to a true line-level measure.
type SurvivalStats struct {
	TotalAdded   int `json:"total_added"`
	TotalChurned int `json:"total_churned"`

	// Rate is the survival percentage, rounded to the nearest multiple
	// of 5. The rounding is deliberate: the heuristic does not support
	// more precision than that. With no added lines the rate is 100.
	Rate int `json:"rate"`
}

// fileEvent is one commit's touch of a single file.
type fileEvent struct {
	when    time.Time
	added   int
	deleted int
}

// EstimateSurvival walks each file's change events chronologically across
// the given commits. An addition churns when a later event on the same file
// deletes lines within the window; churn is capped at both what the earlier
// event added and what the later one deleted.
func EstimateSurvival(commits []gitlog.Commit, window time.Duration) SurvivalStats {
	if window <= 0 {
		window = DefaultChurnWindow
	}

	events := make(map[string][]fileEvent)
	for _, c := range commits {
		for _, fc := range c.Files {
			if fc.Generated || fc.Binary {
				continue
			}
			events[fc.Path] = append(events[fc.Path], fileEvent{
				when:    c.Timestamp,
				added:   fc.Added,
				deleted: fc.Deleted,
			})
		}
	}

	var stats SurvivalStats

	for _, evs := range events {
		sort.Slice(evs, func(i, j int) bool {
			return evs[i].when.Before(evs[j].when)
		})

		for i, ev := range evs {
			stats.TotalAdded += ev.added

			if i+1 >= len(evs) {
				continue
			}
			next := evs[i+1]
			if next.when.Sub(ev.when) > window {
				continue
			}
			stats.TotalChurned += min(next.deleted, ev.added)
		}
	}

	stats.Rate = survivalRate(stats.TotalAdded, stats.TotalChurned)
	return stats
}

// survivalRate converts totals to a percentage rounded to the nearest
// multiple of 5, clamped to [0, 100].
func survivalRate(added, churned int) int {
	if added <= 0 {
		return 100
	}
	pct := float64(added-churned) / float64(added) * 100
	rate := int(math.Round(pct/5)) * 5
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}

// MergeSurvival combines per-repository survival stats into one estimate.
func MergeSurvival(all ...SurvivalStats) SurvivalStats {
	var merged SurvivalStats
	for _, s := range all {
		merged.TotalAdded += s.TotalAdded
		merged.TotalChurned += s.TotalChurned
	}
	merged.Rate = survivalRate(merged.TotalAdded, merged.TotalChurned)
	return merged
}
