package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/blackwell-systems/roiwatch/internal/correlate"
	"github.com/blackwell-systems/roiwatch/internal/pricing"
)

// Options tunes report aggregation.
type Options struct {
	// Vintage selects the pricing table generation.
	Vintage pricing.Vintage
}

// Aggregate folds a correlation result into the final report. It never
// fails on data: empty input produces a report with zeroed aggregates and
// an F grade.
func Aggregate(result *correlate.Result, opts Options) *Report {
	if opts.Vintage == "" {
		opts.Vintage = pricing.VintageVersioned
	}

	report := &Report{
		GeneratedAt: time.Now(),
		Organic:     result.AllOrganic(),
	}

	// Per-repo survival, merged into the overall estimate.
	var survivals []correlate.SurvivalStats
	repoSurvival := make(map[string]int)
	for path, repo := range result.Repos {
		survivals = append(survivals, repo.Survival)
		repoSurvival[path] = repo.Survival.Rate
	}
	report.Survival = correlate.MergeSurvival(survivals...)

	// Price and grade each session, then accumulate everything else.
	for _, cs := range result.AllSessions() {
		cs.Cost = pricing.SessionCost(cs.ModelUsage, opts.Vintage)
		cs.CostPerCommit = ratio(cs.Cost.TotalCost, float64(cs.CommitCount))
		cs.CostPerLine = ratio(cs.Cost.TotalCost, float64(cs.LinesAdded))
		cs.CostPerNetLine = ratio(cs.Cost.TotalCost, float64(cs.NetLines))
		cs.Grade = GradeSession(&cs, repoSurvival[cs.RepoPath])
		report.Sessions = append(report.Sessions, cs)
	}

	accumulateTotals(report)
	report.Grade = GradeOverall(report.Totals, report.Survival.Rate)
	report.Daily = dailySeries(report.Sessions)
	report.BestDay, report.WorstDay = pickBestWorstDay(report.Daily)
	report.Models = modelBreakdown(report.Sessions, opts.Vintage)
	report.Tools = toolBreakdown(report.Sessions)
	report.LengthBuckets = lengthBuckets(report.Sessions)
	report.Heatmap = commitHeatmap(report.Sessions)
	report.Repos = repoBreakdown(result, report.Sessions)
	report.Funnel = wasteFunnel(report.Sessions)
	report.Insights = BuildInsights(report)

	return report
}

// ratio returns value/denom, or nil when the denominator is not positive.
func ratio(value, denom float64) *float64 {
	if denom <= 0 {
		return nil
	}
	r := value / denom
	return &r
}

func accumulateTotals(report *Report) {
	t := &report.Totals
	t.OrganicCommits = len(report.Organic)

	for i := range report.Sessions {
		cs := &report.Sessions[i]
		t.Sessions++
		if cs.Orphaned {
			t.OrphanedSessions++
		}
		t.Commits += cs.CommitCount
		t.DefaultBranchCommits += cs.DefaultBranchCommits
		t.LinesAdded += cs.LinesAdded
		t.LinesDeleted += cs.LinesDeleted
		t.TotalTokens += cs.TotalTokens()
		t.Cost.Add(cs.Cost)
	}

	t.NetLines = t.LinesAdded - t.LinesDeleted
	t.CostPerCommit = ratio(t.Cost.TotalCost, float64(t.Commits))
	t.CostPerLine = ratio(t.Cost.TotalCost, float64(t.LinesAdded))
}

// dailySeries rolls sessions and their commits up by calendar date in
// local time. Sessions bucket by start time; commits by their own
// timestamps.
func dailySeries(sessions []correlate.CorrelatedSession) []DayStats {
	const dayFormat = "2006-01-02"
	days := make(map[string]*DayStats)

	get := func(key string) *DayStats {
		d, ok := days[key]
		if !ok {
			d = &DayStats{Date: key}
			days[key] = d
		}
		return d
	}

	for i := range sessions {
		cs := &sessions[i]
		d := get(cs.StartTime.Local().Format(dayFormat))
		d.Sessions++
		d.Cost += cs.Cost.TotalCost
		d.Tokens += cs.TotalTokens()

		for _, c := range cs.Commits {
			get(c.Timestamp.Local().Format(dayFormat)).Commits++
		}
	}

	series := make([]DayStats, 0, len(days))
	for _, d := range days {
		// Floor the spend at one cent so zero-cost days with commits
		// rank first instead of dividing by zero.
		spend := d.Cost
		if spend < 0.01 {
			spend = 0.01
		}
		d.CommitsPerDollar = float64(d.Commits) / spend
		series = append(series, *d)
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})
	return series
}

// pickBestWorstDay selects the best and worst days by commits-per-dollar.
// Only days with activity qualify; fewer than two active days yields no
// worst day.
func pickBestWorstDay(daily []DayStats) (best, worst *DayStats) {
	for i := range daily {
		d := &daily[i]
		if d.Sessions == 0 && d.Commits == 0 {
			continue
		}
		if best == nil || d.CommitsPerDollar > best.CommitsPerDollar {
			best = d
		}
		if worst == nil || d.CommitsPerDollar < worst.CommitsPerDollar {
			worst = d
		}
	}
	if best != nil && worst != nil && best.Date == worst.Date {
		worst = nil
	}
	return best, worst
}

// modelBreakdown attributes tokens, cost, sessions, and commits to model
// families. A session using several families splits fractionally by each
// family's token share; rounding happens only at render time.
func modelBreakdown(sessions []correlate.CorrelatedSession, vintage pricing.Vintage) []ModelFamilyStats {
	families := make(map[string]*ModelFamilyStats)

	get := func(name string) *ModelFamilyStats {
		f, ok := families[name]
		if !ok {
			f = &ModelFamilyStats{Family: name}
			families[name] = f
		}
		return f
	}

	for i := range sessions {
		cs := &sessions[i]
		sessionTotal := cs.TotalTokens()

		for model, usage := range cs.ModelUsage {
			family := ClassifyFamily(model)
			f := get(family)
			f.Tokens += usage.Total()
			f.Cost += pricing.Cost(model, usage, vintage).TotalCost

			if sessionTotal > 0 {
				share := float64(usage.Total()) / float64(sessionTotal)
				f.Sessions += share
				f.Commits += share * float64(cs.CommitCount)
			}
		}

		// Sessions with no recorded usage still count somewhere.
		if sessionTotal == 0 {
			get(FamilyUnknown).Sessions++
		}
	}

	out := make([]ModelFamilyStats, 0, len(families))
	for _, f := range families {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cost == out[j].Cost {
			return out[i].Family < out[j].Family
		}
		return out[i].Cost > out[j].Cost
	})
	return out
}

// toolBreakdown sums tool invocation counts across all sessions.
func toolBreakdown(sessions []correlate.CorrelatedSession) []ToolStats {
	counts := make(map[string]int)
	for i := range sessions {
		for name, n := range sessions[i].ToolCounts {
			counts[name] += n
		}
	}

	out := make([]ToolStats, 0, len(counts))
	for name, n := range counts {
		out = append(out, ToolStats{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Name < out[j].Name
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// lengthBucketBounds are the fixed message-count ranges.
var lengthBucketBounds = []LengthBucket{
	{Label: "1-10", MinMsgs: 1, MaxMsgs: 10},
	{Label: "11-25", MinMsgs: 11, MaxMsgs: 25},
	{Label: "26-50", MinMsgs: 26, MaxMsgs: 50},
	{Label: "51-100", MinMsgs: 51, MaxMsgs: 100},
	{Label: "100+", MinMsgs: 101, MaxMsgs: 0},
}

// lengthBuckets partitions sessions by total message count.
func lengthBuckets(sessions []correlate.CorrelatedSession) []LengthBucket {
	buckets := make([]LengthBucket, len(lengthBucketBounds))
	copy(buckets, lengthBucketBounds)

	for i := range sessions {
		cs := &sessions[i]
		msgs := cs.TotalMessages()
		for b := range buckets {
			if msgs < buckets[b].MinMsgs {
				continue
			}
			if buckets[b].MaxMsgs != 0 && msgs > buckets[b].MaxMsgs {
				continue
			}
			buckets[b].Sessions++
			buckets[b].Commits += cs.CommitCount
			buckets[b].Cost += cs.Cost.TotalCost
			break
		}
	}

	for b := range buckets {
		buckets[b].CostPerCommit = ratio(buckets[b].Cost, float64(buckets[b].Commits))
	}
	return buckets
}

// commitHeatmap counts won commits per weekday and hour. The commit's own
// timestamp is the activity signal, not the session's start time.
func commitHeatmap(sessions []correlate.CorrelatedSession) [7][24]int {
	var grid [7][24]int
	for i := range sessions {
		for _, c := range sessions[i].Commits {
			local := c.Timestamp.Local()
			grid[int(local.Weekday())][local.Hour()]++
		}
	}
	return grid
}

// repoBreakdown rolls up per-repository stats. Session-derived numbers come
// from the already-priced report sessions.
func repoBreakdown(result *correlate.Result, sessions []correlate.CorrelatedSession) []RepoStats {
	byPath := make(map[string]*RepoStats)
	for path, repo := range result.Repos {
		byPath[path] = &RepoStats{
			RepoPath:       path,
			OrganicCommits: len(repo.Organic),
			SurvivalRate:   repo.Survival.Rate,
		}
	}

	for i := range sessions {
		cs := &sessions[i]
		rs, ok := byPath[cs.RepoPath]
		if !ok {
			continue
		}
		rs.Sessions++
		rs.Commits += cs.CommitCount
		rs.LinesAdded += cs.LinesAdded
		rs.Cost += cs.Cost.TotalCost
	}

	out := make([]RepoStats, 0, len(byPath))
	for _, rs := range byPath {
		out = append(out, *rs)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RepoPath < out[j].RepoPath
	})
	return out
}

// wasteFunnel partitions every session into exactly one bucket.
func wasteFunnel(sessions []correlate.CorrelatedSession) WasteFunnel {
	var f WasteFunnel
	for i := range sessions {
		cs := &sessions[i]
		tokens := cs.TotalTokens()
		switch {
		case cs.CommitCount > 0:
			f.ProductiveSessions++
			f.ProductiveTokens += tokens
			f.ProductiveCost += cs.Cost.TotalCost
		case cs.Orphaned:
			f.OrphanedSessions++
			f.OrphanedTokens += tokens
			f.OrphanedCost += cs.Cost.TotalCost
		default:
			f.ExploratorySessions++
			f.ExploratoryTokens += tokens
			f.ExploratoryCost += cs.Cost.TotalCost
		}
	}
	return f
}

// FamilyUnknown groups model identifiers that match no known family.
const FamilyUnknown = "unknown"

// ClassifyFamily maps a raw model identifier to a model family by
// case-insensitive substring match. Unrecognized identifiers group under
// FamilyUnknown rather than being dropped.
func ClassifyFamily(model string) string {
	lower := strings.ToLower(model)
	switch {
	case strings.Contains(lower, "opus"):
		return "opus"
	case strings.Contains(lower, "sonnet"):
		return "sonnet"
	case strings.Contains(lower, "haiku"):
		return "haiku"
	default:
		return FamilyUnknown
	}
}
