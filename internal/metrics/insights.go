package metrics

import "fmt"

// insightRule derives zero or one observation from the report. Rules are
// independent; output order is evaluation order.
type insightRule func(*Report) *Insight

var insightRules = []insightRule{
	modelCostInsight,
	bestDayInsight,
	defaultBranchInsight,
	orphanWasteInsight,
	organicShareInsight,
	sweetSpotInsight,
	survivalInsight,
}

// BuildInsights evaluates every rule whose triggering condition holds.
func BuildInsights(report *Report) []Insight {
	var insights []Insight
	for _, rule := range insightRules {
		if ins := rule(report); ins != nil {
			insights = append(insights, *ins)
		}
	}
	return insights
}

// modelCostInsight compares cost-per-commit across the two most expensive
// families. Requires at least two families with fractional sessions.
func modelCostInsight(r *Report) *Insight {
	var active []ModelFamilyStats
	for _, f := range r.Models {
		if f.Sessions > 0 && f.Commits > 0 {
			active = append(active, f)
		}
	}
	if len(active) < 2 {
		return nil
	}

	a, b := active[0], active[1]
	costA := a.Cost / a.Commits
	costB := b.Cost / b.Commits
	if costB <= 0 {
		return nil
	}

	return &Insight{
		Type: "model_cost",
		Text: fmt.Sprintf("%s averaged $%.2f per commit vs $%.2f for %s (%.1fx).",
			a.Family, costA, costB, b.Family, costA/costB),
	}
}

func bestDayInsight(r *Report) *Insight {
	if r.BestDay == nil {
		return nil
	}
	text := fmt.Sprintf("Best day was %s: %d commits for $%.2f.",
		r.BestDay.Date, r.BestDay.Commits, r.BestDay.Cost)
	if r.WorstDay != nil {
		text += fmt.Sprintf(" Worst was %s: %d commits for $%.2f.",
			r.WorstDay.Date, r.WorstDay.Commits, r.WorstDay.Cost)
	}
	return &Insight{Type: "best_day", Text: text}
}

func defaultBranchInsight(r *Report) *Insight {
	if r.Totals.Commits == 0 {
		return nil
	}
	pct := float64(r.Totals.DefaultBranchCommits) / float64(r.Totals.Commits) * 100
	return &Insight{
		Type: "default_branch",
		Text: fmt.Sprintf("%.0f%% of agent-assisted commits reached the default branch.", pct),
	}
}

// orphanWasteInsight fires when orphaned sessions consumed over 20% of
// all tokens.
func orphanWasteInsight(r *Report) *Insight {
	total := r.Funnel.ProductiveTokens + r.Funnel.OrphanedTokens + r.Funnel.ExploratoryTokens
	if total == 0 || r.Funnel.OrphanedTokens*5 < total {
		return nil
	}
	pct := float64(r.Funnel.OrphanedTokens) / float64(total) * 100
	return &Insight{
		Type: "orphan_waste",
		Text: fmt.Sprintf("%.0f%% of tokens went to %d orphaned session(s) that shipped nothing.",
			pct, r.Funnel.OrphanedSessions),
	}
}

// organicShareInsight fires when manual commits outnumber agent-assisted
// ones.
func organicShareInsight(r *Report) *Insight {
	if r.Totals.OrganicCommits <= r.Totals.Commits || r.Totals.OrganicCommits == 0 {
		return nil
	}
	return &Insight{
		Type: "organic_share",
		Text: fmt.Sprintf("Manual work still dominates: %d organic commits vs %d agent-assisted.",
			r.Totals.OrganicCommits, r.Totals.Commits),
	}
}

// sweetSpotInsight names the cheapest-per-commit session-length bucket
// among buckets with at least 3 sessions.
func sweetSpotInsight(r *Report) *Insight {
	var best *LengthBucket
	for i := range r.LengthBuckets {
		b := &r.LengthBuckets[i]
		if b.Sessions < 3 || b.CostPerCommit == nil {
			continue
		}
		if best == nil || *b.CostPerCommit < *best.CostPerCommit {
			best = b
		}
	}
	if best == nil {
		return nil
	}
	return &Insight{
		Type: "sweet_spot",
		Text: fmt.Sprintf("Sessions of %s messages were the most efficient at $%.2f per commit.",
			best.Label, *best.CostPerCommit),
	}
}

// survivalInsight flags low line survival.
func survivalInsight(r *Report) *Insight {
	if r.Survival.TotalAdded == 0 || r.Survival.Rate >= 50 {
		return nil
	}
	return &Insight{
		Type: "survival",
		Text: fmt.Sprintf("Only %d%% of added lines survived 24 hours without being rewritten.",
			r.Survival.Rate),
	}
}
