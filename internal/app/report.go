package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/roiwatch/internal/config"
	"github.com/blackwell-systems/roiwatch/internal/metrics"
	"github.com/blackwell-systems/roiwatch/internal/output"
)

var (
	reportDays    int
	reportProject string
	reportNoCache bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Correlate sessions with git history and grade the ROI",
	Long: `Build the full ROI report: load Claude Code sessions, extract git
history from every repository they worked in, assign commits to sessions,
price token usage, and grade the outcome.

Examples:
  roiwatch report                 # last 30 days
  roiwatch report --days 7        # last week
  roiwatch report --project api   # one project only
  roiwatch report --json          # machine-readable output`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportDays, "days", 0, "Number of days to analyze (default from config)")
	reportCmd.Flags().StringVar(&reportProject, "project", "", "Filter to a specific project name")
	reportCmd.Flags().BoolVar(&reportNoCache, "no-cache", false, "Bypass the parse cache")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupOutput()

	report, err := buildReport(cfg, pipelineOptions{
		days:    reportDays,
		project: reportProject,
		noCache: reportNoCache,
	})
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	renderGrade(report)
	renderTotals(report.Totals)
	renderFunnel(report.Funnel)
	renderSurvival(report)
	renderModels(report.Models)
	renderTools(report.Tools)
	renderRepos(report.Repos)
	renderDaily(report)
	renderLengthBuckets(report.LengthBuckets)
	renderHeatmap(report.Heatmap)
	renderInsights(report.Insights)

	return nil
}

func renderGrade(r *metrics.Report) {
	fmt.Println(output.Section("ROI Grade"))

	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Grade"),
		output.GradeBadge(r.Grade))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Cost per commit"),
		output.StyleValue.Render(output.Ratio(r.Totals.CostPerCommit)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Cost per line"),
		output.StyleValue.Render(output.Ratio(r.Totals.CostPerLine)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Total spend"),
		output.StyleValue.Render(output.Money(r.Totals.Cost.TotalCost)))

	fmt.Println()
}

func renderTotals(t metrics.Totals) {
	fmt.Println(output.Section("Totals"))

	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Sessions"),
		output.StyleValue.Render(fmt.Sprintf("%d", t.Sessions)))
	if t.OrphanedSessions > 0 {
		fmt.Printf(" %s %s\n",
			output.StyleLabel.Render("Orphaned sessions"),
			output.StyleError.Render(fmt.Sprintf("%d", t.OrphanedSessions)))
	}
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Commits won"),
		output.StyleValue.Render(fmt.Sprintf("%d", t.Commits)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Organic commits"),
		output.StyleValue.Render(fmt.Sprintf("%d", t.OrganicCommits)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("On default branch"),
		output.StyleValue.Render(fmt.Sprintf("%d", t.DefaultBranchCommits)))
	fmt.Printf(" %s %s %s\n",
		output.StyleLabel.Render("Lines"),
		output.StyleValue.Render(output.Signed(t.NetLines)),
		output.StyleMuted.Render(fmt.Sprintf("(+%d / -%d)", t.LinesAdded, t.LinesDeleted)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Tokens"),
		output.StyleValue.Render(output.Tokens(t.TotalTokens)))

	fmt.Println()
}

func renderFunnel(f metrics.WasteFunnel) {
	fmt.Println(output.Section("Token Funnel"))

	fmt.Printf(" %s %s %s\n",
		output.StyleLabel.Render("Productive"),
		output.StyleValue.Render(output.Tokens(f.ProductiveTokens)),
		output.StyleMuted.Render(fmt.Sprintf("(%d sessions, %s)", f.ProductiveSessions, output.Money(f.ProductiveCost))))
	fmt.Printf(" %s %s %s\n",
		output.StyleLabel.Render("Orphaned"),
		output.StyleValue.Render(output.Tokens(f.OrphanedTokens)),
		output.StyleMuted.Render(fmt.Sprintf("(%d sessions, %s)", f.OrphanedSessions, output.Money(f.OrphanedCost))))
	fmt.Printf(" %s %s %s\n",
		output.StyleLabel.Render("Exploratory"),
		output.StyleValue.Render(output.Tokens(f.ExploratoryTokens)),
		output.StyleMuted.Render(fmt.Sprintf("(%d sessions, %s)", f.ExploratorySessions, output.Money(f.ExploratoryCost))))

	fmt.Println()
}

func renderSurvival(r *metrics.Report) {
	fmt.Println(output.Section("Code Survival"))

	if r.Survival.TotalAdded == 0 {
		fmt.Printf(" %s\n\n", output.StyleMuted.Render("No line additions to measure"))
		return
	}

	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Survival rate"),
		output.SurvivalBar(float64(r.Survival.Rate), 20))
	fmt.Printf(" %s %s %s\n",
		output.StyleLabel.Render("Churned in 24h"),
		output.StyleValue.Render(fmt.Sprintf("%d", r.Survival.TotalChurned)),
		output.StyleMuted.Render(fmt.Sprintf("of %d lines added", r.Survival.TotalAdded)))

	fmt.Println()
}

func renderModels(models []metrics.ModelFamilyStats) {
	if len(models) == 0 {
		return
	}
	fmt.Println(output.Section("Models"))

	t := output.NewTable("Family", "Tokens", "Cost", "Sessions", "Commits")
	for _, m := range models {
		t.AddRow(m.Family,
			output.Tokens(m.Tokens),
			output.Money(m.Cost),
			fmt.Sprintf("%.1f", m.Sessions),
			fmt.Sprintf("%.1f", m.Commits))
	}
	fmt.Println(t.Render())
}

func renderTools(tools []metrics.ToolStats) {
	if len(tools) == 0 {
		return
	}
	fmt.Println(output.Section("Tools"))

	// Top ten is enough; the tail is noise.
	if len(tools) > 10 {
		tools = tools[:10]
	}
	t := output.NewTable("Tool", "Invocations")
	for _, tool := range tools {
		t.AddRow(tool.Name, fmt.Sprintf("%d", tool.Count))
	}
	fmt.Println(t.Render())
}

func renderRepos(repos []metrics.RepoStats) {
	if len(repos) == 0 {
		return
	}
	fmt.Println(output.Section("Repositories"))

	t := output.NewTable("Repo", "Sessions", "Commits", "Organic", "Cost", "Survival")
	for _, r := range repos {
		t.AddRow(filepath.Base(r.RepoPath),
			fmt.Sprintf("%d", r.Sessions),
			fmt.Sprintf("%d", r.Commits),
			fmt.Sprintf("%d", r.OrganicCommits),
			output.Money(r.Cost),
			fmt.Sprintf("%d%%", r.SurvivalRate))
	}
	fmt.Println(t.Render())
}

func renderDaily(r *metrics.Report) {
	if len(r.Daily) == 0 {
		return
	}
	fmt.Println(output.Section("Daily"))

	// Show the most recent week.
	daily := r.Daily
	if len(daily) > 7 {
		daily = daily[len(daily)-7:]
	}

	t := output.NewTable("Date", "Sessions", "Commits", "Cost", "Commits/$")
	for _, d := range daily {
		t.AddRow(d.Date,
			fmt.Sprintf("%d", d.Sessions),
			fmt.Sprintf("%d", d.Commits),
			output.Money(d.Cost),
			fmt.Sprintf("%.2f", d.CommitsPerDollar))
	}
	fmt.Println(t.Render())

	if r.BestDay != nil {
		fmt.Printf(" %s %s %s\n",
			output.StyleLabel.Render("Best day"),
			output.StyleSuccess.Render(r.BestDay.Date),
			output.StyleMuted.Render(fmt.Sprintf("(%d commits, %s)", r.BestDay.Commits, output.Money(r.BestDay.Cost))))
	}
	if r.WorstDay != nil {
		fmt.Printf(" %s %s %s\n",
			output.StyleLabel.Render("Worst day"),
			output.StyleError.Render(r.WorstDay.Date),
			output.StyleMuted.Render(fmt.Sprintf("(%d commits, %s)", r.WorstDay.Commits, output.Money(r.WorstDay.Cost))))
	}
	fmt.Println()
}

func renderLengthBuckets(buckets []metrics.LengthBucket) {
	any := false
	for _, b := range buckets {
		if b.Sessions > 0 {
			any = true
			break
		}
	}
	if !any {
		return
	}
	fmt.Println(output.Section("Session Length"))

	t := output.NewTable("Messages", "Sessions", "Commits", "Cost/commit")
	for _, b := range buckets {
		if b.Sessions == 0 {
			continue
		}
		t.AddRow(b.Label,
			fmt.Sprintf("%d", b.Sessions),
			fmt.Sprintf("%d", b.Commits),
			output.Ratio(b.CostPerCommit))
	}
	fmt.Println(t.Render())
}

// heatShades maps relative commit intensity to block characters.
var heatShades = []string{" ", "░", "▒", "▓", "█"}

func renderHeatmap(heatmap [7][24]int) {
	peak := 0
	for _, row := range heatmap {
		for _, v := range row {
			if v > peak {
				peak = v
			}
		}
	}
	if peak == 0 {
		return
	}
	fmt.Println(output.Section("Commit Heatmap"))

	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	fmt.Printf("      %s\n", output.StyleMuted.Render("0    4    8    12   16   20"))
	for d, row := range heatmap {
		line := ""
		for _, v := range row {
			idx := 0
			if v > 0 {
				idx = 1 + v*(len(heatShades)-2)/peak
				if idx >= len(heatShades) {
					idx = len(heatShades) - 1
				}
			}
			line += heatShades[idx]
		}
		fmt.Printf(" %s  %s\n", output.StyleMuted.Render(days[d]), line)
	}
	fmt.Println()
}

func renderInsights(insights []metrics.Insight) {
	if len(insights) == 0 {
		return
	}
	fmt.Println(output.Section("Insights"))

	for _, in := range insights {
		fmt.Printf(" %s %s\n", output.StyleHeader.Render("•"), in.Text)
	}
	fmt.Println()
}
