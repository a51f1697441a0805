package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/roiwatch/internal/config"
	"github.com/blackwell-systems/roiwatch/internal/correlate"
	"github.com/blackwell-systems/roiwatch/internal/output"
)

var (
	sessionsDays     int
	sessionsProject  string
	sessionsSort     string
	sessionsLimit    int
	sessionsOrphaned bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List graded sessions with their assigned commits",
	Long: `Browse individual sessions with their commit attribution, cost, and
grade. Useful for finding expensive sessions that shipped nothing.

Examples:
  roiwatch sessions                   # recent sessions
  roiwatch sessions --sort cost       # most expensive first
  roiwatch sessions --orphaned        # meaningful effort, nothing shipped
  roiwatch sessions --days 7 --limit 5`,
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().IntVar(&sessionsDays, "days", 0, "Number of days to look back (default from config)")
	sessionsCmd.Flags().StringVar(&sessionsProject, "project", "", "Filter to sessions matching project name")
	sessionsCmd.Flags().StringVar(&sessionsSort, "sort", "recent", "Sort by: recent, cost, commits, tokens")
	sessionsCmd.Flags().IntVar(&sessionsLimit, "limit", 15, "Maximum sessions to display")
	sessionsCmd.Flags().BoolVar(&sessionsOrphaned, "orphaned", false, "Show only orphaned sessions")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupOutput()

	report, err := buildReport(cfg, pipelineOptions{
		days:    sessionsDays,
		project: sessionsProject,
	})
	if err != nil {
		return err
	}

	rows := report.Sessions
	if sessionsOrphaned {
		var orphaned []correlate.CorrelatedSession
		for _, s := range rows {
			if s.Orphaned {
				orphaned = append(orphaned, s)
			}
		}
		rows = orphaned
	}

	sortSessions(rows, sessionsSort)
	if sessionsLimit > 0 && len(rows) > sessionsLimit {
		rows = rows[:sessionsLimit]
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println(output.StyleMuted.Render("No sessions found."))
		return nil
	}

	t := output.NewTable("Session", "Repo", "Start", "Msgs", "Tokens", "Cost", "Commits", "Grade")
	for _, s := range rows {
		id := s.ID
		if len(id) > 8 {
			id = id[:8]
		}
		grade := output.GradeBadge(s.Grade)
		if s.Orphaned {
			grade += output.StyleError.Render(" ⚠")
		}
		t.AddRow(id,
			filepath.Base(s.RepoPath),
			s.StartTime.Local().Format("Jan 02 15:04"),
			fmt.Sprintf("%d", s.TotalMessages()),
			output.Tokens(s.TotalTokens()),
			output.Money(s.Cost.TotalCost),
			fmt.Sprintf("%d", s.CommitCount),
			grade)
	}
	fmt.Println(t.Render())

	return nil
}

// sortSessions orders rows in place by the requested key, most recent
// first by default.
func sortSessions(rows []correlate.CorrelatedSession, key string) {
	switch key {
	case "cost":
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].Cost.TotalCost > rows[j].Cost.TotalCost
		})
	case "commits":
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].CommitCount > rows[j].CommitCount
		})
	case "tokens":
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].TotalTokens() > rows[j].TotalTokens()
		})
	default:
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].StartTime.After(rows[j].StartTime)
		})
	}
}
