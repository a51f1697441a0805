package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/roiwatch/internal/config"
	"github.com/blackwell-systems/roiwatch/internal/output"
)

var (
	organicDays    int
	organicProject string
	organicLimit   int
)

var organicCmd = &cobra.Command{
	Use:   "organic",
	Short: "List commits no session claimed",
	Long: `Show commits within the analysis window that no session's match
window could claim. These represent work done without the agent.`,
	RunE: runOrganic,
}

func init() {
	organicCmd.Flags().IntVar(&organicDays, "days", 0, "Number of days to look back (default from config)")
	organicCmd.Flags().StringVar(&organicProject, "project", "", "Filter to a specific project name")
	organicCmd.Flags().IntVar(&organicLimit, "limit", 20, "Maximum commits to display")
	rootCmd.AddCommand(organicCmd)
}

func runOrganic(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupOutput()

	report, err := buildReport(cfg, pipelineOptions{
		days:    organicDays,
		project: organicProject,
	})
	if err != nil {
		return err
	}

	commits := report.Organic
	if organicLimit > 0 && len(commits) > organicLimit {
		commits = commits[:organicLimit]
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(commits)
	}

	if len(commits) == 0 {
		fmt.Println(output.StyleMuted.Render("No organic commits in window."))
		return nil
	}

	fmt.Println(output.Section(fmt.Sprintf("Organic Commits (%d)", report.Totals.OrganicCommits)))

	t := output.NewTable("Commit", "Date", "Lines", "Subject")
	for _, c := range commits {
		subject := c.Subject
		if len(subject) > 60 {
			subject = subject[:57] + "..."
		}
		t.AddRow(shortHash(c.Hash),
			c.Timestamp.Local().Format("Jan 02 15:04"),
			output.Signed(c.NetLines()),
			subject)
	}
	fmt.Println(t.Render())

	return nil
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
