// Package app contains the Cobra command tree for roiwatch.
package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/roiwatch/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "roiwatch",
	Short: "ROI metrics for AI-assisted development",
	Long: `roiwatch correlates Claude Code sessions with your git history to answer
one question: what did the AI spend actually ship?

It reads local transcripts, matches commits to the sessions that produced
them, prices token usage, and grades the result. Commits no session can
claim are credited to you as organic work.

Run 'roiwatch' with no arguments for the full report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runReport,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setupOutput applies the color flags before any rendering happens.
func setupOutput() {
	if flagNoColor {
		output.SetNoColor(true)
		return
	}
	output.AutoDetect()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/roiwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
}
