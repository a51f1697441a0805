package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/roiwatch/internal/config"
	"github.com/blackwell-systems/roiwatch/internal/metrics"
	"github.com/blackwell-systems/roiwatch/internal/server"
)

var (
	servePort      int
	serveDays      int
	serveNoBrowser bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report as a local web dashboard",
	Long: `Start a local HTTP server with an interactive dashboard. The report
is rebuilt on every page load, so new sessions and commits appear as
they land. The parse cache keeps rebuilds cheap.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 4316, "Port to listen on")
	serveCmd.Flags().IntVar(&serveDays, "days", 0, "Number of days to analyze (default from config)")
	serveCmd.Flags().BoolVar(&serveNoBrowser, "no-browser", false, "Do not open the browser automatically")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	build := func() (*metrics.Report, error) {
		return buildReport(cfg, pipelineOptions{days: serveDays})
	}

	return server.Serve(servePort, build, !serveNoBrowser)
}
