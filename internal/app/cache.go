package app

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/roiwatch/internal/config"
	"github.com/blackwell-systems/roiwatch/internal/output"
	"github.com/blackwell-systems/roiwatch/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the parse cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show parse cache size and entry count",
	RunE: func(cmd *cobra.Command, args []string) error {
		setupOutput()

		db, err := store.Open(config.DBPath())
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		stats, err := db.Stats()
		if err != nil {
			return fmt.Errorf("reading cache stats: %w", err)
		}

		fmt.Printf(" %s %s\n",
			output.StyleLabel.Render("Location"),
			output.StyleMuted.Render(config.DBPath()))
		fmt.Printf(" %s %s\n",
			output.StyleLabel.Render("Entries"),
			output.StyleValue.Render(fmt.Sprintf("%d", stats.Entries)))
		fmt.Printf(" %s %s\n",
			output.StyleLabel.Render("Size"),
			output.StyleValue.Render(humanize.Bytes(uint64(stats.Bytes))))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached parse results",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(config.DBPath())
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		if err := db.Clear(); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Println("Cache cleared.")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
