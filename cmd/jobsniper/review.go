package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/jobsniper-dev/jobsniper/internal/review"
	"github.com/jobsniper-dev/jobsniper/internal/tracker"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review tracked applications interactively",
	Long:  "Opens the application tracker TUI: navigate your applications and advance their statuses.",
	RunE:  runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	tr, err := tracker.New(cfg.Storage.SQLitePath)
	if err != nil {
		logger.Error("failed to open tracker", "error", err)
		os.Exit(1)
	}
	defer tr.Close()

	return review.Run(tr)
}
