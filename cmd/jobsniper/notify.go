package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobsniper-dev/jobsniper/internal/notifier"
	"github.com/jobsniper-dev/jobsniper/internal/notify"
	"github.com/jobsniper-dev/jobsniper/internal/tracker"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Dispatch the digest for qualifying postings",
	Long:  "Selects verified postings above the score threshold that were not yet notified and sends the digest.",
	RunE:  runNotify,
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification",
	Long:  "Sends a test notification using the configured notifier.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	backing, err := setupStore(context.Background(), cfg, false)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer backing.Close()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	n, err := setupNotifier(cfg, httpClient, logger)
	if err != nil {
		logger.Error("failed to set up notifier", "error", err)
		os.Exit(1)
	}

	tr, err := tracker.New(cfg.Storage.SQLitePath)
	if err != nil {
		logger.Error("failed to open tracker", "error", err)
		os.Exit(1)
	}
	defer tr.Close()

	gate := notify.NewGate(backing, backing, trackingNotifier{inner: n, tracker: tr}, cfg.Audit.MinScore, logger)
	count, err := gate.Run()
	if err != nil {
		logger.Error("notification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("notify complete", "postings", count)
	return nil
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	n, err := setupNotifier(cfg, httpClient, logger)
	if err != nil {
		logger.Error("failed to set up notifier", "error", err)
		os.Exit(1)
	}

	if err := notifier.SendTestMessage(n); err != nil {
		logger.Error("test notification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("test notification sent successfully")
	return nil
}
