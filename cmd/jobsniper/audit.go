package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobsniper-dev/jobsniper/internal/audit"
	"github.com/jobsniper-dev/jobsniper/internal/profile"
)

var auditDryRun bool

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit a posting batch without notifying",
	Long:  "Runs the classify/score stage and persists the verified set; the digest is not sent.",
	RunE:  runAudit,
}

func init() {
	auditCmd.Flags().BoolVar(&auditDryRun, "dry-run", false, "audit without persisting")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prof, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		logger.Error("failed to load profile", "error", err)
		os.Exit(1)
	}

	backing, err := setupStore(ctx, cfg, auditDryRun)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer backing.Close()

	led, closeLedger, err := setupLedger(cfg, logger)
	if err != nil {
		logger.Error("failed to open ledger", "error", err)
		os.Exit(1)
	}
	defer closeLedger()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	pipeline := audit.NewPipeline(
		setupSource(cfg, httpClient, logger),
		led,
		setupScorer(cfg, httpClient, logger),
		backing,
		prof,
		cfg.Audit.Retention,
		logger,
	)

	summary, err := pipeline.Run(ctx)
	if err != nil {
		logger.Error("audit failed", "error", err)
		os.Exit(1)
	}

	logger.Info("batch summary",
		"fetched", summary.Fetched,
		"skipped", summary.Skipped,
		"scored", summary.Scored,
		"scams", summary.Scams,
		"errors", summary.Errors,
	)
	return nil
}
