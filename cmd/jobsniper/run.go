package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobsniper-dev/jobsniper/internal/audit"
	"github.com/jobsniper-dev/jobsniper/internal/config"
	"github.com/jobsniper-dev/jobsniper/internal/model"
	"github.com/jobsniper-dev/jobsniper/internal/notify"
	"github.com/jobsniper-dev/jobsniper/internal/profile"
	"github.com/jobsniper-dev/jobsniper/internal/store"
	"github.com/jobsniper-dev/jobsniper/internal/tracker"
)

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one full audit-then-notify cycle",
	Long:  "Loads a posting batch, audits it, persists the verified set, and dispatches the digest.",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "audit without persisting or notifying")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runCycle(ctx, cfg, logger, dryRun); err != nil {
		logger.Error("cycle failed", "error", err)
		os.Exit(1)
	}
	return nil
}

// runCycle executes one audit pass followed by the notification gate.
// In dry-run mode nothing is persisted and the notifier is never called.
func runCycle(ctx context.Context, cfg *config.Config, logger *slog.Logger, dry bool) error {
	prof, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		return err
	}
	logger.Info("profile loaded", "target_role", prof.TargetRole, "skills", len(prof.Skills))

	backing, err := setupStore(ctx, cfg, dry)
	if err != nil {
		return err
	}
	defer backing.Close()

	led, closeLedger, err := setupLedger(cfg, logger)
	if err != nil {
		return err
	}
	defer closeLedger()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	src := setupSource(cfg, httpClient, logger)
	scorer := setupScorer(cfg, httpClient, logger)

	pipeline := audit.NewPipeline(src, led, scorer, backing, prof, cfg.Audit.Retention, logger)
	summary, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("batch summary",
		"fetched", summary.Fetched,
		"skipped", summary.Skipped,
		"scored", summary.Scored,
		"scams", summary.Scams,
		"errors", summary.Errors,
	)

	if dry {
		logger.Info("dry-run complete, skipping notification")
		return nil
	}

	if cfg.Storage.ExportCSV != "" {
		verified, err := backing.ListByScore()
		if err != nil {
			return err
		}
		if err := store.ExportCSV(cfg.Storage.ExportCSV, verified); err != nil {
			return err
		}
		logger.Info("exported verified set", "path", cfg.Storage.ExportCSV, "postings", len(verified))
	}

	n, err := setupNotifier(cfg, httpClient, logger)
	if err != nil {
		return err
	}

	tr, err := tracker.New(cfg.Storage.SQLitePath)
	if err != nil {
		return err
	}
	defer tr.Close()

	gate := notify.NewGate(backing, backing, trackingNotifier{inner: n, tracker: tr}, cfg.Audit.MinScore, logger)
	_, err = gate.Run()
	return err
}

// trackingNotifier adds every dispatched posting to the application tracker
// after the wrapped notifier succeeds.
type trackingNotifier struct {
	inner   model.Notifier
	tracker *tracker.Tracker
}

func (t trackingNotifier) Notify(postings []model.VerifiedPosting) error {
	if err := t.inner.Notify(postings); err != nil {
		return err
	}
	return t.tracker.Track(postings)
}
