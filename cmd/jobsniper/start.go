package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobsniper-dev/jobsniper/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the recurring audit daemon",
	Long:  "Runs a full audit-then-notify cycle on the configured interval; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	intervalHours := cfg.Schedule.IntervalHours
	if intervalHours <= 0 {
		intervalHours = 6
	}
	logger.Info("config loaded",
		"source", cfg.Source.Type,
		"storage", cfg.Storage.Backend,
		"scorer", cfg.Audit.Scorer.Mode,
		"notifier", cfg.Notification.Type,
		"interval_hours", intervalHours,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(func(ctx context.Context) error {
		return runCycle(ctx, cfg, logger, false)
	}, intervalHours, logger)

	if err := sched.Start(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	sched.Stop()
	logger.Info("goodbye")
	return nil
}
