// Package scheduler runs the audit-then-notify cycle on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Cycle is one full audit-then-notify pass.
type Cycle func(ctx context.Context) error

// Scheduler wraps robfig/cron and manages the recurring cycle.
type Scheduler struct {
	cron   *cron.Cron
	cycle  Cycle
	spec   string // cron spec, e.g. "@every 6h"
	logger *slog.Logger
}

// New creates a Scheduler that fires every intervalHours hours.
func New(cycle Cycle, intervalHours int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		cycle:  cycle,
		spec:   fmt.Sprintf("@every %dh", intervalHours),
		logger: logger,
	}
}

// Start registers the job and starts the scheduler. It also runs one cycle
// immediately so the first results arrive without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "spec", s.spec)

	// Run immediately on startup (non-blocking).
	go s.runCycle(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	s.logger.Info("cycle started")
	if err := s.cycle(ctx); err != nil {
		s.logger.Error("cycle failed", "error", err)
		return
	}
	s.logger.Info("cycle complete")
}
