// Package notify decides which verified postings are worth telling the user
// about and renders the digest that carries them.
package notify

import (
	"fmt"
	"log/slog"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

// Gate selects verified postings that cross the score threshold and have not
// been notified before, dispatches them, and appends them to the history only
// after dispatch succeeds.
type Gate struct {
	store    model.VerifiedStore
	history  model.History
	notifier model.Notifier
	minScore int
	logger   *slog.Logger
}

// NewGate creates a gate wired with all its dependencies.
func NewGate(store model.VerifiedStore, history model.History, notifier model.Notifier, minScore int, logger *slog.Logger) *Gate {
	return &Gate{
		store:    store,
		history:  history,
		notifier: notifier,
		minScore: minScore,
		logger:   logger,
	}
}

// Run selects and dispatches qualifying postings. It returns how many were
// notified. A posting qualifies when its score is at or above the threshold
// and its URL is absent from the history; everything below the threshold is
// silently ignored and may qualify on a later run if re-scored higher.
func (g *Gate) Run() (int, error) {
	postings, err := g.store.ListByScore()
	if err != nil {
		return 0, fmt.Errorf("listing verified postings: %w", err)
	}

	notified, err := g.history.All()
	if err != nil {
		return 0, fmt.Errorf("reading notification history: %w", err)
	}

	var due []model.VerifiedPosting
	for _, p := range postings {
		if p.RelevanceScore < g.minScore {
			continue
		}
		if notified.Contains(p.URL) {
			continue
		}
		due = append(due, p)
	}

	if len(due) == 0 {
		g.logger.Info("no new postings to notify")
		return 0, nil
	}

	if err := g.notifier.Notify(due); err != nil {
		return 0, fmt.Errorf("dispatching notification: %w", err)
	}

	// History is appended only after a successful dispatch, so a failed send
	// retries the same postings next run.
	urls := make([]string, len(due))
	for i, p := range due {
		urls[i] = p.URL
	}
	if err := g.history.Append(urls); err != nil {
		return len(due), fmt.Errorf("appending notification history: %w", err)
	}

	g.logger.Info("dispatched notification", "postings", len(due))
	return len(due), nil
}
