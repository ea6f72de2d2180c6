// Package notifier delivers digests of qualifying postings over the channel
// the user configured: log output, Slack, email, or Telegram.
package notifier

import (
	"log/slog"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes qualifying postings to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each posting via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each posting with company, title, score, and URL.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(postings []model.VerifiedPosting) error {
	for _, p := range postings {
		n.logger.Info("new match",
			"company", p.Company,
			"title", p.Title,
			"score", p.RelevanceScore,
			"work_mode", p.WorkMode,
			"duration", p.Duration,
			"url", p.URL,
		)
	}
	return nil
}
