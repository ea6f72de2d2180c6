// Package audit runs the batch audit pipeline: load postings, filter out
// already-seen URLs, classify and score the rest, persist the verified set,
// and record the batch in the ledger.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jobsniper-dev/jobsniper/internal/classify"
	"github.com/jobsniper-dev/jobsniper/internal/model"
)

// Summary reports what one audit run did with its batch.
type Summary struct {
	Fetched int // raw postings loaded (after empty-description drop)
	Skipped int // filtered out as already seen
	Scored  int // classified clean and scored
	Scams   int // rejected by the classifier
	Errors  int // postings whose scorer failed
}

// Pipeline owns one full audit cycle:
// fetch → filter seen → classify/score → persist → record ledger.
type Pipeline struct {
	source    model.PostingSource
	ledger    model.Ledger
	scorer    model.Scorer
	store     model.VerifiedStore
	profile   model.Profile
	retention time.Duration
	logger    *slog.Logger
}

// NewPipeline creates a pipeline wired with all its dependencies.
func NewPipeline(
	source model.PostingSource,
	ledger model.Ledger,
	scorer model.Scorer,
	store model.VerifiedStore,
	profile model.Profile,
	retention time.Duration,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		source:    source,
		ledger:    ledger,
		scorer:    scorer,
		store:     store,
		profile:   profile,
		retention: retention,
		logger:    logger,
	}
}

// Run executes one audit cycle and returns its summary.
//
// Scorer failures on individual postings are non-fatal: the posting is
// counted as errored, left out of the ledger-write set, and picked up again
// on the next run. A persistence failure aborts the run before the ledger is
// written, so the whole batch stays eligible for re-audit.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	postings, err := p.source.FetchPostings(ctx)
	if err != nil {
		return summary, fmt.Errorf("loading postings: %w", err)
	}
	// Postings without a description cannot be classified or scored.
	var loaded []model.Posting
	for _, posting := range postings {
		if posting.Description == "" {
			p.logger.Debug("dropping posting with empty description", "url", posting.URL)
			continue
		}
		loaded = append(loaded, posting)
	}
	summary.Fetched = len(loaded)

	seen, err := p.ledger.PurgeAndList(p.retention)
	if err != nil {
		return summary, fmt.Errorf("reading ledger: %w", err)
	}

	var fresh []model.Posting
	for _, posting := range loaded {
		if seen.Contains(posting.URL) {
			summary.Skipped++
			continue
		}
		fresh = append(fresh, posting)
	}

	var verified []model.VerifiedPosting
	var ledgerWrite []string
	for _, posting := range fresh {
		verdict := classify.Classify(posting.Description, posting.Company)
		if verdict.IsScam {
			p.logger.Info("rejected scam posting",
				"url", posting.URL,
				"company", posting.Company,
				"reason", verdict.Reason,
			)
			summary.Scams++
			ledgerWrite = append(ledgerWrite, posting.URL)
			continue
		}

		result, err := p.scorer.Score(ctx, posting.Description, posting.Location, p.profile)
		if err != nil {
			// Not recorded in the ledger: the posting stays eligible
			// for re-audit next run.
			p.logger.Warn("scoring failed, skipping posting",
				"url", posting.URL,
				"error", err,
			)
			summary.Errors++
			continue
		}

		verified = append(verified, model.VerifiedPosting{
			Posting:        posting,
			RelevanceScore: result.RelevanceScore,
			MatchReason:    result.MatchReason,
			Duration:       result.Duration,
			WorkMode:       result.WorkMode,
		})
		summary.Scored++
		ledgerWrite = append(ledgerWrite, posting.URL)
	}

	// Highest score first; ties keep batch order.
	sort.SliceStable(verified, func(i, j int) bool {
		return verified[i].RelevanceScore > verified[j].RelevanceScore
	})

	if len(verified) > 0 {
		if err := p.store.Save(verified); err != nil {
			return summary, fmt.Errorf("persisting verified postings: %w", err)
		}
	}

	// Ledger commit comes after persistence: a failed save leaves the whole
	// batch unrecorded and re-auditable.
	if len(ledgerWrite) > 0 {
		if err := p.ledger.Record(ledgerWrite, time.Now()); err != nil {
			return summary, fmt.Errorf("recording ledger: %w", err)
		}
	}

	p.logger.Info("audit run complete",
		"fetched", summary.Fetched,
		"skipped", summary.Skipped,
		"scored", summary.Scored,
		"scams", summary.Scams,
		"errors", summary.Errors,
	)

	return summary, nil
}
