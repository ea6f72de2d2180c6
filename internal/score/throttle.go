package score

import (
	"context"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

// ThrottledScorer is a decorator that enforces a minimum gap between calls to
// the wrapped scorer. Remote LLM endpoints rate-limit aggressively; the local
// heuristic is usually wrapped with a zero delay, which disables the wait.
type ThrottledScorer struct {
	inner    model.Scorer
	cooldown *Cooldown
}

// NewThrottledScorer wraps a scorer with a per-call cooldown.
func NewThrottledScorer(inner model.Scorer, cooldown *Cooldown) *ThrottledScorer {
	return &ThrottledScorer{inner: inner, cooldown: cooldown}
}

// Score waits out the cooldown, then delegates to the wrapped scorer.
func (t *ThrottledScorer) Score(ctx context.Context, text, location string, profile model.Profile) (model.AuditResult, error) {
	if err := t.cooldown.Wait(ctx); err != nil {
		return model.AuditResult{}, err
	}
	return t.inner.Score(ctx, text, location, profile)
}
