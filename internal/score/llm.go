package score

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

const (
	// The description is truncated before prompting to keep requests bounded.
	maxPromptDescription = 4000

	// Rate-limit handling: fixed backoff, bounded attempts, per posting.
	rateLimitRetries = 3
	rateLimitDelay   = 60 * time.Second
)

// LLMScorer implements model.Scorer on top of an LLMProvider.
// On a rate-limit response it sleeps a fixed interval and retries a bounded
// number of times before giving up on that single posting.
type LLMScorer struct {
	provider LLMProvider
	logger   *slog.Logger
}

// NewLLMScorer creates the LLM-backed scorer.
func NewLLMScorer(provider LLMProvider, logger *slog.Logger) *LLMScorer {
	return &LLMScorer{provider: provider, logger: logger}
}

// rawAuditResult is the JSON shape returned by the LLM (matches auditResultSchema).
type rawAuditResult struct {
	IsScam         bool   `json:"is_scam"`
	ScamReason     string `json:"scam_reason"`
	RelevanceScore int    `json:"relevance_score"`
	MatchReason    string `json:"match_reason"`
	Duration       string `json:"duration"`
	WorkMode       string `json:"work_mode"`
}

// Score renders the audit prompt and asks the provider for a structured
// verdict. A scoring failure here excludes the posting from this run only;
// the pipeline leaves it eligible for re-audit next run.
func (s *LLMScorer) Score(ctx context.Context, text, location string, profile model.Profile) (model.AuditResult, error) {
	if len(text) > maxPromptDescription {
		text = text[:maxPromptDescription]
	}

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return model.AuditResult{}, fmt.Errorf("marshal profile: %w", err)
	}

	var promptBuf bytes.Buffer
	err = AuditPromptTemplate.Execute(&promptBuf, struct {
		Profile     string
		Location    string
		Description string
	}{
		Profile:     string(profileJSON),
		Location:    location,
		Description: text,
	})
	if err != nil {
		return model.AuditResult{}, fmt.Errorf("render prompt: %w", err)
	}

	raw, err := s.completeWithBackoff(ctx, promptBuf.String())
	if err != nil {
		return model.AuditResult{}, fmt.Errorf("llm complete: %w", err)
	}

	var rr rawAuditResult
	if err := json.Unmarshal([]byte(raw), &rr); err != nil {
		return model.AuditResult{}, fmt.Errorf("unmarshal audit result: %w", err)
	}

	result := model.AuditResult{
		IsScam:         rr.IsScam,
		ScamReason:     rr.ScamReason,
		RelevanceScore: clampScore(rr.RelevanceScore),
		MatchReason:    rr.MatchReason,
		Duration:       rr.Duration,
		WorkMode:       parseWorkMode(rr.WorkMode),
	}
	if result.IsScam {
		result.RelevanceScore = 0
	}
	if result.Duration == "" {
		result.Duration = "Not Specified"
	}
	return result, nil
}

// completeWithBackoff retries rate-limited requests with a fixed delay.
// Other errors are returned immediately.
func (s *LLMScorer) completeWithBackoff(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= rateLimitRetries; attempt++ {
		raw, err := s.provider.Complete(ctx, prompt)
		if err == nil {
			return raw, nil
		}

		var httpErr *model.HTTPError
		if !errors.As(err, &httpErr) || httpErr.StatusCode != 429 {
			return "", err
		}
		lastErr = err

		if attempt == rateLimitRetries {
			break
		}

		delay := rateLimitDelay
		if httpErr.RetryAfter > 0 {
			delay = httpErr.RetryAfter
		}
		s.logger.Warn("llm rate limited, backing off",
			"attempt", attempt+1,
			"max_retries", rateLimitRetries,
			"delay", delay,
		)

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("backoff cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	return "", fmt.Errorf("rate limit retries exhausted: %w", lastErr)
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func parseWorkMode(s string) model.WorkMode {
	switch model.WorkMode(s) {
	case model.WorkModeRemote, model.WorkModeHybrid, model.WorkModeOnSite:
		return model.WorkMode(s)
	default:
		return model.WorkModeUnknown
	}
}
