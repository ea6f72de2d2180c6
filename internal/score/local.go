// Package score produces a 0-100 relevance score for postings that pass
// classification. Two interchangeable scorers exist: the local heuristic
// (default, no network) and the LLM-backed variant; both return the same
// AuditResult shape so they can be swapped by configuration.
package score

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

const (
	roleMatchCap   = 40
	roleMatchStep  = 10
	skillMatchCap  = 40
	skillMatchStep = 5
	educationBonus = 10
	locationBonus  = 10
	internBonus    = 5
	domainFloor    = 55
	maxScore       = 100
)

// Role-indicating terms; each contributes roleMatchStep when present.
var roleKeywords = []string{
	"intern", "internship", "ai", "ml", "machine learning", "data science", "deep learning",
}

// Student/undergraduate-level terms for the education bonus.
var educationTerms = []string{
	"student", "undergraduate", "bachelor", "btech", "b.tech",
}

// Core AI/ML technology terms that guarantee the domain floor.
var domainTerms = []string{
	"artificial intelligence", "machine learning", "deep learning",
	"neural network", "pytorch", "tensorflow",
}

var durationRegex = regexp.MustCompile(`(\d+\s*(?:months|month|years|year))`)

// LocalScorer is the heuristic auditor: a pure function of the posting text,
// location and profile. It never fails and never makes network calls.
type LocalScorer struct{}

// NewLocalScorer returns the heuristic scorer.
func NewLocalScorer() *LocalScorer { return &LocalScorer{} }

// Score computes the additive, capped relevance score with a domain floor.
func (s *LocalScorer) Score(_ context.Context, text, location string, profile model.Profile) (model.AuditResult, error) {
	lower := strings.ToLower(text)

	score := 0
	var reasons []string

	// 1. Role keywords: presence per keyword, capped.
	roleMatches := 0
	for _, kw := range roleKeywords {
		if strings.Contains(lower, kw) {
			roleMatches++
		}
	}
	roleScore := min(roleMatchCap, roleMatches*roleMatchStep)
	score += roleScore
	if roleScore > 0 {
		reasons = append(reasons, fmt.Sprintf("Role keywords matched (%d found)", roleMatches))
	}

	// 2. Skills: verbatim case-insensitive presence, capped.
	skillMatches := 0
	for _, skill := range profile.Skills {
		if strings.Contains(lower, strings.ToLower(skill)) {
			skillMatches++
		}
	}
	skillScore := min(skillMatchCap, skillMatches*skillMatchStep)
	score += skillScore
	if skillScore > 0 {
		reasons = append(reasons, fmt.Sprintf("Skills matched: %d/%d", skillMatches, len(profile.Skills)))
	}

	// 3. Education fit.
	if containsAny(lower, educationTerms) {
		score += educationBonus
		reasons = append(reasons, "Suitable for students")
	}

	// 4. Location preference: matches the location field or the description.
	locationLower := strings.ToLower(location)
	for _, loc := range profile.Preferences.Locations {
		l := strings.ToLower(loc)
		if strings.Contains(locationLower, l) || strings.Contains(lower, l) {
			score += locationBonus
			reasons = append(reasons, "Location matches preferences")
			break
		}
	}

	// 5. Internship bonus (stacks with the role keywords above).
	if strings.Contains(lower, "intern") {
		score += internBonus
	}

	// 6. Domain floor: AI/ML postings never starve on keyword-count noise.
	if containsAny(lower, domainTerms) {
		if score < domainFloor {
			score = domainFloor
		}
		if len(reasons) == 0 {
			reasons = append(reasons, "AI/ML related position")
		}
	}

	if score > maxScore {
		score = maxScore
	}

	matchReason := "General match based on profile"
	if len(reasons) > 0 {
		matchReason = strings.Join(reasons, "; ")
	}

	return model.AuditResult{
		RelevanceScore: score,
		MatchReason:    matchReason,
		Duration:       extractDuration(lower),
		WorkMode:       detectWorkMode(lower),
	}, nil
}

// extractDuration pulls the first "<n> months/years" mention, if any.
func extractDuration(lower string) string {
	if m := durationRegex.FindString(lower); m != "" {
		return m
	}
	return "Not Specified"
}

// detectWorkMode infers the working arrangement from the description text.
func detectWorkMode(lower string) model.WorkMode {
	switch {
	case strings.Contains(lower, "remote"):
		return model.WorkModeRemote
	case strings.Contains(lower, "hybrid"):
		return model.WorkModeHybrid
	case strings.Contains(lower, "on-site"), strings.Contains(lower, "onsite"), strings.Contains(lower, "office"):
		return model.WorkModeOnSite
	default:
		return model.WorkModeUnknown
	}
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
