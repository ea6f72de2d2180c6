package model

import (
	"context"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// WorkMode is the working arrangement extracted from a posting description.
type WorkMode string

const (
	WorkModeRemote  WorkMode = "Remote"
	WorkModeHybrid  WorkMode = "Hybrid"
	WorkModeOnSite  WorkMode = "On-site"
	WorkModeUnknown WorkMode = "Unknown"
)

// Posting is a single raw job listing produced by a scraper.
// Immutable once scraped; identified by URL.
type Posting struct {
	URL         string     // unique key
	Title       string     // job title
	Company     string     // company name
	Location    string     // raw location string
	Description string     // full description text
	DatePosted  *time.Time // nullable (not all boards provide this)
	SourceSite  string     // board name (linkedin, indeed, ...)
}

// AuditResult is the verdict produced for a single posting. It is never
// persisted apart from the posting it describes.
type AuditResult struct {
	IsScam         bool
	ScamReason     string
	RelevanceScore int // 0-100
	MatchReason    string
	Duration       string // e.g. "3 months", or "Not Specified"
	WorkMode       WorkMode
}

// VerifiedPosting is a posting that passed classification together with its score.
type VerifiedPosting struct {
	Posting
	RelevanceScore int
	MatchReason    string
	Duration       string
	WorkMode       WorkMode
}

// Profile describes the candidate the auditor scores against.
// Loaded once per run; read-only during a run.
type Profile struct {
	TargetRole  string      `json:"target_role"`
	Skills      []string    `json:"skills"`
	Preferences Preferences `json:"preferences"`
}

// Preferences holds location and work-type preferences.
type Preferences struct {
	Locations []string `json:"locations"`
	WorkType  string   `json:"work_type"`
}

// PostingSource supplies a raw batch of postings for one audit run.
type PostingSource interface {
	FetchPostings(ctx context.Context) ([]Posting, error)
}

// Scorer produces an AuditResult for a posting that passed classification.
// Implementations must be drop-in replacements for each other: the local
// heuristic and the LLM-backed variant return the same shape.
type Scorer interface {
	Score(ctx context.Context, text, location string, profile Profile) (AuditResult, error)
}

// Ledger tracks which posting URLs have already been audited.
type Ledger interface {
	// PurgeAndList removes entries older than the retention window and
	// returns the surviving URLs.
	PurgeAndList(retention time.Duration) (mapset.Set[string], error)
	// Record inserts entries for URLs not yet present; existing entries keep
	// their original first_seen.
	Record(urls []string, now time.Time) error
}

// VerifiedStore persists the verified set.
type VerifiedStore interface {
	Save(postings []VerifiedPosting) error
	ListByScore() ([]VerifiedPosting, error)
}

// History is the append-only set of URLs already notified.
type History interface {
	All() (mapset.Set[string], error)
	Append(urls []string) error
}

// Notifier dispatches a digest of qualifying postings.
type Notifier interface {
	Notify(postings []VerifiedPosting) error
}
