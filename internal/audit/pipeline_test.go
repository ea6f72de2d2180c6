package audit

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

type fakeSource struct {
	postings []model.Posting
	err      error
}

func (f *fakeSource) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	return f.postings, f.err
}

type fakeLedger struct {
	seen      mapset.Set[string]
	recorded  []string
	recordErr error
}

func (f *fakeLedger) PurgeAndList(retention time.Duration) (mapset.Set[string], error) {
	if f.seen == nil {
		return mapset.NewSet[string](), nil
	}
	return f.seen, nil
}

func (f *fakeLedger) Record(urls []string, now time.Time) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, urls...)
	return nil
}

type fakeScorer struct {
	failURLs map[string]bool // keyed by description, fails those postings
	score    int
}

func (f *fakeScorer) Score(ctx context.Context, text, location string, profile model.Profile) (model.AuditResult, error) {
	if f.failURLs[text] {
		return model.AuditResult{}, errors.New("scorer unavailable")
	}
	return model.AuditResult{
		RelevanceScore: f.score,
		MatchReason:    "Role matches target position",
		Duration:       "Not Specified",
		WorkMode:       model.WorkModeUnknown,
	}, nil
}

type fakeStore struct {
	saved   []model.VerifiedPosting
	saveErr error
}

func (f *fakeStore) Save(postings []model.VerifiedPosting) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, postings...)
	return nil
}

func (f *fakeStore) ListByScore() ([]model.VerifiedPosting, error) { return f.saved, nil }

func posting(url, description string) model.Posting {
	return model.Posting{
		URL:         url,
		Title:       "Software Intern",
		Company:     "Acme Corp",
		Description: description,
	}
}

func newTestPipeline(source *fakeSource, ledger *fakeLedger, scorer model.Scorer, store *fakeStore) *Pipeline {
	return NewPipeline(source, ledger, scorer, store,
		model.Profile{TargetRole: "AI Intern", Skills: []string{"Python"}},
		7*24*time.Hour, slog.Default())
}

func TestRunScoresFreshPostings(t *testing.T) {
	source := &fakeSource{postings: []model.Posting{
		posting("https://a.com/1", "Work on backend services with Python"),
		posting("https://a.com/2", "Build data pipelines for analytics"),
	}}
	ledger := &fakeLedger{}
	store := &fakeStore{}
	p := newTestPipeline(source, ledger, &fakeScorer{score: 60}, store)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Scored != 2 {
		t.Errorf("Scored = %d, want 2", summary.Scored)
	}
	if len(store.saved) != 2 {
		t.Errorf("saved %d postings, want 2", len(store.saved))
	}
	if len(ledger.recorded) != 2 {
		t.Errorf("recorded %d ledger entries, want 2", len(ledger.recorded))
	}
}

func TestRunSkipsSeenPostings(t *testing.T) {
	source := &fakeSource{postings: []model.Posting{
		posting("https://a.com/seen", "Work on backend services"),
		posting("https://a.com/new", "Build data pipelines"),
	}}
	ledger := &fakeLedger{seen: mapset.NewSet("https://a.com/seen")}
	store := &fakeStore{}
	p := newTestPipeline(source, ledger, &fakeScorer{score: 60}, store)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", summary.Skipped)
	}
	if summary.Scored != 1 {
		t.Errorf("Scored = %d, want 1", summary.Scored)
	}
	if len(store.saved) != 1 || store.saved[0].URL != "https://a.com/new" {
		t.Errorf("saved = %v, want only the new posting", store.saved)
	}
}

func TestRunRejectsScamsWithoutScoring(t *testing.T) {
	source := &fakeSource{postings: []model.Posting{
		posting("https://a.com/scam", "Great opportunity, registration fee required upfront"),
		posting("https://a.com/clean", "Build data pipelines"),
	}}
	ledger := &fakeLedger{}
	store := &fakeStore{}
	scorer := &fakeScorer{score: 60}
	p := newTestPipeline(source, ledger, scorer, store)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Scams != 1 {
		t.Errorf("Scams = %d, want 1", summary.Scams)
	}
	for _, v := range store.saved {
		if v.URL == "https://a.com/scam" {
			t.Error("scam posting must not be persisted")
		}
	}
	// The scam still lands in the ledger so it is not re-audited.
	found := false
	for _, url := range ledger.recorded {
		if url == "https://a.com/scam" {
			found = true
		}
	}
	if !found {
		t.Error("scam posting must be recorded in the ledger")
	}
}

func TestRunScorerErrorIsNonFatal(t *testing.T) {
	source := &fakeSource{postings: []model.Posting{
		posting("https://a.com/bad", "This one breaks the scorer"),
		posting("https://a.com/good", "Build data pipelines"),
	}}
	ledger := &fakeLedger{}
	store := &fakeStore{}
	scorer := &fakeScorer{score: 60, failURLs: map[string]bool{"This one breaks the scorer": true}}
	p := newTestPipeline(source, ledger, scorer, store)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Errors != 1 {
		t.Errorf("Errors = %d, want 1", summary.Errors)
	}
	if summary.Scored != 1 {
		t.Errorf("Scored = %d, want 1", summary.Scored)
	}
	// Errored postings stay out of the ledger so the next run retries them.
	for _, url := range ledger.recorded {
		if url == "https://a.com/bad" {
			t.Error("errored posting must not be recorded in the ledger")
		}
	}
}

func TestRunDropsEmptyDescriptions(t *testing.T) {
	source := &fakeSource{postings: []model.Posting{
		posting("https://a.com/empty", ""),
		posting("https://a.com/full", "Build data pipelines"),
	}}
	ledger := &fakeLedger{}
	store := &fakeStore{}
	p := newTestPipeline(source, ledger, &fakeScorer{score: 60}, store)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Fetched != 1 {
		t.Errorf("Fetched = %d, want 1", summary.Fetched)
	}
	if len(ledger.recorded) != 1 {
		t.Errorf("recorded %d ledger entries, want 1", len(ledger.recorded))
	}
}

func TestRunPersistFailureSkipsLedger(t *testing.T) {
	source := &fakeSource{postings: []model.Posting{
		posting("https://a.com/1", "Build data pipelines"),
	}}
	ledger := &fakeLedger{}
	store := &fakeStore{saveErr: errors.New("disk full")}
	p := newTestPipeline(source, ledger, &fakeScorer{score: 60}, store)

	_, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected persistence failure to surface")
	}
	if len(ledger.recorded) != 0 {
		t.Errorf("ledger must stay untouched after persist failure, got %d entries", len(ledger.recorded))
	}
}

func TestRunSavesSortedByScore(t *testing.T) {
	source := &fakeSource{postings: []model.Posting{
		posting("https://a.com/low", "generic office work"),
		posting("https://a.com/high", "machine learning internship with pytorch"),
	}}
	ledger := &fakeLedger{}
	store := &fakeStore{}
	scorer := &scoreByDescription{scores: map[string]int{
		"generic office work":                      20,
		"machine learning internship with pytorch": 90,
	}}
	p := newTestPipeline(source, ledger, scorer, store)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(store.saved) != 2 {
		t.Fatalf("saved %d postings, want 2", len(store.saved))
	}
	if store.saved[0].URL != "https://a.com/high" {
		t.Errorf("first saved = %s, want the high-score posting", store.saved[0].URL)
	}
}

func TestRunEmptyBatchWritesNothing(t *testing.T) {
	source := &fakeSource{}
	ledger := &fakeLedger{}
	store := &fakeStore{}
	p := newTestPipeline(source, ledger, &fakeScorer{score: 60}, store)

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary != (Summary{}) {
		t.Errorf("summary = %+v, want all zeros", summary)
	}
	if len(store.saved) != 0 || len(ledger.recorded) != 0 {
		t.Error("empty batch must not touch store or ledger")
	}
}

func TestRunFetchErrorIsFatal(t *testing.T) {
	source := &fakeSource{err: errors.New("network down")}
	p := newTestPipeline(source, &fakeLedger{}, &fakeScorer{score: 60}, &fakeStore{})

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected fetch failure to surface")
	}
}

type scoreByDescription struct {
	scores map[string]int
}

func (s *scoreByDescription) Score(ctx context.Context, text, location string, profile model.Profile) (model.AuditResult, error) {
	return model.AuditResult{RelevanceScore: s.scores[text], MatchReason: "match"}, nil
}
