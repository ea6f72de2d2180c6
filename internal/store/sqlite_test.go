package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "store.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func verified(url string, score int) model.VerifiedPosting {
	return model.VerifiedPosting{
		Posting: model.Posting{
			URL:     url,
			Title:   "ML Intern",
			Company: "Acme",
		},
		RelevanceScore: score,
		MatchReason:    "Role match",
		Duration:       "3 months",
		WorkMode:       model.WorkModeRemote,
	}
}

func TestSaveAndListByScore(t *testing.T) {
	s := newTestStore(t)

	batch := []model.VerifiedPosting{
		verified("https://a.com/low", 40),
		verified("https://a.com/high", 90),
		verified("https://a.com/mid", 60),
	}
	if err := s.Save(batch); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.ListByScore()
	if err != nil {
		t.Fatalf("ListByScore() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 postings, got %d", len(got))
	}
	wantOrder := []string{"https://a.com/high", "https://a.com/mid", "https://a.com/low"}
	for i, url := range wantOrder {
		if got[i].URL != url {
			t.Errorf("position %d: got %s, want %s", i, got[i].URL, url)
		}
	}
}

func TestSaveUpsertsByURL(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save([]model.VerifiedPosting{verified("https://a.com/1", 55)}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	updated := verified("https://a.com/1", 80)
	updated.MatchReason = "Stronger match after re-audit"
	if err := s.Save([]model.VerifiedPosting{updated}); err != nil {
		t.Fatalf("re-Save() error = %v", err)
	}

	got, err := s.ListByScore()
	if err != nil {
		t.Fatalf("ListByScore() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 posting after upsert, got %d", len(got))
	}
	if got[0].RelevanceScore != 80 {
		t.Errorf("score = %d, want 80", got[0].RelevanceScore)
	}
	if got[0].MatchReason != "Stronger match after re-audit" {
		t.Errorf("match reason not updated: %q", got[0].MatchReason)
	}
}

func TestSaveRoundTripsDatePosted(t *testing.T) {
	s := newTestStore(t)

	posted := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	p := verified("https://a.com/dated", 70)
	p.DatePosted = &posted
	if err := s.Save([]model.VerifiedPosting{p}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.ListByScore()
	if err != nil {
		t.Fatalf("ListByScore() error = %v", err)
	}
	if got[0].DatePosted == nil {
		t.Fatal("expected date_posted to round-trip")
	}
	if !got[0].DatePosted.Equal(posted) {
		t.Errorf("date_posted = %v, want %v", got[0].DatePosted, posted)
	}
	if got[0].WorkMode != model.WorkModeRemote {
		t.Errorf("work_mode = %q, want %q", got[0].WorkMode, model.WorkModeRemote)
	}
}

func TestSaveEmptyIsNoop(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(nil); err != nil {
		t.Fatalf("Save(nil) error = %v", err)
	}
	got, err := s.ListByScore()
	if err != nil {
		t.Fatalf("ListByScore() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty store, got %d postings", len(got))
	}
}

func TestHistoryAppendAndAll(t *testing.T) {
	s := newTestStore(t)

	history, err := s.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if history.Cardinality() != 0 {
		t.Fatalf("expected empty history, got %d", history.Cardinality())
	}

	if err := s.Append([]string{"https://a.com/1", "https://a.com/2"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	// Appending an existing URL is a no-op, not an error.
	if err := s.Append([]string{"https://a.com/2"}); err != nil {
		t.Fatalf("re-Append() error = %v", err)
	}

	history, err = s.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if history.Cardinality() != 2 {
		t.Errorf("expected 2 history entries, got %d", history.Cardinality())
	}
	if !history.Contains("https://a.com/1") {
		t.Error("expected history to contain https://a.com/1")
	}
}
