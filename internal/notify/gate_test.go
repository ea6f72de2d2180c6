package notify

import (
	"errors"
	"log/slog"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

type fakeStore struct {
	postings []model.VerifiedPosting
	err      error
}

func (f *fakeStore) Save(postings []model.VerifiedPosting) error { return nil }

func (f *fakeStore) ListByScore() ([]model.VerifiedPosting, error) {
	return f.postings, f.err
}

type fakeHistory struct {
	seen     mapset.Set[string]
	appended []string
}

func (f *fakeHistory) All() (mapset.Set[string], error) {
	if f.seen == nil {
		return mapset.NewSet[string](), nil
	}
	return f.seen, nil
}

func (f *fakeHistory) Append(urls []string) error {
	f.appended = append(f.appended, urls...)
	return nil
}

type fakeNotifier struct {
	batches [][]model.VerifiedPosting
	err     error
}

func (f *fakeNotifier) Notify(postings []model.VerifiedPosting) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, postings)
	return nil
}

func verified(url string, score int) model.VerifiedPosting {
	return model.VerifiedPosting{
		Posting:        model.Posting{URL: url, Title: "ML Intern", Company: "Acme"},
		RelevanceScore: score,
		MatchReason:    "Role match",
		Duration:       "3 months",
		WorkMode:       model.WorkModeRemote,
	}
}

func TestGateSelectsAboveThreshold(t *testing.T) {
	store := &fakeStore{postings: []model.VerifiedPosting{
		verified("https://a.com/high", 80),
		verified("https://a.com/edge", 55),
		verified("https://a.com/low", 54),
	}}
	history := &fakeHistory{}
	notifier := &fakeNotifier{}
	gate := NewGate(store, history, notifier, 55, slog.Default())

	n, err := gate.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n != 2 {
		t.Errorf("notified = %d, want 2 (threshold is inclusive)", n)
	}
	if len(notifier.batches) != 1 || len(notifier.batches[0]) != 2 {
		t.Fatalf("expected one batch of 2, got %v", notifier.batches)
	}
	if len(history.appended) != 2 {
		t.Errorf("appended %d history entries, want 2", len(history.appended))
	}
}

func TestGateSkipsAlreadyNotified(t *testing.T) {
	store := &fakeStore{postings: []model.VerifiedPosting{
		verified("https://a.com/old", 90),
		verified("https://a.com/new", 70),
	}}
	history := &fakeHistory{seen: mapset.NewSet("https://a.com/old")}
	notifier := &fakeNotifier{}
	gate := NewGate(store, history, notifier, 55, slog.Default())

	n, err := gate.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n != 1 {
		t.Errorf("notified = %d, want 1", n)
	}
	if notifier.batches[0][0].URL != "https://a.com/new" {
		t.Errorf("notified %s, want the new posting", notifier.batches[0][0].URL)
	}
}

func TestGateNothingDueSendsNothing(t *testing.T) {
	store := &fakeStore{postings: []model.VerifiedPosting{
		verified("https://a.com/low", 30),
	}}
	history := &fakeHistory{}
	notifier := &fakeNotifier{}
	gate := NewGate(store, history, notifier, 55, slog.Default())

	n, err := gate.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if n != 0 {
		t.Errorf("notified = %d, want 0", n)
	}
	if len(notifier.batches) != 0 {
		t.Error("notifier must not be called with an empty batch")
	}
	if len(history.appended) != 0 {
		t.Error("history must stay untouched when nothing is due")
	}
}

func TestGateDispatchFailureSkipsHistory(t *testing.T) {
	store := &fakeStore{postings: []model.VerifiedPosting{
		verified("https://a.com/1", 80),
	}}
	history := &fakeHistory{}
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	gate := NewGate(store, history, notifier, 55, slog.Default())

	if _, err := gate.Run(); err == nil {
		t.Fatal("expected dispatch failure to surface")
	}
	if len(history.appended) != 0 {
		t.Error("history must stay untouched after a failed dispatch")
	}
}

func TestGateStoreErrorIsFatal(t *testing.T) {
	store := &fakeStore{err: errors.New("db locked")}
	gate := NewGate(store, &fakeHistory{}, &fakeNotifier{}, 55, slog.Default())

	if _, err := gate.Run(); err == nil {
		t.Fatal("expected store failure to surface")
	}
}
