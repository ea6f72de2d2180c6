package ledger

import (
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func newTestLedger(t *testing.T) *SQLiteLedger {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	l, err := NewSQLiteLedger(dbPath, slog.Default())
	if err != nil {
		t.Fatalf("NewSQLiteLedger() error = %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndList(t *testing.T) {
	l := newTestLedger(t)

	now := time.Now()
	if err := l.Record([]string{"https://a.com/1", "https://a.com/2"}, now); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	seen, err := l.PurgeAndList(7 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("PurgeAndList() error = %v", err)
	}
	if seen.Cardinality() != 2 {
		t.Errorf("expected 2 entries, got %d", seen.Cardinality())
	}
	if !seen.Contains("https://a.com/1") {
		t.Error("expected ledger to contain https://a.com/1")
	}
}

func TestRecordEmptyIsNoop(t *testing.T) {
	l := newTestLedger(t)

	if err := l.Record(nil, time.Now()); err != nil {
		t.Fatalf("Record(nil) error = %v", err)
	}

	seen, err := l.PurgeAndList(time.Hour)
	if err != nil {
		t.Fatalf("PurgeAndList() error = %v", err)
	}
	if seen.Cardinality() != 0 {
		t.Errorf("expected empty ledger, got %d entries", seen.Cardinality())
	}
}

func TestRecordPreservesFirstSeen(t *testing.T) {
	l := newTestLedger(t)

	url := "https://a.com/1"
	first := time.Now().Add(-48 * time.Hour)
	if err := l.Record([]string{url}, first); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := l.Record([]string{url}, time.Now()); err != nil {
		t.Fatalf("re-Record() error = %v", err)
	}

	got, ok, err := l.FirstSeen(url)
	if err != nil {
		t.Fatalf("FirstSeen() error = %v", err)
	}
	if !ok {
		t.Fatal("expected entry to exist")
	}
	if got.Sub(first).Abs() > time.Second {
		t.Errorf("first_seen = %v, want %v", got, first)
	}
}

func TestPurgeRemovesExpired(t *testing.T) {
	l := newTestLedger(t)

	now := time.Now()
	if err := l.Record([]string{"https://a.com/fresh"}, now); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	// Back-date a row past the retention window.
	old := now.Add(-8 * 24 * time.Hour)
	_, err := l.db.Exec("INSERT INTO processed_jobs (url, processed_at, first_seen) VALUES (?, ?, ?)",
		"https://a.com/stale", old, old)
	if err != nil {
		t.Fatalf("inserting stale row: %v", err)
	}

	seen, err := l.PurgeAndList(7 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("PurgeAndList() error = %v", err)
	}
	if seen.Contains("https://a.com/stale") {
		t.Error("expected stale entry to be purged")
	}
	if !seen.Contains("https://a.com/fresh") {
		t.Error("expected fresh entry to survive")
	}

	var count int
	if err := l.db.QueryRow("SELECT COUNT(*) FROM processed_jobs").Scan(&count); err != nil {
		t.Fatalf("counting rows: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row after purge, got %d", count)
	}
}

func TestReadFailureFailsOpen(t *testing.T) {
	l := newTestLedger(t)
	l.db.Close()
	l.db, _ = sql.Open("sqlite", filepath.Join(t.TempDir(), "missing", "nope.db"))

	seen, err := l.PurgeAndList(time.Hour)
	if err != nil {
		t.Fatalf("PurgeAndList() should fail open, got error %v", err)
	}
	if seen.Cardinality() != 0 {
		t.Errorf("expected empty set on read failure, got %d", seen.Cardinality())
	}
}

func TestFirstSeenMissing(t *testing.T) {
	l := newTestLedger(t)

	_, ok, err := l.FirstSeen("https://a.com/none")
	if err != nil {
		t.Fatalf("FirstSeen() error = %v", err)
	}
	if ok {
		t.Error("expected ok = false for missing url")
	}
}
