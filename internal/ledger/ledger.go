// Package ledger tracks which postings have already been audited, with
// timestamps, and expires entries after a retention window. The purge runs
// at the start of every batch (purge-then-use), so the state is self-healing
// and no separate sweep process exists.
package ledger

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	_ "modernc.org/sqlite"
)

// SQLiteLedger records audited posting URLs in a SQLite database.
type SQLiteLedger struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteLedger opens (or creates) a SQLite database at dbPath and ensures
// the processed_jobs table exists.
func NewSQLiteLedger(dbPath string, logger *slog.Logger) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging ledger db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS processed_jobs (
		url          TEXT PRIMARY KEY,
		processed_at DATETIME NOT NULL,
		first_seen   DATETIME NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating processed_jobs table: %w", err)
	}

	return &SQLiteLedger{db: db, logger: logger}, nil
}

// PurgeAndList deletes entries whose processed_at is older than the retention
// window, then returns the surviving URLs. A read failure fails open: the
// ledger reports an empty set so postings are re-audited rather than dropped.
func (l *SQLiteLedger) PurgeAndList(retention time.Duration) (mapset.Set[string], error) {
	survivors := mapset.NewSet[string]()
	cutoff := time.Now().Add(-retention)

	res, err := l.db.Exec("DELETE FROM processed_jobs WHERE processed_at < ?", cutoff)
	if err != nil {
		l.logger.Warn("ledger purge failed, treating as empty", "error", err)
		return survivors, nil
	}
	if removed, err := res.RowsAffected(); err == nil && removed > 0 {
		l.logger.Info("purged expired ledger entries", "removed", removed)
	}

	rows, err := l.db.Query("SELECT url FROM processed_jobs")
	if err != nil {
		l.logger.Warn("ledger read failed, treating as empty", "error", err)
		return mapset.NewSet[string](), nil
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			l.logger.Warn("ledger scan failed, treating as empty", "error", err)
			return mapset.NewSet[string](), nil
		}
		survivors.Add(url)
	}
	if err := rows.Err(); err != nil {
		l.logger.Warn("ledger iteration failed, treating as empty", "error", err)
		return mapset.NewSet[string](), nil
	}

	return survivors, nil
}

// Record inserts an entry per URL with processed_at = first_seen = now.
// URLs already present are left untouched, so re-recording never loses the
// original discovery time. Write failures are real errors: the caller must
// know the ledger did not commit.
func (l *SQLiteLedger) Record(urls []string, now time.Time) error {
	if len(urls) == 0 {
		return nil
	}

	tx, err := l.db.Begin()
	if err != nil {
		return fmt.Errorf("begin ledger record: %w", err)
	}

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO processed_jobs (url, processed_at, first_seen) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare ledger record: %w", err)
	}
	defer stmt.Close()

	for _, url := range urls {
		if _, err := stmt.Exec(url, now, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording %s: %w", url, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger record: %w", err)
	}
	return nil
}

// FirstSeen returns the first discovery time for a URL, if present.
func (l *SQLiteLedger) FirstSeen(url string) (time.Time, bool, error) {
	var t time.Time
	err := l.db.QueryRow("SELECT first_seen FROM processed_jobs WHERE url = ?", url).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("reading first_seen for %s: %w", url, err)
	}
	return t, true, nil
}

// Close closes the underlying database connection.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
