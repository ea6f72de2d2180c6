// Package store persists verified postings and the notification history.
// The default backend is SQLite; a Postgres backend exists for shared
// deployments and a no-op backend for dry runs.
package store

import (
	"database/sql"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	_ "modernc.org/sqlite"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

// SQLiteStore keeps verified postings and the email history in a SQLite
// database. It implements both model.VerifiedStore and model.History.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the verified_jobs and email_history tables exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS verified_jobs (
			url             TEXT PRIMARY KEY,
			title           TEXT NOT NULL,
			company         TEXT NOT NULL,
			location        TEXT,
			description     TEXT,
			date_posted     DATETIME,
			source_site     TEXT,
			relevance_score INTEGER NOT NULL,
			match_reason    TEXT,
			duration        TEXT,
			work_mode       TEXT,
			saved_at        DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS email_history (
			url      TEXT PRIMARY KEY,
			sent_at  DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating store tables: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Save upserts verified postings keyed by URL. Re-saving a URL replaces its
// score and metadata, so a re-audit after ledger expiry refreshes the row.
func (s *SQLiteStore) Save(postings []model.VerifiedPosting) error {
	if len(postings) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}

	upsert := `INSERT INTO verified_jobs
		(url, title, company, location, description, date_posted, source_site,
		 relevance_score, match_reason, duration, work_mode)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			company = excluded.company,
			location = excluded.location,
			description = excluded.description,
			date_posted = excluded.date_posted,
			source_site = excluded.source_site,
			relevance_score = excluded.relevance_score,
			match_reason = excluded.match_reason,
			duration = excluded.duration,
			work_mode = excluded.work_mode`
	stmt, err := tx.Prepare(upsert)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare save: %w", err)
	}
	defer stmt.Close()

	for _, p := range postings {
		_, err := stmt.Exec(p.URL, p.Title, p.Company, p.Location, p.Description,
			p.DatePosted, p.SourceSite, p.RelevanceScore, p.MatchReason,
			p.Duration, string(p.WorkMode))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("saving %s: %w", p.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// ListByScore returns all verified postings ordered by relevance score,
// highest first. Ties keep insertion order.
func (s *SQLiteStore) ListByScore() ([]model.VerifiedPosting, error) {
	rows, err := s.db.Query(`SELECT url, title, company, location, description,
		date_posted, source_site, relevance_score, match_reason, duration, work_mode
		FROM verified_jobs ORDER BY relevance_score DESC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing verified jobs: %w", err)
	}
	defer rows.Close()

	var out []model.VerifiedPosting
	for rows.Next() {
		var p model.VerifiedPosting
		var datePosted sql.NullTime
		var location, description, sourceSite, matchReason, duration, workMode sql.NullString
		err := rows.Scan(&p.URL, &p.Title, &p.Company, &location, &description,
			&datePosted, &sourceSite, &p.RelevanceScore, &matchReason, &duration, &workMode)
		if err != nil {
			return nil, fmt.Errorf("scanning verified job: %w", err)
		}
		p.Location = location.String
		p.Description = description.String
		p.SourceSite = sourceSite.String
		p.MatchReason = matchReason.String
		p.Duration = duration.String
		p.WorkMode = model.WorkMode(workMode.String)
		if datePosted.Valid {
			dp := datePosted.Time
			p.DatePosted = &dp
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating verified jobs: %w", err)
	}
	return out, nil
}

// All returns the set of URLs already notified.
func (s *SQLiteStore) All() (mapset.Set[string], error) {
	rows, err := s.db.Query("SELECT url FROM email_history")
	if err != nil {
		return nil, fmt.Errorf("reading email history: %w", err)
	}
	defer rows.Close()

	history := mapset.NewSet[string]()
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scanning email history: %w", err)
		}
		history.Add(url)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating email history: %w", err)
	}
	return history, nil
}

// Append records URLs as notified. Already-recorded URLs are left untouched,
// keeping their original sent_at.
func (s *SQLiteStore) Append(urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin history append: %w", err)
	}
	stmt, err := tx.Prepare("INSERT OR IGNORE INTO email_history (url, sent_at) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare history append: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, url := range urls {
		if _, err := stmt.Exec(url, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("appending %s to history: %w", url, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history append: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
