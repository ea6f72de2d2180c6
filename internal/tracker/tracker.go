// Package tracker keeps the application funnel: every posting that made it
// into a dispatched digest gets a row whose status the user advances as they
// apply and interview.
package tracker

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

// Status is the stage an application is in.
type Status string

const (
	StatusNotApplied   Status = "Not Applied"
	StatusApplied      Status = "Applied"
	StatusOngoing      Status = "Ongoing"
	StatusInterviewing Status = "Interviewing"
	StatusSelected     Status = "Got Selected"
	StatusRejected     Status = "Rejected"
)

// Statuses lists all stages in funnel order.
var Statuses = []Status{
	StatusNotApplied,
	StatusApplied,
	StatusOngoing,
	StatusInterviewing,
	StatusSelected,
	StatusRejected,
}

// Next returns the status after s in the funnel, wrapping back to the start.
func (s Status) Next() Status {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusNotApplied
}

// Application is one tracked posting.
type Application struct {
	URL      string
	Company  string
	Role     string
	WorkMode model.WorkMode
	Duration string
	Score    int
	Status   Status
	FoundAt  time.Time
}

// Tracker stores applications in a SQLite database.
type Tracker struct {
	db *sql.DB
}

// New opens (or creates) the tracker database at dbPath and ensures the
// applications table exists.
func New(dbPath string) (*Tracker, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening tracker db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging tracker db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS applications (
		url       TEXT PRIMARY KEY,
		company   TEXT NOT NULL,
		role      TEXT NOT NULL,
		work_mode TEXT,
		duration  TEXT,
		score     INTEGER NOT NULL,
		status    TEXT NOT NULL DEFAULT 'Not Applied',
		found_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating applications table: %w", err)
	}

	return &Tracker{db: db}, nil
}

// Track adds rows for postings not yet tracked, all starting at Not Applied.
// Postings already present keep their status.
func (t *Tracker) Track(postings []model.VerifiedPosting) error {
	if len(postings) == 0 {
		return nil
	}

	tx, err := t.db.Begin()
	if err != nil {
		return fmt.Errorf("begin track: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO applications
		(url, company, role, work_mode, duration, score) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare track: %w", err)
	}
	defer stmt.Close()

	for _, p := range postings {
		_, err := stmt.Exec(p.URL, p.Company, p.Title, string(p.WorkMode), p.Duration, p.RelevanceScore)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("tracking %s: %w", p.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit track: %w", err)
	}
	return nil
}

// List returns all tracked applications, newest first, score as tiebreak.
func (t *Tracker) List() ([]Application, error) {
	rows, err := t.db.Query(`SELECT url, company, role, work_mode, duration, score, status, found_at
		FROM applications ORDER BY found_at DESC, score DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		var a Application
		var workMode, status string
		if err := rows.Scan(&a.URL, &a.Company, &a.Role, &workMode, &a.Duration,
			&a.Score, &status, &a.FoundAt); err != nil {
			return nil, fmt.Errorf("scanning application: %w", err)
		}
		a.WorkMode = model.WorkMode(workMode)
		a.Status = Status(status)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating applications: %w", err)
	}
	return out, nil
}

// SetStatus updates the status of the application with the given URL.
func (t *Tracker) SetStatus(url string, status Status) error {
	res, err := t.db.Exec("UPDATE applications SET status = ? WHERE url = ?", string(status), url)
	if err != nil {
		return fmt.Errorf("updating status for %s: %w", url, err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("no application tracked for %s", url)
	}
	return nil
}

// Close closes the underlying database connection.
func (t *Tracker) Close() error {
	return t.db.Close()
}
