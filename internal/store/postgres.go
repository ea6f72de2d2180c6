package store

import (
	"context"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

// PostgresStore is the Postgres-backed counterpart of SQLiteStore, for
// deployments where several machines share one verified set.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres using databaseURL, verifies the
// connection, and ensures the verified_jobs and email_history tables exist.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS verified_jobs (
			url             TEXT PRIMARY KEY,
			title           TEXT NOT NULL,
			company         TEXT NOT NULL,
			location        TEXT,
			description     TEXT,
			date_posted     TIMESTAMPTZ,
			source_site     TEXT,
			relevance_score INT NOT NULL,
			match_reason    TEXT,
			duration        TEXT,
			work_mode       TEXT,
			saved_at        TIMESTAMPTZ DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS email_history (
			url     TEXT PRIMARY KEY,
			sent_at TIMESTAMPTZ DEFAULT now()
		)`,
	}
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("creating store tables: %w", err)
		}
	}

	return &PostgresStore{pool: pool}, nil
}

// Save upserts verified postings keyed by URL.
func (s *PostgresStore) Save(postings []model.VerifiedPosting) error {
	if len(postings) == 0 {
		return nil
	}

	ctx := context.Background()
	batch := &pgx.Batch{}
	upsert := `INSERT INTO verified_jobs
		(url, title, company, location, description, date_posted, source_site,
		 relevance_score, match_reason, duration, work_mode)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			company = EXCLUDED.company,
			location = EXCLUDED.location,
			description = EXCLUDED.description,
			date_posted = EXCLUDED.date_posted,
			source_site = EXCLUDED.source_site,
			relevance_score = EXCLUDED.relevance_score,
			match_reason = EXCLUDED.match_reason,
			duration = EXCLUDED.duration,
			work_mode = EXCLUDED.work_mode`
	for _, p := range postings {
		batch.Queue(upsert, p.URL, p.Title, p.Company, p.Location, p.Description,
			p.DatePosted, p.SourceSite, p.RelevanceScore, p.MatchReason,
			p.Duration, string(p.WorkMode))
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("saving verified jobs: %w", err)
	}
	return nil
}

// ListByScore returns all verified postings ordered by relevance score,
// highest first.
func (s *PostgresStore) ListByScore() ([]model.VerifiedPosting, error) {
	ctx := context.Background()
	rows, err := s.pool.Query(ctx, `SELECT url, title, company, location, description,
		date_posted, source_site, relevance_score, match_reason, duration, work_mode
		FROM verified_jobs ORDER BY relevance_score DESC, saved_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing verified jobs: %w", err)
	}
	defer rows.Close()

	var out []model.VerifiedPosting
	for rows.Next() {
		var p model.VerifiedPosting
		var datePosted *time.Time
		var workMode string
		err := rows.Scan(&p.URL, &p.Title, &p.Company, &p.Location, &p.Description,
			&datePosted, &p.SourceSite, &p.RelevanceScore, &p.MatchReason,
			&p.Duration, &workMode)
		if err != nil {
			return nil, fmt.Errorf("scanning verified job: %w", err)
		}
		p.DatePosted = datePosted
		p.WorkMode = model.WorkMode(workMode)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating verified jobs: %w", err)
	}
	return out, nil
}

// All returns the set of URLs already notified.
func (s *PostgresStore) All() (mapset.Set[string], error) {
	ctx := context.Background()
	rows, err := s.pool.Query(ctx, "SELECT url FROM email_history")
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

// Append records URLs as notified.
func (s *PostgresStore) Append(urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	ctx := context.Background()
	batch := &pgx.Batch{}
	for _, url := range urls {
		batch.Queue("INSERT INTO email_history (url) VALUES ($1) ON CONFLICT (url) DO NOTHING", url)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("appending to email history: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
