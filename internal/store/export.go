package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

var exportHeader = []string{
	"url", "title", "company", "location", "date_posted", "source_site",
	"relevance_score", "match_reason", "duration", "work_mode",
}

// ExportCSV writes verified postings to a CSV file at path, ordered as given.
// The file is replaced on each export so it always mirrors the store.
func ExportCSV(path string, postings []model.VerifiedPosting) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		return fmt.Errorf("writing export header: %w", err)
	}

	for _, p := range postings {
		datePosted := ""
		if p.DatePosted != nil {
			datePosted = p.DatePosted.Format("2006-01-02")
		}
		record := []string{
			p.URL, p.Title, p.Company, p.Location, datePosted, p.SourceSite,
			strconv.Itoa(p.RelevanceScore), p.MatchReason, p.Duration, string(p.WorkMode),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing export row for %s: %w", p.URL, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing export: %w", err)
	}
	return nil
}
