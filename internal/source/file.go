// Package source supplies raw posting batches for an audit run, either from
// a scraper-produced file on disk or from an HTTP bridge endpoint.
package source

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

// Ensure FileSource implements model.PostingSource.
var _ model.PostingSource = (*FileSource)(nil)

// filePosting is the on-disk JSON shape of one raw posting. Field names follow
// the scraper's CSV header.
type filePosting struct {
	JobURL      string `json:"job_url"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	DatePosted  string `json:"date_posted"`
	Site        string `json:"site"`
}

// FileSource reads a raw posting batch from a JSON or CSV file. The format is
// picked by file extension.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading from the given file.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// FetchPostings reads and parses the batch file. Records without a
// description are dropped here; they cannot be classified or scored.
func (s *FileSource) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening batch file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".json":
		return parseJSON(f)
	case ".csv":
		return parseCSV(f)
	default:
		return nil, fmt.Errorf("unsupported batch file format %q", filepath.Ext(s.path))
	}
}

func parseJSON(r io.Reader) ([]model.Posting, error) {
	var raw []filePosting
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding batch json: %w", err)
	}

	var out []model.Posting
	for _, fp := range raw {
		if fp.Description == "" {
			continue
		}
		out = append(out, toPosting(fp))
	}
	return out, nil
}

func parseCSV(r io.Reader) ([]model.Posting, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // scraper output carries extra columns

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading batch csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"job_url", "title", "company", "description"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("batch csv missing %q column", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var out []model.Posting
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading batch csv: %w", err)
		}
		fp := filePosting{
			JobURL:      field(record, "job_url"),
			Title:       field(record, "title"),
			Company:     field(record, "company"),
			Location:    field(record, "location"),
			Description: field(record, "description"),
			DatePosted:  field(record, "date_posted"),
			Site:        field(record, "site"),
		}
		if fp.Description == "" {
			continue
		}
		out = append(out, toPosting(fp))
	}
	return out, nil
}

func toPosting(fp filePosting) model.Posting {
	p := model.Posting{
		URL:         fp.JobURL,
		Title:       fp.Title,
		Company:     fp.Company,
		Location:    fp.Location,
		Description: fp.Description,
		SourceSite:  fp.Site,
	}
	if fp.DatePosted != "" {
		if t, err := time.Parse("2006-01-02", fp.DatePosted); err == nil {
			p.DatePosted = &t
		}
	}
	return p
}
