package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

// Ensure HTTPSource implements model.PostingSource.
var _ model.PostingSource = (*HTTPSource)(nil)

// HTTPSource fetches a JSON posting batch from a scraper bridge endpoint.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a source fetching batches from url.
func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	return &HTTPSource{url: url, client: client}
}

// FetchPostings retrieves the batch and normalizes it into the Posting model.
// A 429 or 5xx response comes back as a model.HTTPError so the retry
// decorator can back off; other statuses are plain errors.
func (s *HTTPSource) FetchPostings(ctx context.Context) ([]model.Posting, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("batch fetch: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("batch fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("batch fetch: status %d", resp.StatusCode),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("batch fetch: unexpected status %d", resp.StatusCode)
	}

	var raw []filePosting
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("batch fetch: decoding response: %w", err)
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

func parseRetryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
