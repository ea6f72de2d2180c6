package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jobsniper-dev/jobsniper/internal/model"
)

func TestHTTPSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept header = %q", got)
		}
		w.Write([]byte(`[
			{"job_url": "https://a.com/1", "title": "ML Intern", "company": "Acme",
			 "description": "Work on ML models", "site": "linkedin"},
			{"job_url": "https://a.com/2", "title": "Empty", "company": "Globex", "description": ""}
		]`))
	}))
	defer srv.Close()

	postings, err := NewHTTPSource(srv.URL, srv.Client()).FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("FetchPostings() error = %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}
	if postings[0].URL != "https://a.com/1" {
		t.Errorf("url = %q", postings[0].URL)
	}
}

func TestHTTPSourceRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, srv.Client()).FetchPostings(context.Background())
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("err = %v, want *model.HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", httpErr.StatusCode)
	}
	if httpErr.RetryAfter != 30*time.Second {
		t.Errorf("retry after = %v, want 30s", httpErr.RetryAfter)
	}
}

func TestHTTPSourceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, srv.Client()).FetchPostings(context.Background())
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("err = %v, want *model.HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", httpErr.StatusCode)
	}
}

func TestHTTPSourceClientErrorIsPlain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, srv.Client()).FetchPostings(context.Background())
	if err == nil {
		t.Fatal("expected error for 404")
	}
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		t.Error("404 should not be a retryable HTTPError")
	}
}

func TestHTTPSourceBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	if _, err := NewHTTPSource(srv.URL, srv.Client()).FetchPostings(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}
