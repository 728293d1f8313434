// Package testutil provides shared test fixtures and utilities for use across test files.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vnykmshr/skitter/internal/domain"
)

// SampleReport returns a complete crawl report fixture for use in tests.
// This is the standard fixture used across multiple test files.
func SampleReport() *domain.CrawlReport {
	return &domain.CrawlReport{
		RunID:      uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2"),
		StartedAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		RootURL:    "http://example.com",
		StopReason: domain.StopDrained,
		VisitedURLs: []string{
			"http://example.com",
			"http://example.com/about",
			"http://example.com/error",
			"http://example.com/products",
		},
		Failures: []domain.FailureInfo{
			{URL: "http://example.com/error", StatusCode: 503},
		},
		Duration:       1500 * time.Millisecond,
		DurationMillis: 1500,
		ServerErrors:   1,
	}
}

// EmptyReport returns a report for a crawl that visited nothing but the root.
func EmptyReport() *domain.CrawlReport {
	return &domain.CrawlReport{
		RootURL:     "http://example.com",
		StopReason:  domain.StopDrained,
		VisitedURLs: []string{"http://example.com"},
	}
}

// Page describes one page served by a Site.
type Page struct {
	// Status defaults to 200.
	Status int
	// Links are written as href attributes in document order.
	Links []string
}

// Site is an httptest server serving a fixed link graph. Paths that are
// not in the graph return 404.
type Site struct {
	*httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

// NewSite starts a server for pages keyed by path and closes it when the
// test finishes.
func NewSite(t *testing.T, pages map[string]Page) *Site {
	t.Helper()

	site := &Site{hits: make(map[string]int)}
	site.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "" {
			path = "/"
		}

		site.mu.Lock()
		site.hits[path]++
		site.mu.Unlock()

		page, ok := pages[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<html><body><h1>404 Not Found</h1></body></html>`))
			return
		}

		status := page.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(RenderPage(path, page.Links)))
	}))
	t.Cleanup(site.Close)

	return site
}

// Hits returns how many requests were made for path.
func (s *Site) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// Link returns the absolute URL of path on the site.
func (s *Site) Link(path string) string {
	if path == "/" {
		return s.Server.URL
	}
	return s.Server.URL + path
}

// RenderPage builds a minimal HTML page linking to links.
func RenderPage(title string, links []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><head><title>%s</title></head><body>\n", title)
	for _, link := range links {
		fmt.Fprintf(&b, "<a href=\"%s\">%s</a>\n", link, link)
	}
	b.WriteString("</body></html>")
	return b.String()
}
