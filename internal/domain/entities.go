package domain

import (
	"time"

	"github.com/google/uuid"
)

// Response is what the transport hands back for a completed fetch.
type Response struct {
	// StatusCode is the HTTP status code returned by the server.
	StatusCode int
	// Body is the response body as text.
	Body string
}

// IsServerError reports whether status is in the 5xx range.
func IsServerError(status int) bool {
	return status >= 500 && status <= 599
}

// Completion is the message a dispatched fetch delivers back to the
// scheduler exactly once.
type Completion struct {
	// URL is the page that was fetched.
	URL string
	// Links are the same-origin URLs discovered on the page, in document order.
	Links []string
	// Err is set when no response was obtained.
	Err error
	// Duration is how long the fetch took.
	Duration time.Duration
	// StatusCode is 0 when the fetch failed at the transport level.
	StatusCode int
}

// Failed reports whether the completion counts against the error rate:
// a transport failure or a server error.
func (c Completion) Failed() bool {
	return c.Err != nil || IsServerError(c.StatusCode)
}

// StopReason describes why a crawl stopped.
type StopReason string

// Stop reasons.
const (
	// StopDrained means the frontier is empty and nothing is in flight.
	StopDrained StopReason = "drained"
	// StopErrorRate means the server error threshold was reached.
	StopErrorRate StopReason = "error_rate"
	// StopCanceled means the context was canceled before the crawl drained.
	StopCanceled StopReason = "canceled"
)

// FailureInfo records a fetch that counted as a server error.
type FailureInfo struct {
	// URL is the page that failed.
	URL string `json:"url"`
	// Error is the transport error message, empty for 5xx responses.
	Error string `json:"error,omitempty"`
	// StatusCode is the HTTP status returned (0 if the request failed).
	StatusCode int `json:"status_code"`
}

// CrawlReport is the immutable result of a crawl run.
type CrawlReport struct {
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
	// RootURL is the URL the crawl started from.
	RootURL string `json:"root_url"`
	// StopReason tells which termination condition ended the run.
	StopReason StopReason `json:"stop_reason"`
	// VisitedURLs holds every URL dispatched for fetch, sorted.
	VisitedURLs []string `json:"visited_urls"`
	// Failures lists the fetches counted in ServerErrors.
	Failures []FailureInfo `json:"failures"`
	// Duration is the elapsed wall-clock time.
	Duration time.Duration `json:"-"`
	// DurationMillis is Duration in milliseconds.
	DurationMillis int64 `json:"duration_ms"`
	// ServerErrors counts transport failures and 5xx responses.
	ServerErrors int `json:"server_errors"`
	// RunID identifies the run in logs and reports.
	RunID uuid.UUID `json:"run_id"`
}

// VisitedCount returns the number of distinct URLs dispatched.
func (r *CrawlReport) VisitedCount() int {
	return len(r.VisitedURLs)
}
