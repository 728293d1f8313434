// Package domain defines core domain types and interfaces for the crawler.
package domain

import "context"

//go:generate mockgen -destination=mocks/mock_domain.go -package=mock_domain github.com/vnykmshr/skitter/internal/domain Fetcher,RateLimiter

// Fetcher is the transport used to retrieve pages. Implementations own
// connection pooling, TLS, redirects and timeouts.
type Fetcher interface {
	// Fetch performs a GET request for url. A non-nil error means no
	// response was obtained.
	Fetch(ctx context.Context, url string) (*Response, error)

	// Close releases idle connections held by the transport.
	Close()
}

// RateLimiter defines the interface for rate limiting concurrent requests.
// Implementations control request throughput using token bucket or similar algorithms.
type RateLimiter interface {
	// Wait blocks until a token is available or the context is canceled.
	// Returns an error if the context is canceled or times out.
	Wait(ctx context.Context) error
}
