// Package fetcher implements the HTTP transport used by the crawler.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/vnykmshr/skitter/internal/domain"
)

// DefaultMaxBodySize limits how much of a response body is read.
const DefaultMaxBodySize = 10 * 1024 * 1024

// Config carries the transport settings. Zero timeouts mean no limit.
type Config struct {
	ConnectTimeout   time.Duration
	ReadTimeout      time.Duration
	RequestTimeout   time.Duration
	HandshakeTimeout time.Duration
	MaxConnections   int
	UserAgent        string
	MaxBodySize      int64
}

// ConfigFrom derives the transport settings from a crawler configuration.
func ConfigFrom(cfg domain.CrawlerConfig) Config {
	return Config{
		ConnectTimeout:   cfg.ConnectTimeout,
		ReadTimeout:      cfg.ReadTimeout,
		RequestTimeout:   cfg.RequestTimeout,
		HandshakeTimeout: cfg.HandshakeTimeout,
		MaxConnections:   cfg.MaxConnections,
		UserAgent:        cfg.UserAgent,
	}
}

// HTTPFetcher fetches pages over HTTP with keep-alive connections and
// redirect following.
type HTTPFetcher struct {
	client      *http.Client
	transport   *http.Transport
	userAgent   string
	maxBodySize int64
}

var _ domain.Fetcher = (*HTTPFetcher)(nil)

// New creates an HTTP fetcher.
func New(cfg Config) *HTTPFetcher {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   cfg.HandshakeTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		MaxConnsPerHost:       cfg.MaxConnections,
		MaxIdleConnsPerHost:   cfg.MaxConnections,
		IdleConnTimeout:       90 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	maxBody := cfg.MaxBodySize
	if maxBody <= 0 {
		maxBody = DefaultMaxBodySize
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.RequestTimeout,
		},
		transport:   transport,
		userAgent:   cfg.UserAgent,
		maxBodySize: maxBody,
	}
}

// Fetch performs a GET request and reads the body as text.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*domain.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return &domain.Response{StatusCode: resp.StatusCode, Body: string(body)}, nil
}

// Close releases idle keep-alive connections.
func (f *HTTPFetcher) Close() {
	f.transport.CloseIdleConnections()
}
