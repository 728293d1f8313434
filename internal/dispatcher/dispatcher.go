// Package dispatcher issues fetches without blocking the caller and reports
// each outcome back as a completion message.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/vnykmshr/goflow/pkg/ratelimit/bucket"
	"golang.org/x/sync/semaphore"

	"github.com/vnykmshr/skitter/internal/crawler"
	"github.com/vnykmshr/skitter/internal/domain"
	"github.com/vnykmshr/skitter/internal/util"
)

// Config controls the dispatcher's capacity.
type Config struct {
	// PoolSize bounds how many completions are processed at once.
	// 0 means one slot per CPU.
	PoolSize int
	// MaxInFlight is the most fetches the caller will have outstanding. It
	// sizes the completion buffer so that completions never block.
	MaxInFlight int
	// Rate limits fetches per second. 0 disables rate limiting.
	Rate float64
}

// Dispatcher runs each fetch on its own goroutine and processes the
// response on a bounded worker pool before reporting a Completion.
type Dispatcher struct {
	fetcher     domain.Fetcher
	pool        *semaphore.Weighted
	limiter     domain.RateLimiter
	logger      *slog.Logger
	completions chan domain.Completion
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRateLimiter replaces the token bucket built from Config.Rate.
func WithRateLimiter(l domain.RateLimiter) Option {
	return func(d *Dispatcher) {
		d.limiter = l
	}
}

// New creates a dispatcher around fetcher.
func New(fetcher domain.Fetcher, cfg Config, logger *slog.Logger, opts ...Option) (*Dispatcher, error) {
	if cfg.MaxInFlight <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidMaxConnections, cfg.MaxInFlight)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}

	d := &Dispatcher{
		fetcher:     fetcher,
		pool:        semaphore.NewWeighted(int64(poolSize)),
		logger:      logger,
		completions: make(chan domain.Completion, cfg.MaxInFlight),
	}

	if cfg.Rate > 0 {
		// Burst capacity of 2x the rate per second
		burst := int(cfg.Rate * 2)
		if burst < 1 {
			burst = 1
		}

		limiter, err := bucket.NewSafe(bucket.Limit(cfg.Rate), burst)
		if err != nil {
			return nil, fmt.Errorf("creating rate limiter: %w", err)
		}
		d.limiter = limiter
	}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Completions delivers exactly one message per Dispatch call.
func (d *Dispatcher) Completions() <-chan domain.Completion {
	return d.completions
}

// Dispatch starts fetching url and returns immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, url string) {
	go func() {
		d.completions <- d.process(ctx, url)
	}()
}

// Release closes idle transport connections. Fetches still running are not
// canceled.
func (d *Dispatcher) Release() {
	d.fetcher.Close()
}

func (d *Dispatcher) process(ctx context.Context, url string) domain.Completion {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return domain.Completion{URL: url, Err: fmt.Errorf("rate limiter wait canceled: %w", err)}
		}
	}

	start := time.Now()
	resp, err := d.fetcher.Fetch(ctx, url)
	elapsed := time.Since(start)

	if err != nil {
		return domain.Completion{URL: url, Err: err, Duration: elapsed}
	}
	if resp == nil {
		return domain.Completion{URL: url, Err: domain.ErrNoResponse, Duration: elapsed}
	}

	completion := domain.Completion{URL: url, StatusCode: resp.StatusCode, Duration: elapsed}
	if completion.Failed() {
		return completion
	}

	// Link discovery competes for pool slots, not for network capacity.
	if err := d.pool.Acquire(ctx, 1); err != nil {
		completion.Err = fmt.Errorf("waiting for worker: %w", err)
		return completion
	}
	defer d.pool.Release(1)

	completion.Links = crawler.Discover(resp.Body, url)

	d.logger.Debug("Page processed",
		"url", util.RedactURL(url),
		"status", resp.StatusCode,
		"response_time", elapsed,
		"links_found", len(completion.Links))

	return completion
}
