// Package scheduler implements the crawl loop: it pulls URLs from the
// frontier, keeps the number of in-flight fetches bounded, feeds discovered
// links back into the frontier and decides when the crawl is over.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"

	"github.com/vnykmshr/skitter/internal/dispatcher"
	"github.com/vnykmshr/skitter/internal/domain"
	"github.com/vnykmshr/skitter/internal/fetcher"
	"github.com/vnykmshr/skitter/internal/frontier"
	"github.com/vnykmshr/skitter/internal/metrics"
	"github.com/vnykmshr/skitter/internal/util"
)

// DefaultProgressInterval is how often a progress line is logged.
const DefaultProgressInterval = 10 * time.Second

// ErrAlreadyRun is returned when Run is called a second time.
var ErrAlreadyRun = errors.New("scheduler has already run")

// Scheduler owns the crawl state. InFlight and the error count are only
// touched by the goroutine executing Run; workers report back through the
// dispatcher's completion channel.
type Scheduler struct {
	config           domain.CrawlerConfig
	frontier         *frontier.Frontier
	dispatcher       *dispatcher.Dispatcher
	clock            clock.Clock
	metrics          *metrics.Collector
	logger           *slog.Logger
	progressInterval time.Duration
	dispatcherOpts   []dispatcher.Option
	ran              atomic.Bool

	inFlight     int
	peakInFlight int
	errorCount   int
	failures     []domain.FailureInfo
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the clock used for timing the run and progress logs.
func WithClock(c clock.Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// WithProgressInterval sets how often progress is logged.
func WithProgressInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.progressInterval = d
	}
}

// WithDispatcherOptions passes options through to the dispatcher.
func WithDispatcherOptions(opts ...dispatcher.Option) Option {
	return func(s *Scheduler) {
		s.dispatcherOpts = append(s.dispatcherOpts, opts...)
	}
}

// New creates a scheduler that crawls with the given fetcher.
func New(config domain.CrawlerConfig, f domain.Fetcher, logger *slog.Logger, opts ...Option) (*Scheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid crawler configuration: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Scheduler{
		config:           config,
		frontier:         frontier.New(),
		clock:            clock.WallClock,
		logger:           logger,
		progressInterval: DefaultProgressInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}

	d, err := dispatcher.New(f, dispatcher.Config{
		PoolSize:    config.PoolSize,
		MaxInFlight: config.MaxConnections,
		Rate:        config.Rate,
	}, logger, s.dispatcherOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}
	s.dispatcher = d

	return s, nil
}

// Crawl builds an HTTP fetcher from config and runs a crawl to completion.
func Crawl(ctx context.Context, config domain.CrawlerConfig, logger *slog.Logger, opts ...Option) (*domain.CrawlReport, error) {
	s, err := New(config, fetcher.New(fetcher.ConfigFrom(config)), logger, opts...)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx)
}

// Run crawls from the root URL and blocks until the crawl stops. Reaching
// the error-rate threshold or canceling ctx still yields a report.
func (s *Scheduler) Run(ctx context.Context) (*domain.CrawlReport, error) {
	if !s.ran.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}

	runID := uuid.New()
	startTime := s.clock.Now()
	logger := s.logger.With("run_id", runID.String())

	logger.Info("Starting crawl",
		"root_url", util.RedactURL(s.config.RootURL),
		"max_connections", s.config.MaxConnections,
		"pool_size", s.config.PoolSize,
		"allowed_server_errors_percentage", s.config.AllowedServerErrorsPercentage)

	s.frontier.Seed(s.config.RootURL)
	reason := s.loop(ctx, logger)

	s.dispatcher.Release()
	duration := s.clock.Now().Sub(startTime)

	report := &domain.CrawlReport{
		RunID:          runID,
		RootURL:        s.config.RootURL,
		StartedAt:      startTime,
		StopReason:     reason,
		VisitedURLs:    s.frontier.Visited(),
		Failures:       s.failures,
		Duration:       duration,
		DurationMillis: duration.Milliseconds(),
		ServerErrors:   s.errorCount,
	}

	logger.Info("Crawler has finished",
		"visited", report.VisitedCount(),
		"duration_ms", report.DurationMillis,
		"server_errors", report.ServerErrors,
		"stop_reason", string(reason),
		"peak_in_flight", s.peakInFlight,
		"in_flight_abandoned", s.inFlight)

	return report, nil
}

func (s *Scheduler) loop(ctx context.Context, logger *slog.Logger) domain.StopReason {
	progress := s.clock.After(s.progressInterval)

	for {
		if reason, stop := s.shouldStop(); stop {
			return reason
		}

		s.fill(ctx, logger)

		if reason, stop := s.shouldStop(); stop {
			return reason
		}

		select {
		case c := <-s.dispatcher.Completions():
			s.complete(c, logger)
		case <-progress:
			s.logProgress(logger)
			progress = s.clock.After(s.progressInterval)
		case <-ctx.Done():
			return domain.StopCanceled
		}
	}
}

// fill dispatches queued URLs until the in-flight bound is reached or the
// frontier runs dry. Nothing is polled while at capacity, so no URL is ever
// dropped under backpressure.
func (s *Scheduler) fill(ctx context.Context, logger *slog.Logger) {
	for s.inFlight < s.config.MaxConnections {
		if ctx.Err() != nil {
			return
		}

		url, ok := s.frontier.Poll()
		if !ok {
			return
		}
		if !s.frontier.Admit(url) {
			logger.Debug("Discarding already visited URL", "url", util.RedactURL(url))
			continue
		}

		s.inFlight++
		if s.inFlight > s.peakInFlight {
			s.peakInFlight = s.inFlight
		}
		s.metrics.SetInFlight(s.inFlight)

		logger.Debug("Sending request", "url", util.RedactURL(url))
		s.dispatcher.Dispatch(ctx, url)
	}
}

func (s *Scheduler) complete(c domain.Completion, logger *slog.Logger) {
	s.inFlight--
	s.metrics.SetInFlight(s.inFlight)
	s.metrics.ObserveFetch(c.Duration, c.Failed())

	if c.Failed() {
		s.errorCount++
		failure := domain.FailureInfo{URL: c.URL, StatusCode: c.StatusCode}
		if c.Err != nil {
			failure.Error = c.Err.Error()
		}
		s.failures = append(s.failures, failure)

		logger.Debug("Fetch failed",
			"url", util.RedactURL(c.URL),
			"status", c.StatusCode,
			"error", failure.Error)
		return
	}

	added := 0
	for _, link := range c.Links {
		if s.frontier.Offer(link) {
			added++
		}
	}
	s.metrics.AddDiscovered(added)

	logger.Debug("URL processed",
		"url", util.RedactURL(c.URL),
		"status", c.StatusCode,
		"response_time", c.Duration,
		"links_found", len(c.Links),
		"links_queued", added)
}

// shouldStop evaluates the termination conditions. The error-rate check
// uses errors*100 >= allowed*visited to stay in integer arithmetic without
// truncating the ratio.
func (s *Scheduler) shouldStop() (domain.StopReason, bool) {
	visited := s.frontier.VisitedCount()
	if visited > 0 && s.errorCount > 0 &&
		s.errorCount*100 >= s.config.AllowedServerErrorsPercentage*visited {
		return domain.StopErrorRate, true
	}

	if s.inFlight == 0 && s.frontier.Len() == 0 {
		return domain.StopDrained, true
	}

	return "", false
}

// logProgress provides real-time progress updates
func (s *Scheduler) logProgress(logger *slog.Logger) {
	logger.Info("Progress update",
		"visited", s.frontier.VisitedCount(),
		"queue_size", s.frontier.Len(),
		"in_flight", s.inFlight,
		"server_errors", s.errorCount)
}
