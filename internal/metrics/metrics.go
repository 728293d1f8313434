// Package metrics exposes crawl counters as Prometheus collectors.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "skitter"

// Collector groups the crawl metrics on a dedicated registry.
type Collector struct {
	registry        *prometheus.Registry
	pagesFetched    prometheus.Counter
	serverErrors    prometheus.Counter
	linksDiscovered prometheus.Counter
	inFlight        prometheus.Gauge
	fetchDuration   prometheus.Histogram
}

// New creates a collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		pagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Number of completed fetches, successful or not.",
		}),
		serverErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "server_errors_total",
			Help:      "Number of fetches that failed or returned a 5xx status.",
		}),
		linksDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_discovered_total",
			Help:      "Number of new URLs added to the frontier.",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "in_flight",
			Help:      "Number of fetches dispatched but not completed.",
		}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time taken by the transport to return a response.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	c.registry.MustRegister(c.pagesFetched, c.serverErrors, c.linksDiscovered, c.inFlight, c.fetchDuration)
	return c
}

// ObserveFetch records a completed fetch and its duration.
func (c *Collector) ObserveFetch(d time.Duration, failed bool) {
	c.pagesFetched.Inc()
	c.fetchDuration.Observe(d.Seconds())
	if failed {
		c.serverErrors.Inc()
	}
}

// AddDiscovered counts n URLs newly offered to the frontier.
func (c *Collector) AddDiscovered(n int) {
	if n > 0 {
		c.linksDiscovered.Add(float64(n))
	}
}

// SetInFlight updates the in-flight gauge.
func (c *Collector) SetInFlight(n int) {
	c.inFlight.Set(float64(n))
}

// Registry returns the underlying registry, e.g. for an HTTP handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes the current metrics in the text exposition format,
// suitable for the node exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}
