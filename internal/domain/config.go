package domain

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Config represents the complete crawl configuration as read from a
// configuration file and command-line flags.
type Config struct {
	RootURL                       string  `json:"root_url" yaml:"root_url"`
	ThreadPoolSize                int     `json:"thread_pool_size" yaml:"thread_pool_size"`
	MaxConnections                int     `json:"max_connections" yaml:"max_connections"`
	AllowedServerErrorsPercentage int     `json:"allowed_server_errors_percentage" yaml:"allowed_server_errors_percentage"`
	ConnectTimeoutMs              int     `json:"connect_timeout_ms" yaml:"connect_timeout_ms"`
	ReadTimeoutMs                 int     `json:"read_timeout_ms" yaml:"read_timeout_ms"`
	RequestTimeoutMs              int     `json:"request_timeout_ms" yaml:"request_timeout_ms"`
	HandshakeTimeoutMs            int     `json:"handshake_timeout_ms" yaml:"handshake_timeout_ms"`
	UserAgent                     string  `json:"user_agent" yaml:"user_agent"`
	Rate                          float64 `json:"rate" yaml:"rate"`
	MaxDuration                   string  `json:"max_duration,omitempty" yaml:"max_duration,omitempty"`
	AllowPrivateIPs               bool    `json:"allow_private_ips" yaml:"allow_private_ips"`
	OutputFile                    string  `json:"output_file,omitempty" yaml:"output_file,omitempty"`
	MarkdownFile                  string  `json:"markdown_file,omitempty" yaml:"markdown_file,omitempty"`
	MetricsFile                   string  `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
	Verbose                       bool    `json:"verbose" yaml:"verbose"`
}

// CrawlerConfig is the resolved configuration consumed by the scheduler,
// the dispatcher and the HTTP fetcher.
type CrawlerConfig struct {
	RootURL string
	// PoolSize bounds concurrent completion processing. 0 means one slot per CPU.
	PoolSize int
	// MaxConnections bounds the number of fetches in flight.
	MaxConnections int
	// AllowedServerErrorsPercentage is the error rate (0-100) at which the crawl stops.
	AllowedServerErrorsPercentage int
	ConnectTimeout                time.Duration
	ReadTimeout                   time.Duration
	RequestTimeout                time.Duration
	HandshakeTimeout              time.Duration
	UserAgent                     string
	// Rate limits fetches per second. 0 disables rate limiting.
	Rate float64
}

// Default configuration values.
const (
	DefaultMaxConnections                = 10
	DefaultAllowedServerErrorsPercentage = 10
	DefaultConnectTimeoutMs              = 5000
	DefaultReadTimeoutMs                 = 10000
	DefaultRequestTimeoutMs              = 30000
	DefaultHandshakeTimeoutMs            = 5000
	DefaultUserAgent                     = "Skitter/1.0"
)

// DefaultConfig returns a sensible default configuration. The root URL has
// no default and must always be supplied.
func DefaultConfig() Config {
	return Config{
		ThreadPoolSize:                0,
		MaxConnections:                DefaultMaxConnections,
		AllowedServerErrorsPercentage: DefaultAllowedServerErrorsPercentage,
		ConnectTimeoutMs:              DefaultConnectTimeoutMs,
		ReadTimeoutMs:                 DefaultReadTimeoutMs,
		RequestTimeoutMs:              DefaultRequestTimeoutMs,
		HandshakeTimeoutMs:            DefaultHandshakeTimeoutMs,
		UserAgent:                     DefaultUserAgent,
	}
}

// Validate reports every problem with the crawler configuration at once.
func (c CrawlerConfig) Validate() error {
	var err error

	if c.RootURL == "" {
		err = multierror.Append(err, ErrNoRootURL)
	}
	if c.PoolSize < 0 {
		err = multierror.Append(err, ErrInvalidPoolSize)
	}
	if c.MaxConnections <= 0 {
		err = multierror.Append(err, ErrInvalidMaxConnections)
	}
	if c.AllowedServerErrorsPercentage < 0 || c.AllowedServerErrorsPercentage > 100 {
		err = multierror.Append(err, fmt.Errorf("%w: got %d", ErrInvalidErrorPercentage, c.AllowedServerErrorsPercentage))
	}
	timeouts := []struct {
		name string
		d    time.Duration
	}{
		{"connect", c.ConnectTimeout},
		{"read", c.ReadTimeout},
		{"request", c.RequestTimeout},
		{"handshake", c.HandshakeTimeout},
	}
	for _, t := range timeouts {
		if t.d < 0 {
			err = multierror.Append(err, fmt.Errorf("%w: %s timeout %s", ErrInvalidTimeout, t.name, t.d))
		}
	}
	if c.Rate < 0 {
		err = multierror.Append(err, ErrInvalidRate)
	}

	return err
}
