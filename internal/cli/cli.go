// Package cli provides command-line interface utilities for the skitter tool.
// It holds configuration loading, display, and validation helpers used by
// the cobra commands so they can be tested without a process.
package cli

import (
	"github.com/vnykmshr/skitter/internal/domain"
)

// ConfigOptions holds command-line flag values for configuration.
// These are passed to LoadConfiguration to build the final Config.
type ConfigOptions struct {
	RootURL          string
	UserAgent        string
	MaxDuration      string
	OutputFile       string
	MarkdownFile     string
	MetricsFile      string
	Rate             float64
	PoolSize         int
	MaxConnections   int
	AllowedErrors    int
	ConnectTimeout   int
	ReadTimeout      int
	RequestTimeout   int
	HandshakeTimeout int
	AllowPrivateIPs  bool
	Verbose          bool

	// AllowedErrorsSet is true when --allowed-errors was given, since 0 is
	// a valid threshold.
	AllowedErrorsSet bool
}

// Result holds the loaded configuration and any warnings generated during loading.
type Result struct {
	Config *domain.Config
	// Source is the configuration file that was read, empty if none.
	Source   string
	Warnings []string
}
