package cli

import (
	"errors"

	"github.com/vnykmshr/skitter/internal/config"
	"github.com/vnykmshr/skitter/internal/domain"
)

// LoadConfiguration loads configuration from file (if one is found) and merges with CLI options.
// CLI flags override file configuration values.
func LoadConfiguration(configPath string, opts *ConfigOptions) (*Result, error) {
	loader := config.NewLoader()
	result := &Result{}

	path, err := config.FindConfigFile(configPath)
	switch {
	case err == nil:
		loadedCfg, err := loader.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		result.Config = loadedCfg
		result.Source = path
	case errors.Is(err, config.ErrConfigNotFound):
		defaultCfg := domain.DefaultConfig()
		result.Config = &defaultCfg
		result.Warnings = append(result.Warnings, "no configuration file found, using defaults and flags")
	default:
		return nil, err
	}

	cfg := result.Config

	// Override with CLI flags (if provided)
	if opts.RootURL != "" {
		cfg.RootURL = opts.RootURL
	}
	if opts.PoolSize != 0 {
		cfg.ThreadPoolSize = opts.PoolSize
	}
	if opts.MaxConnections != 0 {
		cfg.MaxConnections = opts.MaxConnections
	}
	if opts.AllowedErrorsSet {
		cfg.AllowedServerErrorsPercentage = opts.AllowedErrors
	}
	if opts.ConnectTimeout != 0 {
		cfg.ConnectTimeoutMs = opts.ConnectTimeout
	}
	if opts.ReadTimeout != 0 {
		cfg.ReadTimeoutMs = opts.ReadTimeout
	}
	if opts.RequestTimeout != 0 {
		cfg.RequestTimeoutMs = opts.RequestTimeout
	}
	if opts.HandshakeTimeout != 0 {
		cfg.HandshakeTimeoutMs = opts.HandshakeTimeout
	}
	if opts.UserAgent != "" {
		cfg.UserAgent = opts.UserAgent
	}
	if opts.Rate != 0 {
		cfg.Rate = opts.Rate
	}
	if opts.MaxDuration != "" {
		cfg.MaxDuration = opts.MaxDuration
	}
	if opts.OutputFile != "" {
		cfg.OutputFile = opts.OutputFile
	}
	if opts.MarkdownFile != "" {
		cfg.MarkdownFile = opts.MarkdownFile
	}
	if opts.MetricsFile != "" {
		cfg.MetricsFile = opts.MetricsFile
	}
	cfg.AllowPrivateIPs = cfg.AllowPrivateIPs || opts.AllowPrivateIPs
	cfg.Verbose = cfg.Verbose || opts.Verbose

	// Merge with defaults for any missing values
	result.Config = loader.MergeWithDefaults(cfg)

	return result, nil
}
