package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/vnykmshr/skitter/internal/domain"
	"github.com/vnykmshr/skitter/internal/util"
)

// Validate checks a fully merged configuration and reports every problem
// at once.
func Validate(cfg *domain.Config) error {
	var err error

	if cfg.RootURL != "" {
		if urlErr := util.ValidateRoot(cfg.RootURL, cfg.AllowPrivateIPs); urlErr != nil {
			err = multierror.Append(err, fmt.Errorf("%w: %w", ErrInvalidRootURL, urlErr))
		}
	}

	if _, durErr := MaxDuration(cfg); durErr != nil {
		err = multierror.Append(err, durErr)
	}

	if crawlerErr := ToCrawlerConfig(cfg).Validate(); crawlerErr != nil {
		err = multierror.Append(err, crawlerErr)
	}

	return err
}

// MaxDuration parses max_duration. An empty value means no limit and
// yields 0.
func MaxDuration(cfg *domain.Config) (time.Duration, error) {
	if cfg.MaxDuration == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(cfg.MaxDuration)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidMaxDuration, cfg.MaxDuration, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidMaxDuration, cfg.MaxDuration)
	}
	return d, nil
}

// ToCrawlerConfig converts the file-level configuration into the settings
// consumed by the scheduler and fetcher.
func ToCrawlerConfig(cfg *domain.Config) domain.CrawlerConfig {
	return domain.CrawlerConfig{
		RootURL:                       cfg.RootURL,
		PoolSize:                      cfg.ThreadPoolSize,
		MaxConnections:                cfg.MaxConnections,
		AllowedServerErrorsPercentage: cfg.AllowedServerErrorsPercentage,
		ConnectTimeout:                millis(cfg.ConnectTimeoutMs),
		ReadTimeout:                   millis(cfg.ReadTimeoutMs),
		RequestTimeout:                millis(cfg.RequestTimeoutMs),
		HandshakeTimeout:              millis(cfg.HandshakeTimeoutMs),
		UserAgent:                     cfg.UserAgent,
		Rate:                          cfg.Rate,
	}
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
