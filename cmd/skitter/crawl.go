package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/skitter/internal/cli"
	"github.com/vnykmshr/skitter/internal/config"
	"github.com/vnykmshr/skitter/internal/metrics"
	"github.com/vnykmshr/skitter/internal/reporter"
	"github.com/vnykmshr/skitter/internal/scheduler"
	"github.com/vnykmshr/skitter/internal/util"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	opts := &cli.ConfigOptions{}
	var configPath string

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl a site from its root URL",
		Long: `Crawl fetches the root URL, extracts links from every page and follows
those that stay on the root's origin. Each URL is fetched at most once.

Configuration is read from --config, ./skitter.yaml, ./skitter.yml,
./skitter.json or the per-user config file, in that order. Flags override
file values.

Examples:
  # Crawl with defaults
  skitter crawl --url https://example.com

  # Stop after 5% server errors, write reports
  skitter crawl --url https://example.com --allowed-errors 5 \
    --output report.json --markdown report.md

  # Crawl a local development server
  skitter crawl --url http://localhost:8080 --allow-private-ips`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.AllowedErrorsSet = cmd.Flags().Changed("allowed-errors")
			return runCrawl(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), configPath, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	flags.StringVarP(&opts.RootURL, "url", "u", "", "Root URL to crawl")
	flags.IntVar(&opts.PoolSize, "pool-size", 0, "Completion worker pool size (0 = one per CPU)")
	flags.IntVar(&opts.MaxConnections, "max-connections", 0, "Maximum fetches in flight")
	flags.IntVar(&opts.AllowedErrors, "allowed-errors", 0, "Server error percentage (0-100) that stops the crawl")
	flags.IntVar(&opts.ConnectTimeout, "connect-timeout", 0, "Connect timeout in milliseconds")
	flags.IntVar(&opts.ReadTimeout, "read-timeout", 0, "Read timeout in milliseconds")
	flags.IntVar(&opts.RequestTimeout, "request-timeout", 0, "Whole request timeout in milliseconds")
	flags.IntVar(&opts.HandshakeTimeout, "handshake-timeout", 0, "TLS handshake timeout in milliseconds")
	flags.StringVar(&opts.UserAgent, "user-agent", "", "User-Agent header for requests")
	flags.Float64Var(&opts.Rate, "rate", 0, "Requests per second (0 = unlimited)")
	flags.StringVar(&opts.MaxDuration, "max-duration", "", "Wall-clock limit for the crawl (e.g. 10m)")
	flags.BoolVar(&opts.AllowPrivateIPs, "allow-private-ips", false, "Allow crawling localhost and private networks")
	flags.StringVarP(&opts.OutputFile, "output", "o", "", "Write the JSON report to this file")
	flags.StringVar(&opts.MarkdownFile, "markdown", "", "Write the Markdown report to this file")
	flags.StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "Debug logging and full error messages")

	return cmd
}

func runCrawl(ctx context.Context, stdout, stderr io.Writer, configPath string, opts *cli.ConfigOptions) error {
	result, err := cli.LoadConfiguration(configPath, opts)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	cfg := result.Config

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	maxDuration, err := config.MaxDuration(cfg)
	if err != nil {
		return err
	}
	if err := cli.ValidateRateLimit(&cfg.Rate); err != nil {
		return err
	}
	if cfg.AllowPrivateIPs {
		cli.PrivateTargetWarning(stderr, util.RedactURL(cfg.RootURL))
	}

	logLevel := slog.LevelInfo
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: logLevel}))

	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
	if result.Source != "" {
		logger.Info("Loaded configuration", "file", result.Source)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if maxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, maxDuration)
		defer cancel()
	}

	m := metrics.New()
	report, err := scheduler.Crawl(ctx, config.ToCrawlerConfig(cfg), logger, scheduler.WithMetrics(m))
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	rep := reporter.New(report, cfg.Verbose)
	rep.PrintSummary(stdout)

	if cfg.OutputFile != "" {
		if err := rep.GenerateJSON(cfg.OutputFile); err != nil {
			return fmt.Errorf("writing JSON report: %w", err)
		}
		logger.Info("Wrote JSON report", "file", cfg.OutputFile)
	}
	if cfg.MarkdownFile != "" {
		if err := rep.GenerateMarkdown(cfg.MarkdownFile); err != nil {
			return fmt.Errorf("writing Markdown report: %w", err)
		}
		logger.Info("Wrote Markdown report", "file", cfg.MarkdownFile)
	}
	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		logger.Info("Wrote metrics", "file", cfg.MetricsFile)
	}

	return nil
}
