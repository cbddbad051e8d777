package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/sitemapper/internal/config"
	"github.com/jmylchreest/sitemapper/internal/crawler"
	"github.com/jmylchreest/sitemapper/internal/logger"
	"github.com/jmylchreest/sitemapper/internal/output"
	"github.com/jmylchreest/sitemapper/internal/sitemap"
	"github.com/jmylchreest/sitemapper/internal/version"
	"github.com/jmylchreest/sitemapper/pkg/fetcher"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [url...]",
	Short: "Crawl URL prefixes and write a sitemap",
	Long: `Crawl one or more root URL prefixes and write every discovered page
to a sitemap file.

Only URLs on the host of the first root that start with one of the roots are
crawled. Without --recursive, links are followed from the roots only; the
pages they link to are fetched and recorded but not expanded.

Pages that fail to load are logged and left out of the sitemap. The exit
status is non-zero only for configuration errors or when the sitemap cannot
be written.

Examples:
  sitemapper crawl https://example.com/docs/
  sitemapper crawl -r -o docs.xml -w 20 -c 40 https://example.com/docs/
  sitemapper crawl -r --nav-url https://example.com/docs/ \
      --report crawl.json https://example.com/docs/`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	flags := crawlCmd.Flags()

	// Scope
	flags.StringSliceP("url", "u", nil, "root URL prefix to crawl (can be repeated; positional args also accepted)")
	flags.BoolP("recursive", "r", false, "follow links from every page, not just the roots")

	// Output
	flags.StringP("output", "o", "sitemap.xml", "sitemap output file")
	flags.StringSlice("nav-url", nil, "URL given priority 1.0 in the sitemap (can be repeated)")
	flags.String("report", "", "write a crawl report to this file")
	flags.String("report-format", "", "report format: json, jsonl, yaml (default: from --report extension)")

	// Fetching
	flags.IntP("workers", "w", 10, "number of crawl workers")
	flags.IntP("max-concurrent-requests", "c", 20, "max requests in flight")
	flags.Duration("timeout", 10*time.Second, "per-request timeout")
	flags.Float64("rate", 0, "max requests per second (0=unlimited)")
	flags.String("user-agent", "", "User-Agent header (default: sitemapper/<version>)")
	flags.String("fetch-mode", "static", "fetch mode: static, dynamic")
	flags.String("chrome-path", "", "Chrome/Chromium binary for dynamic mode (default: auto-detect)")

	// Bind to viper
	bindings := map[string]string{
		config.KeyRoots:                 "url",
		config.KeyRecursive:             "recursive",
		config.KeyOutput:                "output",
		config.KeyNavURLs:               "nav-url",
		config.KeyReport:                "report",
		config.KeyReportFormat:          "report-format",
		config.KeyWorkers:               "workers",
		config.KeyMaxConcurrentRequests: "max-concurrent-requests",
		config.KeyTimeout:               "timeout",
		config.KeyRequestsPerSecond:     "rate",
		config.KeyUserAgent:             "user-agent",
		config.KeyFetchMode:             "fetch-mode",
		config.KeyChromePath:            "chrome-path",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func runCrawl(cmd *cobra.Command, args []string) error {
	initLogger()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Debug("crawl command starting", "version", version.String())

	// Positional roots are added after any --url values.
	if len(args) > 0 {
		roots, _ := cmd.Flags().GetStringSlice("url")
		viper.Set(config.KeyRoots, append(roots, args...))
	}
	if len(viper.GetStringSlice(config.KeyRoots)) == 0 {
		return cmd.Help()
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return err
	}
	logger.Debug("configuration loaded",
		"roots", cfg.Roots,
		"output", cfg.Output,
		"fetch_mode", cfg.FetchMode,
		"timeout", cfg.Timeout,
		"requests_per_second", cfg.RequestsPerSecond)

	f, err := fetcher.New(cfg.FetchMode, cfg.Fetcher())
	if err != nil {
		logger.Error("failed to create fetcher", "error", err)
		return err
	}
	defer func() { _ = f.Close() }()

	sink := sitemap.NewWriter(cfg.Output, sitemap.WithNavURLs(cfg.NavURLs))
	engine, err := crawler.NewEngine(cfg.Engine(), f, sink)
	if err != nil {
		logger.Error("failed to create crawler", "error", err)
		return err
	}

	stats, runErr := engine.Run(ctx)
	interrupted := errors.Is(runErr, context.Canceled) && ctx.Err() != nil

	summary := []any{
		"unique_urls", humanize.Comma(int64(stats.Recorded)),
		"visited", humanize.Comma(int64(stats.Visited)),
		"failed", humanize.Comma(int64(stats.Failed)),
		"duration", stats.Duration.Round(time.Millisecond),
		"output", cfg.Output,
	}
	switch {
	case runErr == nil:
		logger.Info("crawl complete", summary...)
	case interrupted:
		logger.Warn("crawl interrupted, sitemap is incomplete", summary...)
	default:
		logger.Error("crawl failed", append(summary, "error", runErr)...)
	}

	if cfg.Report != "" {
		report := output.Report{
			Version:   version.String(),
			Roots:     cfg.Roots,
			Domain:    engine.Domain(),
			Recursive: cfg.Recursive,
			FetchMode: cfg.FetchMode,
			Sitemap:   cfg.Output,
		}
		report.SetResult(stats, runErr)
		if err := output.WriteFile(cfg.Report, output.Format(cfg.ReportFormat), report); err != nil {
			logger.Error("failed to write report", "path", cfg.Report, "error", err)
			return err
		}
		logger.Debug("report written", "path", cfg.Report, "format", cfg.ReportFormat)
	}

	if interrupted {
		return nil
	}
	return runErr
}
