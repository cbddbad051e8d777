// Package crawler discovers every page reachable under a set of root URL
// prefixes on a single host.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/jmylchreest/sitemapper/internal/logger"
	"github.com/jmylchreest/sitemapper/pkg/fetcher"
)

// Error types returned by the engine.
var (
	// ErrNoRoots is returned when an engine is created without root URLs.
	ErrNoRoots = errors.New("no root URLs")
	// ErrInvalidRoot is returned when the first root has no host.
	ErrInvalidRoot = errors.New("invalid root URL")
)

// Accumulator receives every successfully fetched URL exactly once.
// Record must be safe for concurrent use.
type Accumulator interface {
	Open() error
	Record(rawURL string) error
	Close() error
	Abort() error
}

// Config holds crawl engine configuration.
type Config struct {
	Roots     []string // URL prefixes; the first one defines the host
	Recursive bool     // Follow links from every page, not just the roots

	Workers               int           // Worker goroutines
	MaxConcurrentRequests int           // Fetches allowed in flight at once
	FetchTimeout          time.Duration // Per-fetch timeout
	RequestsPerSecond     float64       // 0 = unlimited

	UserAgent string
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Workers:               10,
		MaxConcurrentRequests: 20,
		FetchTimeout:          10 * time.Second,
	}
}

// Stats summarizes a finished crawl.
type Stats struct {
	Visited    int           `json:"visited" yaml:"visited"`
	Recorded   int           `json:"recorded" yaml:"recorded"`
	Failed     int           `json:"failed" yaml:"failed"`
	Dropped    int           `json:"dropped" yaml:"dropped"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time     `json:"finished_at" yaml:"finished_at"`
	Duration   time.Duration `json:"-" yaml:"-"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithLinkExtractor replaces the default anchor extractor.
func WithLinkExtractor(links LinkExtractor) Option {
	return func(e *Engine) {
		e.links = links
	}
}

// Engine coordinates a crawl: it seeds the frontier, runs the worker pool
// and finalizes the accumulator once no work remains.
type Engine struct {
	config  Config
	fetcher fetcher.Fetcher
	sink    Accumulator
	links   LinkExtractor
	domain  string
}

// NewEngine creates an engine. Zero numeric config values fall back to
// DefaultConfig.
func NewEngine(cfg Config, f fetcher.Fetcher, sink Accumulator, opts ...Option) (*Engine, error) {
	if len(cfg.Roots) == 0 {
		return nil, ErrNoRoots
	}
	domain := HostOf(cfg.Roots[0])
	if domain == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRoot, cfg.Roots[0])
	}

	defaults := DefaultConfig()
	if cfg.Workers < 1 {
		cfg.Workers = defaults.Workers
	}
	if cfg.MaxConcurrentRequests < 1 {
		cfg.MaxConcurrentRequests = defaults.MaxConcurrentRequests
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaults.FetchTimeout
	}

	e := &Engine{
		config:  cfg,
		fetcher: f,
		sink:    sink,
		links:   NewAnchorExtractor(DefaultLinkSelector),
		domain:  domain,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Domain returns the host every crawled URL must match.
func (e *Engine) Domain() string {
	return e.domain
}

// Run crawls until no work remains, ctx is cancelled, or recording fails.
// On completion the accumulator is closed; otherwise it is aborted and the
// cause is returned. Per-page fetch failures never fail the run.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	started := time.Now()

	if err := e.sink.Open(); err != nil {
		return Stats{StartedAt: started, FinishedAt: time.Now()}, fmt.Errorf("open sitemap: %w", err)
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	r := e.newRun(cancel)

	logger.InfoContext(ctx, "crawl started",
		"roots", len(e.config.Roots),
		"domain", e.domain,
		"recursive", e.config.Recursive,
		"workers", e.config.Workers,
		"max_concurrent_requests", e.config.MaxConcurrentRequests)

	for _, root := range e.config.Roots {
		if r.visited.Claim(root) {
			logger.Info("seed", "url", root)
			r.frontier.Push(root)
		}
	}

	stop := r.frontier.CloseOnCancel(ctx)
	defer stop()

	var wg sync.WaitGroup
	for id := range e.config.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.work(ctx, id)
		}()
	}
	wg.Wait()

	stats := r.stats(started)

	if cause := context.Cause(ctx); cause != nil {
		logger.DebugContext(context.WithoutCancel(ctx), "crawl stopped early", "cause", cause, "recorded", stats.Recorded)
		return stats, errors.Join(cause, e.sink.Abort())
	}
	if err := e.sink.Close(); err != nil {
		return stats, fmt.Errorf("close sitemap: %w", err)
	}
	return stats, nil
}

// run holds the state of a single Run.
type run struct {
	*Engine

	roots    map[string]struct{}
	visited  *VisitedSet
	frontier *Frontier
	sem      *semaphore.Weighted
	limiter  *rate.Limiter
	fail     context.CancelCauseFunc

	recorded atomic.Int64
	failed   atomic.Int64
	dropped  atomic.Int64
}

func (e *Engine) newRun(fail context.CancelCauseFunc) *run {
	r := &run{
		Engine:   e,
		roots:    make(map[string]struct{}, len(e.config.Roots)),
		visited:  NewVisitedSet(),
		frontier: NewFrontier(),
		sem:      semaphore.NewWeighted(int64(e.config.MaxConcurrentRequests)),
		fail:     fail,
	}
	for _, root := range e.config.Roots {
		r.roots[root] = struct{}{}
	}
	if e.config.RequestsPerSecond > 0 {
		burst := max(1, int(e.config.RequestsPerSecond))
		r.limiter = rate.NewLimiter(rate.Limit(e.config.RequestsPerSecond), burst)
	}
	return r
}

func (r *run) work(ctx context.Context, id int) {
	log := logger.With("worker", id)
	for {
		rawURL, ok := r.frontier.Next()
		if !ok {
			return
		}
		r.process(ctx, log, rawURL)
		r.frontier.Done()
	}
}

// process fetches, records and expands one claimed URL.
func (r *run) process(ctx context.Context, log *slog.Logger, rawURL string) {
	if !IsWellFormed(rawURL) || !InScope(rawURL, r.config.Roots) {
		r.dropped.Add(1)
		log.Debug("dropping url", "url", rawURL)
		return
	}

	start := time.Now()
	content, err := r.fetch(ctx, rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.failed.Add(1)
		log.Warn("fetch failed", "url", rawURL, "error", err, "duration", time.Since(start).Round(time.Millisecond))
		return
	}
	log.Debug("fetched", "url", rawURL, "title", content.Title, "duration", time.Since(start).Round(time.Millisecond))

	if err := r.sink.Record(rawURL); err != nil {
		r.fail(fmt.Errorf("record %s: %w", rawURL, err))
		return
	}
	r.recorded.Add(1)

	if r.follows(rawURL) {
		r.enqueueLinks(log, rawURL, content.HTML)
	}
}

// fetch holds a concurrency slot for the duration of the request only.
func (r *run) fetch(ctx context.Context, rawURL string) (fetcher.Content, error) {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return fetcher.Content{}, err
	}
	defer r.sem.Release(1)

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return fetcher.Content{}, err
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.config.FetchTimeout)
	defer cancel()

	return r.fetcher.Fetch(fetchCtx, rawURL, fetcher.Options{
		UserAgent: r.config.UserAgent,
		Timeout:   r.config.FetchTimeout,
	})
}

// follows reports whether links on rawURL should be followed.
func (r *run) follows(rawURL string) bool {
	if r.config.Recursive {
		return true
	}
	_, isRoot := r.roots[rawURL]
	return isRoot
}

func (r *run) enqueueLinks(log *slog.Logger, pageURL, html string) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return
	}
	hrefs, err := r.links.ExtractHrefs(html)
	if err != nil {
		log.Debug("link extraction failed", "url", pageURL, "error", err)
		return
	}

	for _, href := range hrefs {
		link, ok := Resolve(base, href)
		if !ok || !IsWellFormed(link) || !SameHost(link, r.domain) || !InScope(link, r.config.Roots) {
			r.dropped.Add(1)
			continue
		}
		if !r.visited.Claim(link) {
			continue
		}
		if !r.frontier.Push(link) {
			return
		}
		log.Debug("found new link", "url", link, "from", pageURL)
	}
}

func (r *run) stats(started time.Time) Stats {
	finished := time.Now()
	return Stats{
		Visited:    r.visited.Len(),
		Recorded:   int(r.recorded.Load()),
		Failed:     int(r.failed.Load()),
		Dropped:    int(r.dropped.Load()),
		StartedAt:  started,
		FinishedAt: finished,
		Duration:   finished.Sub(started),
	}
}
