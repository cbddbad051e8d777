// Package fetcher defines the page fetching collaborator used by the crawler.
// Implement the Fetcher interface to plug in a different transport.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmylchreest/sitemapper/internal/version"
)

// Fetcher retrieves a single page.
type Fetcher interface {
	// Fetch retrieves page content from a URL. A non-nil error means the
	// page must be treated as unreachable; Content.StatusCode is still set
	// when the server answered.
	Fetch(ctx context.Context, url string, opts Options) (Content, error)

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns a string identifying the fetcher type ("static", "dynamic").
	Type() string
}

// Options controls per-request behavior.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string
}

// Content represents a fetched page.
type Content struct {
	URL         string
	HTML        string
	Title       string
	StatusCode  int
	ContentType string
	FetchedAt   time.Time
}

// Fetch modes accepted by New.
const (
	ModeStatic  = "static"
	ModeDynamic = "dynamic"
)

// Error types for distinguishing failure reasons.
// Check with errors.Is(err, fetcher.ErrUnexpectedStatus).
var (
	// ErrUnexpectedStatus indicates the server answered with a non-success status.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrUnknownMode indicates an unsupported fetch mode was requested.
	ErrUnknownMode = errors.New("unknown fetch mode")
)

// Config holds settings shared by all fetchers.
type Config struct {
	UserAgent  string
	Timeout    time.Duration
	ChromePath string // dynamic mode only; empty = search common locations
}

var defaultUserAgent = version.UserAgent()

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent: defaultUserAgent,
		Timeout:   10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	return c
}

// New creates a fetcher for the given mode.
func New(mode string, cfg Config) (Fetcher, error) {
	switch mode {
	case ModeStatic, "":
		return NewStatic(cfg), nil
	case ModeDynamic:
		return NewDynamic(cfg)
	default:
		return nil, fmt.Errorf("%w: %s (use 'static' or 'dynamic')", ErrUnknownMode, mode)
	}
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
