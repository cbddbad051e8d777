// Package config loads and validates sitemapper run configuration.
//
// Values come from viper, so flags, SITEMAPPER_* environment variables and an
// optional .sitemapper.yaml file all feed the same keys.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jmylchreest/sitemapper/internal/crawler"
	"github.com/jmylchreest/sitemapper/internal/output"
	"github.com/jmylchreest/sitemapper/pkg/fetcher"
)

// Configuration keys.
const (
	KeyRoots                 = "roots"
	KeyRecursive             = "recursive"
	KeyOutput                = "output"
	KeyWorkers               = "workers"
	KeyMaxConcurrentRequests = "max_concurrent_requests"
	KeyTimeout               = "timeout"
	KeyUserAgent             = "user_agent"
	KeyFetchMode             = "fetch_mode"
	KeyChromePath            = "chrome_path"
	KeyRequestsPerSecond     = "requests_per_second"
	KeyNavURLs               = "nav_urls"
	KeyReport                = "report"
	KeyReportFormat          = "report_format"
)

// EnvPrefix is the environment variable prefix.
const EnvPrefix = "SITEMAPPER"

// ErrInvalid is returned when validation fails.
var ErrInvalid = errors.New("invalid configuration")

// Config is a fully resolved crawl configuration.
type Config struct {
	Roots                 []string      `mapstructure:"roots" validate:"required,min=1,dive,http_url"`
	Recursive             bool          `mapstructure:"recursive"`
	Output                string        `mapstructure:"output" validate:"required"`
	Workers               int           `mapstructure:"workers" validate:"min=1,max=1000"`
	MaxConcurrentRequests int           `mapstructure:"max_concurrent_requests" validate:"min=1,max=1000"`
	Timeout               time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent             string        `mapstructure:"user_agent"`
	FetchMode             string        `mapstructure:"fetch_mode" validate:"oneof=static dynamic"`
	ChromePath            string        `mapstructure:"chrome_path"`
	RequestsPerSecond     float64       `mapstructure:"requests_per_second" validate:"gte=0"`
	NavURLs               []string      `mapstructure:"nav_urls" validate:"dive,http_url"`
	Report                string        `mapstructure:"report"`
	ReportFormat          string        `mapstructure:"report_format" validate:"omitempty,oneof=json jsonl yaml"`
}

// Default returns the default configuration. Roots are left empty.
func Default() Config {
	engine := crawler.DefaultConfig()
	return Config{
		Output:                "sitemap.xml",
		Workers:               engine.Workers,
		MaxConcurrentRequests: engine.MaxConcurrentRequests,
		Timeout:               engine.FetchTimeout,
		UserAgent:             fetcher.DefaultConfig().UserAgent,
		FetchMode:             fetcher.ModeStatic,
	}
}

// SetDefaults registers every key with its default so environment variables
// and config files can override it.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyRoots, []string{})
	v.SetDefault(KeyRecursive, d.Recursive)
	v.SetDefault(KeyOutput, d.Output)
	v.SetDefault(KeyWorkers, d.Workers)
	v.SetDefault(KeyMaxConcurrentRequests, d.MaxConcurrentRequests)
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyUserAgent, d.UserAgent)
	v.SetDefault(KeyFetchMode, d.FetchMode)
	v.SetDefault(KeyChromePath, "")
	v.SetDefault(KeyRequestsPerSecond, d.RequestsPerSecond)
	v.SetDefault(KeyNavURLs, []string{})
	v.SetDefault(KeyReport, "")
	v.SetDefault(KeyReportFormat, "")
}

// Load decodes, normalizes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode configuration: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Roots = trimAll(c.Roots)
	c.NavURLs = trimAll(c.NavURLs)
	c.FetchMode = strings.ToLower(strings.TrimSpace(c.FetchMode))
	c.ReportFormat = strings.ToLower(strings.TrimSpace(c.ReportFormat))
	if c.Report != "" && c.ReportFormat == "" {
		c.ReportFormat = string(output.FormatFromPath(c.Report))
	}
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Validate checks the configuration against its struct tags.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatValidationError(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s must be positive", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, e.Param())
	case "http_url":
		return fmt.Sprintf("%s must be an absolute http(s) URL, got %q", field, e.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}

// Engine returns the crawl engine configuration.
func (c Config) Engine() crawler.Config {
	return crawler.Config{
		Roots:                 c.Roots,
		Recursive:             c.Recursive,
		Workers:               c.Workers,
		MaxConcurrentRequests: c.MaxConcurrentRequests,
		FetchTimeout:          c.Timeout,
		RequestsPerSecond:     c.RequestsPerSecond,
		UserAgent:             c.UserAgent,
	}
}

// Fetcher returns the fetcher configuration.
func (c Config) Fetcher() fetcher.Config {
	return fetcher.Config{
		UserAgent:  c.UserAgent,
		Timeout:    c.Timeout,
		ChromePath: c.ChromePath,
	}
}
