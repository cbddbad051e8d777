package output

import (
	"time"

	"github.com/jmylchreest/sitemapper/internal/crawler"
)

// Report describes one crawl run.
type Report struct {
	Version   string        `json:"version" yaml:"version"`
	Roots     []string      `json:"roots" yaml:"roots"`
	Domain    string        `json:"domain" yaml:"domain"`
	Recursive bool          `json:"recursive" yaml:"recursive"`
	FetchMode string        `json:"fetch_mode" yaml:"fetch_mode"`
	Sitemap   string        `json:"sitemap" yaml:"sitemap"`
	Complete  bool          `json:"complete" yaml:"complete"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration  string        `json:"duration" yaml:"duration"`
	Stats     crawler.Stats `json:"stats" yaml:"stats"`
}

// SetResult fills the outcome fields from a finished run.
// A nil runErr marks the sitemap as complete.
func (r *Report) SetResult(stats crawler.Stats, runErr error) {
	r.Stats = stats
	r.Duration = stats.Duration.Round(time.Millisecond).String()
	r.Complete = runErr == nil
	r.Error = ""
	if runErr != nil {
		r.Error = runErr.Error()
	}
}
