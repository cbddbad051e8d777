package fetcher

import (
	"os/exec"
	"path/filepath"

	"github.com/jmylchreest/sitemapper/internal/logger"
)

// chromeCandidates lists browser binaries tried in order. Bare names are
// resolved through PATH.
var chromeCandidates = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"headless-shell",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	"/snap/bin/chromium",
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
	`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
}

// FindChromePath returns the first Chrome/Chromium binary found, or "" to
// let chromedp use its own lookup.
func FindChromePath() string {
	return findExecutable(chromeCandidates, exec.LookPath)
}

func findExecutable(candidates []string, lookPath func(string) (string, error)) string {
	for _, name := range candidates {
		path, err := lookPath(name)
		if err != nil {
			continue
		}
		if !filepath.IsAbs(path) {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
		}
		logger.Debug("found browser binary", "name", name, "path", path)
		return path
	}
	logger.Warn("no Chrome binary found, dynamic fetch mode may not work")
	return ""
}
