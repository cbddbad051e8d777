package crawler

import (
	"net/url"
	"strings"
)

// IsWellFormed reports whether rawURL has both a scheme and a host.
func IsWellFormed(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

// InScope reports whether rawURL starts with at least one root.
//
// The comparison is a plain string prefix, not a path-segment match: a root
// of "https://example.com/help" also admits "https://example.com/help-center".
func InScope(rawURL string, roots []string) bool {
	for _, root := range roots {
		if strings.HasPrefix(rawURL, root) {
			return true
		}
	}
	return false
}

// SameHost reports whether the authority of rawURL equals domain exactly.
// Ports are part of the authority, so example.com and example.com:8080 differ.
func SameHost(rawURL, domain string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return parsed.Host == domain
}

// HostOf returns the authority of rawURL, or "" if it cannot be parsed.
func HostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}

// Resolve joins href against base and drops any fragment.
// It returns false when href cannot be parsed.
func Resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved.String(), true
}
