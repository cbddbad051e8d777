package crawler

import (
	"net/url"
	"testing"
)

func TestIsWellFormed(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"https://example.com/", true},
		{"http://example.com:8080/docs?page=2", true},
		{"https://example.com", true},
		{"/relative/path", false},
		{"example.com/no-scheme", false},
		{"javascript:void(0)", false},
		{"mailto:support@example.com", false},
		{"", false},
		{"://invalid", false},
		{"https://bad host/", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsWellFormed(tt.input); got != tt.expected {
				t.Errorf("IsWellFormed(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestInScope(t *testing.T) {
	roots := []string{"https://example.com/docs/", "https://example.com/help"}

	tests := []struct {
		input    string
		expected bool
	}{
		{"https://example.com/docs/", true},
		{"https://example.com/docs/install", true},
		{"https://example.com/help", true},
		{"https://example.com/help/faq", true},
		{"https://example.com/blog/", false},
		{"https://example.com/doc", false},
		{"http://example.com/docs/install", false},
		{"https://other.com/docs/", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := InScope(tt.input, roots); got != tt.expected {
				t.Errorf("InScope(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

// The prefix test is not path-segment aware. These cases pin the current
// behaviour so a change to it is a deliberate decision.
func TestInScope_RawPrefixMatchesSiblingPaths(t *testing.T) {
	tests := []struct {
		root  string
		input string
	}{
		{"https://example.com/help", "https://example.com/help-center/contact"},
		{"https://example.com/help", "https://example.com/help2/x"},
		{"https://example.com/docs/v1", "https://example.com/docs/v10/changelog"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if !InScope(tt.input, []string{tt.root}) {
				t.Errorf("InScope(%q, [%q]) = false, want true (raw prefix match)", tt.input, tt.root)
			}
		})
	}
}

func TestInScope_TrailingSlashRootExcludesSibling(t *testing.T) {
	if InScope("https://example.com/help2/x", []string{"https://example.com/help/"}) {
		t.Error("root with trailing slash should not match sibling path")
	}
}

func TestInScope_NoRoots(t *testing.T) {
	if InScope("https://example.com/", nil) {
		t.Error("InScope with no roots should be false")
	}
}

func TestSameHost(t *testing.T) {
	tests := []struct {
		input    string
		domain   string
		expected bool
	}{
		{"https://example.com/page", "example.com", true},
		{"http://example.com/page", "example.com", true},
		{"https://www.example.com/page", "example.com", false},
		{"https://sub.example.com/", "example.com", false},
		{"https://example.com:8080/", "example.com:8080", true},
		{"https://example.com:8080/", "example.com", false},
		{"/relative", "example.com", false},
		{"://invalid", "example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.input+" on "+tt.domain, func(t *testing.T) {
			if got := SameHost(tt.input, tt.domain); got != tt.expected {
				t.Errorf("SameHost(%q, %q) = %v, want %v", tt.input, tt.domain, got, tt.expected)
			}
		})
	}
}

func TestHostOf(t *testing.T) {
	if got := HostOf("https://example.com:8443/docs/"); got != "example.com:8443" {
		t.Errorf("HostOf() = %q", got)
	}
	if got := HostOf("://invalid"); got != "" {
		t.Errorf("HostOf(invalid) = %q, want empty", got)
	}
}

func TestResolve(t *testing.T) {
	base, err := url.Parse("https://example.com/docs/guide/index.html")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		href     string
		expected string
		ok       bool
	}{
		{"install.html", "https://example.com/docs/guide/install.html", true},
		{"../api/", "https://example.com/docs/api/", true},
		{"/help/", "https://example.com/help/", true},
		{"https://other.com/x", "https://other.com/x", true},
		{"//cdn.example.com/lib.js", "https://cdn.example.com/lib.js", true},
		{"faq.html#top", "https://example.com/docs/guide/faq.html", true},
		{"?page=2", "https://example.com/docs/guide/index.html?page=2", true},
		{"  spaced.html  ", "https://example.com/docs/guide/spaced.html", true},
		{"", "https://example.com/docs/guide/index.html", true},
		{"javascript:void(0)", "javascript:void(0)", true},
		{"http://[::1", "", false},
		{"%zz", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			got, ok := Resolve(base, tt.href)
			if ok != tt.ok {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.href, ok, tt.ok)
			}
			if got != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.href, got, tt.expected)
			}
		})
	}
}
