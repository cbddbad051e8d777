package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultLinkSelector matches every anchor carrying an href.
const DefaultLinkSelector = "a[href]"

// LinkExtractor returns the raw href values found in an HTML document.
// Values are returned as written: possibly relative, possibly malformed.
type LinkExtractor interface {
	ExtractHrefs(html string) ([]string, error)
}

// AnchorExtractor extracts hrefs from elements matching a CSS selector.
type AnchorExtractor struct {
	Selector string // CSS selector for link elements (default: a[href])
}

// NewAnchorExtractor creates an extractor for the given selector.
func NewAnchorExtractor(selector string) *AnchorExtractor {
	if strings.TrimSpace(selector) == "" {
		selector = DefaultLinkSelector
	}
	return &AnchorExtractor{Selector: selector}
}

// ExtractHrefs parses html and returns each matching element's href in
// document order. Empty and fragment-only hrefs are skipped.
func (e *AnchorExtractor) ExtractHrefs(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	selector := e.Selector
	if selector == "" {
		selector = DefaultLinkSelector
	}

	var hrefs []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		hrefs = append(hrefs, href)
	})

	return hrefs, nil
}
