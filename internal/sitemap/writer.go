// Package sitemap writes sitemaps.org XML documents incrementally.
//
// Entries are flushed to disk as they are recorded, so an interrupted run
// leaves every recorded entry on disk. Such a file has no closing </urlset>
// and is not valid XML until Close runs; that is a known limitation.
package sitemap

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Namespace is the sitemaps.org schema namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq is written for every entry.
const ChangeFreq = "daily"

// Priorities written for navigation and ordinary pages.
const (
	PriorityNav     = "1.0"
	PriorityDefault = "0.8"
)

const (
	header = `<?xml version="1.0" encoding="utf-8"?>` + "\n" +
		`<urlset xmlns="` + Namespace + `">` + "\n"
	footer = "</urlset>\n"
)

// Error types returned by Writer.
var (
	// ErrNotOpen is returned when recording before Open or after Close/Abort.
	ErrNotOpen = errors.New("sitemap not open")
	// ErrAlreadyOpen is returned when Open is called twice.
	ErrAlreadyOpen = errors.New("sitemap already open")
)

// Option configures a Writer.
type Option func(*Writer)

// WithNavURLs sets the navigation allow-list. Listed URLs get PriorityNav.
func WithNavURLs(urls []string) Option {
	return func(w *Writer) {
		for _, u := range urls {
			w.nav[u] = struct{}{}
		}
	}
}

// WithClock overrides the clock used for lastmod.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		w.now = now
	}
}

// WithSink makes the writer use dst instead of creating a file.
// Close and Abort close dst if it implements io.Closer.
func WithSink(dst io.Writer) Option {
	return func(w *Writer) {
		w.sink = dst
	}
}

// Writer is an append-only sitemap document.
// Record is safe for concurrent use; it performs no deduplication.
type Writer struct {
	path string
	nav  map[string]struct{}
	now  func() time.Time
	sink io.Writer

	mu      sync.Mutex
	out     *bufio.Writer
	closer  io.Closer
	open    bool
	done    bool
	entries int
}

// NewWriter creates a writer targeting path. Nothing is written until Open.
func NewWriter(path string, opts ...Option) *Writer {
	w := &Writer{
		path: path,
		nav:  make(map[string]struct{}),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the output file path.
func (w *Writer) Path() string {
	return w.path
}

// Open creates (or truncates) the output and writes the document header.
func (w *Writer) Open() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.open || w.done {
		return ErrAlreadyOpen
	}

	dst := w.sink
	if dst == nil {
		f, err := os.Create(w.path) //#nosec G304 -- CLI tool writes to user-specified output file
		if err != nil {
			return fmt.Errorf("create sitemap: %w", err)
		}
		dst = f
	}
	if c, ok := dst.(io.Closer); ok {
		w.closer = c
	}

	w.out = bufio.NewWriter(dst)
	w.open = true
	if err := w.writeLocked(header); err != nil {
		return fmt.Errorf("write sitemap header: %w", err)
	}
	return nil
}

// Record appends one entry for rawURL and flushes it.
func (w *Writer) Record(rawURL string) error {
	entry := w.entry(rawURL)

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return ErrNotOpen
	}
	if err := w.writeLocked(entry); err != nil {
		return fmt.Errorf("write sitemap entry %s: %w", rawURL, err)
	}
	w.entries++
	return nil
}

// Entries returns the number of recorded entries.
func (w *Writer) Entries() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.entries
}

// Close writes the footer and releases the output. It must only be called
// once every Record call has returned.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return ErrNotOpen
	}
	err := w.writeLocked(footer)
	if err != nil {
		err = fmt.Errorf("write sitemap footer: %w", err)
	}
	return errors.Join(err, w.releaseLocked())
}

// Abort releases the output without writing the footer.
func (w *Writer) Abort() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.open {
		return nil
	}
	return w.releaseLocked()
}

func (w *Writer) writeLocked(s string) error {
	if _, err := w.out.WriteString(s); err != nil {
		return err
	}
	return w.out.Flush()
}

func (w *Writer) releaseLocked() error {
	w.open = false
	w.done = true
	if w.closer == nil {
		return nil
	}
	if err := w.closer.Close(); err != nil {
		return fmt.Errorf("close sitemap: %w", err)
	}
	return nil
}

// Priority returns the priority value written for rawURL.
func (w *Writer) Priority(rawURL string) string {
	if _, ok := w.nav[rawURL]; ok {
		return PriorityNav
	}
	return PriorityDefault
}

func (w *Writer) entry(rawURL string) string {
	var loc strings.Builder
	// EscapeText only fails when the destination write fails.
	_ = xml.EscapeText(&loc, []byte(EncodeLoc(rawURL)))

	var sb strings.Builder
	sb.WriteString("    <url>\n")
	sb.WriteString("        <loc>" + loc.String() + "</loc>\n")
	sb.WriteString("        <lastmod>" + w.now().Format(time.DateOnly) + "</lastmod>\n")
	sb.WriteString("        <changefreq>" + ChangeFreq + "</changefreq>\n")
	sb.WriteString("        <priority>" + w.Priority(rawURL) + "</priority>\n")
	sb.WriteString("    </url>\n")
	return sb.String()
}

// EncodeLoc percent-encodes every byte of rawURL except ASCII letters,
// digits, "-._~" and the structural characters ":/?=&%". Existing escapes
// are left alone because '%' itself is never re-encoded.
func EncodeLoc(rawURL string) string {
	const hex = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(rawURL))
	for i := 0; i < len(rawURL); i++ {
		c := rawURL[i]
		if locSafe(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hex[c>>4])
		sb.WriteByte(hex[c&0x0f])
	}
	return sb.String()
}

func locSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', '~', ':', '/', '?', '=', '&', '%':
		return true
	}
	return false
}
