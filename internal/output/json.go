package output

import (
	"bufio"
	"encoding/json"
	"io"
)

// JSONWriter writes JSON output. A single report is written as an object,
// several as an array.
type JSONWriter struct {
	w       *bufio.Writer
	pretty  bool
	indent  string
	reports []Report
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	return &JSONWriter{
		w:       bufio.NewWriter(w),
		pretty:  pretty,
		indent:  indent,
		reports: make([]Report, 0, 1),
	}
}

// Write buffers a report until Close.
func (w *JSONWriter) Write(report Report) error {
	w.reports = append(w.reports, report)
	return nil
}

// Close writes the buffered reports and flushes.
func (w *JSONWriter) Close() error {
	var value any = w.reports
	if len(w.reports) == 1 {
		value = w.reports[0]
	}

	var output []byte
	var err error
	if w.pretty {
		output, err = json.MarshalIndent(value, "", w.indent)
	} else {
		output, err = json.Marshal(value)
	}
	if err != nil {
		return err
	}

	if _, err := w.w.Write(output); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	return w.w.Flush()
}

// JSONLWriter writes newline-delimited JSON (JSONL), one report per line.
type JSONLWriter struct {
	w *bufio.Writer
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	return &JSONLWriter{
		w: bufio.NewWriter(w),
	}
}

// Write writes a single report as a JSON line.
func (w *JSONLWriter) Write(report Report) error {
	output, err := json.Marshal(report)
	if err != nil {
		return err
	}

	if _, err := w.w.Write(output); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.w.Flush()
}
