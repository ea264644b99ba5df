package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/leadcrawl/internal/model"
)

// JSONWriter outputs reports as JSON. Field names are snake_case.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string

	// resultOnly writes only the CrawlResult, without run bookkeeping.
	resultOnly bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output with the given prefix and indent.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithResultOnly writes the bare CrawlResult instead of the whole report.
func WithResultOnly() JSONWriterOption {
	return func(w *JSONWriter) {
		w.resultOnly = true
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report as one JSON document followed by a newline.
func (w *JSONWriter) Write(report *model.CrawlReport) (int, error) {
	if w.resultOnly {
		if report.Result == nil {
			return 0, ErrNoResult
		}
		return w.writeJSON(report.Result)
	}
	return w.writeJSON(report)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}
