package report

import (
	"errors"
	"io"

	"github.com/nao1215/leadcrawl/internal/model"
)

// ErrNoResult is returned when a report without a crawl result is written.
var ErrNoResult = errors.New("report has no crawl result")

// Writer writes crawl reports to a destination.
type Writer interface {
	// Write renders report and returns the number of bytes written.
	Write(report *model.CrawlReport) (int, error)
}

// MultiWriter writes every report to several Writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to every Writer in order and stops at the
// first error. It returns the total bytes written.
func (m *MultiWriter) Write(report *model.CrawlReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the output destination shared by the writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// statusText describes how a crawl ended.
func statusText(r *model.CrawlResult) string {
	switch r.StopReason {
	case model.StopReasonTimeLimit:
		return "Stopped at time limit (partial results)"
	case model.StopReasonPageLimit:
		return "Stopped at page limit"
	case model.StopReasonCanceled:
		return "Canceled (partial results)"
	default:
		return "Complete"
	}
}

// orDash returns s, or "-" when s is empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString shortens s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
