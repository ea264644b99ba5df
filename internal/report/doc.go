// Package report renders crawl reports.
//
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: the report as JSON, for other tools
//   - MarkdownWriter: tables per entity kind and a pie chart of totals
//
// Writers implement Writer and can be combined with MultiWriter.
package report
