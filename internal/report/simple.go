package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/leadcrawl/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs plain text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no records are shown.
	showEmpty bool

	// verbose adds the visited URLs and the per-page OpenGraph tags.
	verbose bool

	title cases.Caser
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		title:      cases.Title(language.English),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	r := report.Result
	if r == nil {
		return 0, ErrNoResult
	}

	var sb strings.Builder
	w.writeHeader(&sb, report)
	w.writeTotals(&sb, r)

	emails := make([]string, len(r.Emails))
	for i, e := range r.Emails {
		emails[i] = fmt.Sprintf("%s  (%s)", e.Email, e.PageURL)
	}
	w.writeSection(&sb, "EMAILS", emails)

	people := make([]string, len(r.People))
	for i, p := range r.People {
		line := p.Name
		if p.Title != "" {
			line += ", " + p.Title
		}
		for _, extra := range []string{p.Email, p.Phone, p.LinkedInURL} {
			if extra != "" {
				line += "  " + extra
			}
		}
		people[i] = line
	}
	w.writeSection(&sb, "PEOPLE", people)

	phones := make([]string, len(r.Phones))
	for i, p := range r.Phones {
		phones[i] = p.Phone
	}
	w.writeSection(&sb, "PHONES", phones)

	var social []string
	for _, p := range r.SocialList() {
		social = append(social, fmt.Sprintf("%-10s %s", w.title.String(p.Platform.String()), p.URL))
	}
	w.writeSection(&sb, "SOCIAL PROFILES", social)

	var techs []string
	for _, t := range r.TechnologyList() {
		techs = append(techs, fmt.Sprintf("%-10s %s", w.title.String(string(t.Category)), t.Name))
	}
	w.writeSection(&sb, "TECHNOLOGIES", techs)

	forms := make([]string, len(r.Forms))
	for i, f := range r.Forms {
		flags := ""
		if f.HasCSRF {
			flags += " [csrf]"
		}
		if f.HasFileUpload {
			flags += " [upload]"
		}
		forms[i] = fmt.Sprintf("%s %s  (%d fields)%s", f.Method, f.ActionURL, len(f.Fields), flags)
	}
	w.writeSection(&sb, "FORMS", forms)

	var exifs []string
	for _, img := range r.Images {
		if img.EXIF == nil {
			continue
		}
		line := img.URL
		if camera := strings.TrimSpace(img.EXIF.Make + " " + img.EXIF.Model); camera != "" {
			line += "  camera: " + camera
		}
		if img.EXIF.HasGPS {
			line += "  [gps]"
		}
		exifs = append(exifs, line)
	}
	w.writeSection(&sb, "IMAGE EXIF", exifs)

	if w.verbose {
		w.writeSection(&sb, "VISITED PAGES", r.VisitedURLs)
		pages := make([]string, 0, len(r.OGDataByPage))
		for page, tags := range r.OGDataByPage {
			pages = append(pages, fmt.Sprintf("%s  (%d tags)", page, len(tags)))
		}
		sort.Strings(pages)
		w.writeSection(&sb, "OPENGRAPH PAGES", pages)
	}

	if len(report.Errors) > 0 {
		w.writeSection(&sb, "ERRORS", report.Errors)
	}

	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	r := report.Result
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                          LEADCRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Site:           %s\n", r.BaseURL)
	fmt.Fprintf(sb, "Run ID:         %s\n", report.RunID)
	fmt.Fprintf(sb, "Crawl Date:     %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Pages Visited:  %d (%d failed)\n", len(r.VisitedURLs), r.PageErrors)
	fmt.Fprintf(sb, "Duration:       %.1fs\n", r.DurationSeconds)
	fmt.Fprintf(sb, "Status:         %s\n", statusText(r))
	sb.WriteString("\n")
	if r.Summary != "" {
		sb.WriteString(r.Summary)
		sb.WriteString("\n\n")
	}
}

func (w *SimpleWriter) writeTotals(sb *strings.Builder, r *model.CrawlResult) {
	w.writeRule(sb, "TOTALS")
	t := r.Totals
	fmt.Fprintf(sb, "  Emails:       %d\n", t.Emails)
	fmt.Fprintf(sb, "  People:       %d\n", t.People)
	fmt.Fprintf(sb, "  Phones:       %d\n", t.Phones)
	fmt.Fprintf(sb, "  Social:       %d platforms\n", t.SocialPlatforms)
	fmt.Fprintf(sb, "  Technologies: %d\n", t.Technologies)
	fmt.Fprintf(sb, "  Images:       %d\n", t.Images)
	fmt.Fprintf(sb, "  Forms:        %d\n", t.Forms)
	fmt.Fprintf(sb, "  OG pages:     %d\n", t.OGPages)
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, name string, lines []string) {
	if len(lines) == 0 && !w.showEmpty {
		return
	}
	w.writeRule(sb, name)
	if len(lines) == 0 {
		sb.WriteString("  None found\n\n")
		return
	}
	for _, line := range lines {
		fmt.Fprintf(sb, "  [+] %s\n", line)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeRule(sb *strings.Builder, name string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(name)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}
