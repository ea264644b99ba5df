package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/leadcrawl/internal/model"
)

// MarkdownWriter outputs reports in Markdown, one table per entity kind.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	r := report.Result
	if r == nil {
		return 0, ErrNoResult
	}

	md := markdown.NewMarkdown(w.output)
	w.writeHeader(md, report)
	w.writeTotals(md, r)
	w.writeEntities(md, r)
	w.writeFooter(md, report)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	r := report.Result
	md.H1("Leadcrawl Report: " + r.Domain)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Site", r.BaseURL},
			{"Run ID", "`" + report.RunID + "`"},
			{"Crawl Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Visited", strconv.Itoa(len(r.VisitedURLs))},
			{"Failed Pages", strconv.Itoa(r.PageErrors)},
			{"Duration", strconv.FormatFloat(r.DurationSeconds, 'f', 1, 64) + "s"},
			{"Status", statusText(r)},
		},
	})
	md.PlainText("")

	if r.Summary != "" {
		md.H2("Summary")
		md.PlainText("")
		md.PlainText(r.Summary)
		md.PlainText("")
	}
	if r.StopReason == model.StopReasonTimeLimit || r.StopReason == model.StopReasonCanceled {
		md.Warningf("The crawl did not finish (%s). Results are partial.", r.StopReason)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeTotals(md *markdown.Markdown, r *model.CrawlResult) {
	t := r.Totals
	md.H2("Totals")
	md.PlainText("")

	counts := []struct {
		label string
		n     int
	}{
		{"Emails", t.Emails},
		{"People", t.People},
		{"Phones", t.Phones},
		{"Social platforms", t.SocialPlatforms},
		{"Technologies", t.Technologies},
		{"Images", t.Images},
		{"Forms", t.Forms},
		{"OpenGraph pages", t.OGPages},
	}
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.label, strconv.Itoa(c.n)}
	}
	md.Table(markdown.TableSet{Header: []string{"Kind", "Count"}, Rows: rows})
	md.PlainText("")

	// Images and OG pages dwarf the contact counts, so they stay out of the chart.
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Leads Found"),
		piechart.WithShowData(true),
	)
	plotted := 0
	for _, c := range counts[:5] {
		if c.n > 0 {
			chart.LabelAndIntValue(c.label, uint64(c.n))
			plotted++
		}
	}
	if plotted > 0 {
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	} else {
		md.Note("No contact information was found on this site.")
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeEntities(md *markdown.Markdown, r *model.CrawlResult) {
	if len(r.Emails) > 0 {
		rows := make([][]string, len(r.Emails))
		for i, e := range r.Emails {
			rows[i] = []string{e.Email, e.PageURL}
		}
		w.writeTable(md, "Emails", []string{"Email", "Page"}, rows)
	}

	if len(r.People) > 0 {
		rows := make([][]string, len(r.People))
		for i, p := range r.People {
			rows[i] = []string{p.Name, orDash(p.Title), orDash(p.Email), orDash(p.Phone), orDash(p.LinkedInURL)}
		}
		w.writeTable(md, "People", []string{"Name", "Title", "Email", "Phone", "LinkedIn"}, rows)
	}

	if len(r.Phones) > 0 {
		rows := make([][]string, len(r.Phones))
		for i, p := range r.Phones {
			rows[i] = []string{p.Phone, orDash(p.PageURL)}
		}
		w.writeTable(md, "Phones", []string{"Phone", "Page"}, rows)
	}

	if social := r.SocialList(); len(social) > 0 {
		rows := make([][]string, len(social))
		for i, s := range social {
			rows[i] = []string{s.Platform.String(), s.URL, orDash(truncateString(s.Text, 40))}
		}
		w.writeTable(md, "Social Profiles", []string{"Platform", "URL", "Link Text"}, rows)
	}

	if techs := r.TechnologyList(); len(techs) > 0 {
		rows := make([][]string, len(techs))
		for i, t := range techs {
			rows[i] = []string{string(t.Category), t.Name}
		}
		w.writeTable(md, "Technologies", []string{"Category", "Name"}, rows)
	}

	if len(r.Forms) > 0 {
		rows := make([][]string, len(r.Forms))
		for i, f := range r.Forms {
			names := make([]string, 0, len(f.Fields))
			for _, field := range f.Fields {
				names = append(names, field.Name)
			}
			rows[i] = []string{
				f.Method,
				f.ActionURL,
				truncateString(strings.Join(names, ", "), 50),
				yesNo(f.HasCSRF),
				yesNo(f.HasFileUpload),
			}
		}
		w.writeTable(md, "Forms", []string{"Method", "Action", "Fields", "CSRF", "Upload"}, rows)
	}

	var exifRows [][]string
	for _, img := range r.Images {
		if img.EXIF == nil {
			continue
		}
		exifRows = append(exifRows, []string{
			img.URL,
			orDash(strings.TrimSpace(img.EXIF.Make + " " + img.EXIF.Model)),
			orDash(img.EXIF.Software),
			orDash(img.EXIF.Artist),
			yesNo(img.EXIF.HasGPS),
		})
	}
	if len(exifRows) > 0 {
		w.writeTable(md, "Image EXIF", []string{"Image", "Camera", "Software", "Artist", "GPS"}, exifRows)
		for _, img := range r.Images {
			if img.EXIF != nil && img.EXIF.HasGPS {
				md.Cautionf("%s embeds GPS coordinates.", img.URL)
				md.PlainText("")
			}
		}
	}

	if meta := r.Metadata; meta != nil && meta.Icons.MainImage != "" {
		md.H2("Brand Image")
		md.PlainText("")
		md.PlainTextf("![%s](%s)", r.Domain, meta.Icons.MainImage)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeTable(md *markdown.Markdown, title string, header []string, rows [][]string) {
	md.H2(title)
	md.PlainText("")
	md.Table(markdown.TableSet{Header: header, Rows: rows})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Errors) > 0 {
		md.H2("Errors")
		md.PlainText("")
		md.BulletList(report.Errors...)
		md.PlainText("")
	}
	if len(report.Result.VisitedURLs) > 0 {
		md.Details("Visited pages", strings.Join(report.Result.VisitedURLs, "\n"))
		md.PlainText("")
	}
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by leadcrawl*")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
