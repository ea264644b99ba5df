package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/leadcrawl/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.CrawlReport {
	report := model.NewCrawlReport("https://acme.test")
	report.StartedAt = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	r := model.NewCrawlResult("https://acme.test/", "acme.test")
	r.Emails = []model.EmailRecord{{Email: "sales@acme.test", PageURL: "https://acme.test/contact"}}
	r.People = []model.PersonRecord{{
		Name:    "Jane Doe",
		Title:   "CEO",
		PageURL: "https://acme.test/team",
		Source:  model.PersonSourceWebsite,
	}}
	r.Phones = []model.PhoneRecord{{Phone: "+33102030405", PageURL: "https://acme.test/contact"}}
	r.SocialLinks[model.SocialPlatformLinkedIn] = []model.SocialProfile{{
		Platform: model.SocialPlatformLinkedIn,
		URL:      "https://www.linkedin.com/company/acme",
		PageURL:  "https://acme.test/",
	}}
	r.Technologies[model.TechCategory("cms")] = []string{"WordPress"}
	r.Forms = []model.FormEntryPoint{{
		PageURL:   "https://acme.test/contact",
		ActionURL: "https://acme.test/send",
		Method:    "POST",
		Fields:    []model.FormField{{Name: "email", Type: "email"}},
		HasCSRF:   true,
	}}
	r.Images = []model.ImageRecord{{
		URL:     "https://acme.test/team.jpg",
		PageURL: "https://acme.test/team",
		EXIF:    &model.ImageEXIF{Make: "Canon", Model: "EOS R5", HasGPS: true},
	}}
	r.VisitedURLs = []string{"https://acme.test/", "https://acme.test/contact", "https://acme.test/team"}
	r.Summary = "Acme Corp: Acme builds rockets."
	r.ComputeTotals()
	report.Result = r
	return report
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and every entity section", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		output := buf.String()
		for _, want := range []string{
			"LEADCRAWL REPORT",
			"Site:           https://acme.test/",
			"Pages Visited:  3 (0 failed)",
			"Status:         Complete",
			"Acme Corp: Acme builds rockets.",
			"[+] sales@acme.test  (https://acme.test/contact)",
			"[+] Jane Doe, CEO",
			"[+] +33102030405",
			"Linkedin   https://www.linkedin.com/company/acme",
			"Cms        WordPress",
			"POST https://acme.test/send  (1 fields) [csrf]",
			"camera: Canon EOS R5  [gps]",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "VISITED PAGES") {
			t.Error("expected visited pages only in verbose mode")
		}
	})

	t.Run("hides empty sections unless showEmpty is set", func(t *testing.T) {
		t.Parallel()

		report := model.NewCrawlReport("https://empty.test")
		report.Result = model.NewCrawlResult("https://empty.test/", "empty.test")

		var hidden, shown bytes.Buffer
		if _, err := NewSimpleWriter(&hidden).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := NewSimpleWriter(&shown, WithShowEmpty(true)).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(hidden.String(), "EMAILS") {
			t.Error("expected empty EMAILS section to be hidden")
		}
		if !strings.Contains(shown.String(), "EMAILS") || !strings.Contains(shown.String(), "None found") {
			t.Error("expected empty EMAILS section to be shown")
		}
	})

	t.Run("verbose mode lists visited pages", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "VISITED PAGES") {
			t.Error("expected visited pages section")
		}
	})

	t.Run("shows partial status and step errors", func(t *testing.T) {
		t.Parallel()

		report := createTestReport()
		report.Result.StopReason = model.StopReasonTimeLimit
		report.AddError(errors.New("failed to save report"))

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Stopped at time limit") {
			t.Error("expected time limit status")
		}
		if !strings.Contains(buf.String(), "[+] failed to save report") {
			t.Error("expected step error")
		}
	})

	t.Run("rejects a report without result", func(t *testing.T) {
		t.Parallel()

		_, err := NewSimpleWriter(&bytes.Buffer{}).Write(model.NewCrawlReport("https://acme.test"))
		if !errors.Is(err, ErrNoResult) {
			t.Errorf("expected ErrNoResult, got %v", err)
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes the report with snake_case fields", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if strings.Count(output, "\n") != 1 {
			t.Error("expected compact output on one line")
		}
		for _, key := range []string{`"run_id"`, `"visited_urls"`, `"og_data_by_page"`, `"social_links"`} {
			if !strings.Contains(output, key) {
				t.Errorf("expected key %s", key)
			}
		}

		var decoded model.CrawlReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if diff := cmp.Diff(createTestReport().Result.Totals, decoded.Result.Totals); diff != "" {
			t.Errorf("totals mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"run_id\"") {
			t.Error("expected two-space indentation")
		}
	})

	t.Run("result only omits run bookkeeping", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithResultOnly()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), `"run_id"`) {
			t.Error("expected no run id")
		}
		if !strings.Contains(buf.String(), `"base_url":"https://acme.test/"`) {
			t.Errorf("expected base url, got %s", buf.String())
		}

		_, err := NewJSONWriter(&buf, WithResultOnly()).Write(model.NewCrawlReport("https://acme.test"))
		if !errors.Is(err, ErrNoResult) {
			t.Errorf("expected ErrNoResult, got %v", err)
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables and a pie chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{
			"# Leadcrawl Report: acme.test",
			"## Emails",
			"sales@acme.test",
			"## People",
			"Jane Doe",
			"## Social Profiles",
			"## Technologies",
			"WordPress",
			"## Forms",
			"## Image EXIF",
			"Canon EOS R5",
			"```mermaid",
			"Leads Found",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("notes an empty crawl instead of a chart", func(t *testing.T) {
		t.Parallel()

		report := model.NewCrawlReport("https://empty.test")
		report.Result = model.NewCrawlResult("https://empty.test/", "empty.test")

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "```mermaid") {
			t.Error("expected no chart")
		}
		if !strings.Contains(buf.String(), "No contact information") {
			t.Error("expected empty-crawl note")
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var text, js bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&js))
		n, err := mw.Write(createTestReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != text.Len()+js.Len() {
			t.Errorf("total bytes: got %d, want %d", n, text.Len()+js.Len())
		}
		if text.Len() == 0 || js.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
	})

	t.Run("stops at the first error", func(t *testing.T) {
		t.Parallel()

		var js bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&bytes.Buffer{}), NewJSONWriter(&js))
		if _, err := mw.Write(model.NewCrawlReport("https://acme.test")); !errors.Is(err, ErrNoResult) {
			t.Fatalf("expected ErrNoResult, got %v", err)
		}
		if js.Len() != 0 {
			t.Error("expected later writer to be skipped")
		}
	})
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short string is unchanged", input: "abc", maxLen: 5, want: "abc"},
		{name: "long string gets ellipsis", input: "abcdefgh", maxLen: 6, want: "abc..."},
		{name: "tiny limit cuts without ellipsis", input: "abcdef", maxLen: 2, want: "ab"},
		{name: "counts runes not bytes", input: "cafés du monde", maxLen: 7, want: "café..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
