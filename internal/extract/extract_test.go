package extract

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/leadcrawl/internal/model"
)

// newTestDocument parses body as the page at pageURL.
func newTestDocument(t *testing.T, pageURL string, depth int, body string) *Document {
	t.Helper()
	return newTestDocumentWithHeaders(t, pageURL, depth, body, nil)
}

func newTestDocumentWithHeaders(t *testing.T, pageURL string, depth int, body string, headers http.Header) *Document {
	t.Helper()

	page := &model.Page{
		URL:         pageURL,
		Depth:       depth,
		StatusCode:  http.StatusOK,
		Headers:     headers,
		ContentType: "text/html; charset=utf-8",
		Raw:         []byte(body),
	}
	doc, err := NewDocument(page, nil)
	if err != nil {
		t.Fatalf("NewDocument() error = %v", err)
	}
	return doc
}

type panickingExtractor struct{}

func (panickingExtractor) Name() string { return "panicky" }

func (panickingExtractor) Extract(*Document, *Findings) error {
	panic("boom")
}

type failingExtractor struct{}

func (failingExtractor) Name() string { return "failing" }

func (failingExtractor) Extract(doc *Document, out *Findings) error {
	out.Emails = append(out.Emails, model.EmailRecord{Email: "partial@acme.test", PageURL: doc.Page.URL})
	return errors.New("selector exploded")
}

// TestPipeline tests extractor orchestration.
func TestPipeline(t *testing.T) {
	t.Parallel()

	t.Run("registers built-in extractors in order", func(t *testing.T) {
		t.Parallel()

		want := []string{"email", "phone", "person", "social", "technology", "metadata", "image", "form"}
		if diff := cmp.Diff(want, NewPipeline().Names()); diff != "" {
			t.Errorf("Names() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("isolates a panicking extractor", func(t *testing.T) {
		t.Parallel()

		p := NewEmptyPipeline()
		p.Register(panickingExtractor{})
		p.Register(NewEmailExtractor())

		doc := newTestDocument(t, "https://acme.test/", 0, `<a href="mailto:jane@acme.test">Jane</a>`)
		findings, errs := p.Run(doc)

		if len(errs) != 1 {
			t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
		}
		if !errors.Is(errs[0], ErrPanic) {
			t.Errorf("expected ErrPanic, got %v", errs[0])
		}
		var extErr *Error
		if !errors.As(errs[0], &extErr) {
			t.Fatalf("expected *Error, got %T", errs[0])
		}
		if extErr.Extractor != "panicky" || extErr.PageURL != "https://acme.test/" {
			t.Errorf("unexpected error fields: %+v", extErr)
		}
		if len(findings.Emails) != 1 || findings.Emails[0].Email != "jane@acme.test" {
			t.Errorf("expected email from the healthy extractor, got %+v", findings.Emails)
		}
	})

	t.Run("discards partial output of a failing extractor", func(t *testing.T) {
		t.Parallel()

		p := NewEmptyPipeline()
		p.Register(failingExtractor{})

		findings, errs := p.Run(newTestDocument(t, "https://acme.test/", 0, "<p>hi</p>"))
		if len(errs) != 1 {
			t.Fatalf("expected 1 error, got %d", len(errs))
		}
		if len(findings.Emails) != 0 {
			t.Errorf("expected no emails, got %+v", findings.Emails)
		}
	})

	t.Run("runs home page extractors only on the seed page", func(t *testing.T) {
		t.Parallel()

		p := NewEmptyPipeline()
		p.Register(NewTechnologyExtractor())
		body := `<link rel="stylesheet" href="/wp-content/themes/acme/style.css">`

		home, _ := p.Run(newTestDocument(t, "https://acme.test/", 0, body))
		if len(home.Technologies) != 1 {
			t.Errorf("expected 1 technology on the home page, got %+v", home.Technologies)
		}
		inner, _ := p.Run(newTestDocument(t, "https://acme.test/about", 1, body))
		if len(inner.Technologies) != 0 {
			t.Errorf("expected no technologies on an inner page, got %+v", inner.Technologies)
		}
	})
}

// TestDocument tests the shared parsed page.
func TestDocument(t *testing.T) {
	t.Parallel()

	t.Run("resolves links against base href", func(t *testing.T) {
		t.Parallel()

		doc := newTestDocument(t, "https://acme.test/blog/post", 1, `
			<html><head><base href="https://acme.test/docs/"></head>
			<body>
				<a href="intro">Intro</a>
				<a href="intro#top">Intro again</a>
				<a href="/about">About</a>
				<a href="javascript:void(0)">JS</a>
				<a href="mailto:a@acme.test">Mail</a>
			</body></html>`)

		want := []string{"https://acme.test/docs/intro", "https://acme.test/about"}
		if diff := cmp.Diff(want, doc.Links()); diff != "" {
			t.Errorf("Links() mismatch (-want +got):\n%s", diff)
		}
		if got := len(doc.Anchors()); got != 5 {
			t.Errorf("expected 5 anchors, got %d", got)
		}
	})

	t.Run("falls back to aria-label for anchor text", func(t *testing.T) {
		t.Parallel()

		doc := newTestDocument(t, "https://acme.test/", 0,
			`<a href="https://facebook.com/acme" aria-label="Facebook"><svg></svg></a>`)
		if got := doc.Anchors()[0].Text; got != "Facebook" {
			t.Errorf("expected Facebook, got %q", got)
		}
	})

	t.Run("visible text skips scripts and styles", func(t *testing.T) {
		t.Parallel()

		doc := newTestDocument(t, "https://acme.test/", 0, `
			<html><head><title>Title</title><style>p{}</style></head>
			<body><p>Hello   world</p><script>var x = "hidden";</script><p>Bye</p></body></html>`)
		if got := doc.Text(); got != "Hello world\nBye\n" {
			t.Errorf("unexpected text %q", got)
		}
	})
}

// TestParseJSONLD tests structured data normalization.
func TestParseJSONLD(t *testing.T) {
	t.Parallel()

	t.Run("expands graph and nested values", func(t *testing.T) {
		t.Parallel()

		got := parseJSONLD([]byte(`{
			"@context": "https://schema.org",
			"@graph": [
				{
					"@type": "Organization",
					"name": "Acme",
					"url": "https://acme.test/",
					"logo": {"@type": "ImageObject", "url": "https://acme.test/logo.png"},
					"sameAs": ["https://facebook.com/acme", "https://x.com/acme"],
					"founder": [{"@type": "Person", "name": "Ada Lovelace", "jobTitle": "Founder"}, "https://example.org/bob"]
				},
				{"@type": ["WebSite"], "name": "Acme site"}
			]
		}`))

		want := []model.StructuredData{
			{
				Type:   "Organization",
				Name:   "Acme",
				URL:    "https://acme.test/",
				Logo:   "https://acme.test/logo.png",
				SameAs: []string{"https://facebook.com/acme", "https://x.com/acme"},
				People: []model.StructuredPerson{{Name: "Ada Lovelace", JobTitle: "Founder"}},
			},
			{Type: "WebSite", Name: "Acme site"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("parseJSONLD() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ignores malformed blocks", func(t *testing.T) {
		t.Parallel()

		if got := parseJSONLD([]byte(`{"@type": "Organization",`)); len(got) != 0 {
			t.Errorf("expected no nodes, got %+v", got)
		}
	})

	t.Run("accepts top level arrays", func(t *testing.T) {
		t.Parallel()

		got := parseJSONLD([]byte(`[{"@type":"Person","name":"Grace Hopper","email":"mailto:grace@acme.test"}]`))
		if len(got) != 1 || len(got[0].People) != 1 {
			t.Fatalf("expected one person node, got %+v", got)
		}
		if got[0].People[0].Email != "grace@acme.test" {
			t.Errorf("expected mailto prefix stripped, got %q", got[0].People[0].Email)
		}
	})
}
