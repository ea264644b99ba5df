package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/leadcrawl/internal/model"
)

func extractMetadata(t *testing.T, body string) *model.PageMetadata {
	t.Helper()

	doc := newTestDocument(t, "https://acme.test/", 0, body)
	out := &Findings{}
	if err := NewMetadataExtractor().Extract(doc, out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Metadata == nil {
		t.Fatal("expected metadata")
	}
	return out.Metadata
}

// TestMetadataExtractor tests meta, OpenGraph and icon extraction.
func TestMetadataExtractor(t *testing.T) {
	t.Parallel()

	t.Run("splits meta tags and resolves icons", func(t *testing.T) {
		t.Parallel()

		md := extractMetadata(t, `
			<html lang="en-us"><head>
			<title> Acme   Corp </title>
			<meta name="description" content="We build rockets">
			<meta name="keywords" content="rockets, space ,, launch">
			<meta property="og:title" content="Acme">
			<meta property="og:image" content="/img/og.png">
			<meta name="twitter:card" content="summary">
			<link rel="shortcut icon" href="/favicon.png">
			<link rel="apple-touch-icon" href="/apple.png">
			</head><body>
			<header><img src="/img/brand.svg"></header>
			<img class="site-logo" src="/img/logo.png">
			</body></html>`)

		if md.Title != "Acme Corp" {
			t.Errorf("unexpected title %q", md.Title)
		}
		if md.Description != "We build rockets" {
			t.Errorf("unexpected description %q", md.Description)
		}
		if md.Language != "en-US" {
			t.Errorf("unexpected language %q", md.Language)
		}
		if diff := cmp.Diff([]string{"rockets", "space", "launch"}, md.Keywords); diff != "" {
			t.Errorf("keywords mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(map[string]string{"og:title": "Acme", "og:image": "/img/og.png"}, md.OpenGraph); diff != "" {
			t.Errorf("open graph mismatch (-want +got):\n%s", diff)
		}
		if md.TwitterCard["twitter:card"] != "summary" {
			t.Errorf("unexpected twitter card %v", md.TwitterCard)
		}
		if _, ok := md.Meta["og:title"]; ok {
			t.Error("og tags must not be stored in Meta")
		}

		want := model.Icons{
			Favicon:        "https://acme.test/favicon.png",
			AppleTouchIcon: "https://acme.test/apple.png",
			OGImage:        "https://acme.test/img/og.png",
			Logo:           "https://acme.test/img/logo.png",
			MainImage:      "https://acme.test/img/og.png",
		}
		if diff := cmp.Diff(want, md.Icons); diff != "" {
			t.Errorf("icons mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("falls back to large image and default favicon", func(t *testing.T) {
		t.Parallel()

		md := extractMetadata(t, `
			<html><body>
			<img src="/thumb.jpg" width="50" height="50">
			<img src="/hero.jpg" width="800px" height="400">
			</body></html>`)

		want := model.Icons{
			Favicon:   "https://acme.test/favicon.ico",
			MainImage: "https://acme.test/hero.jpg",
		}
		if diff := cmp.Diff(want, md.Icons); diff != "" {
			t.Errorf("icons mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("uses the structured data logo", func(t *testing.T) {
		t.Parallel()

		md := extractMetadata(t, `
			<script type="application/ld+json">{"@type":"Organization","name":"Acme","logo":"https://cdn.acme.test/logo.svg"}</script>`)

		if md.Icons.Logo != "https://cdn.acme.test/logo.svg" {
			t.Errorf("unexpected logo %q", md.Icons.Logo)
		}
		if len(md.StructuredData) != 1 || md.StructuredData[0].Name != "Acme" {
			t.Errorf("unexpected structured data %+v", md.StructuredData)
		}
	})
}
