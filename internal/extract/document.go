package extract

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/leadcrawl/internal/model"
	"github.com/nao1215/leadcrawl/internal/urlnorm"
)

// Anchor is an <a href> of a page.
type Anchor struct {
	// Href is the raw attribute value.
	Href string
	// URL is the resolved absolute URL; empty when Href is not navigational.
	URL string
	// Text is the anchor text, or its aria-label/title when the text is empty.
	Text string
	// Node is the <a> element.
	Node *html.Node
}

// Document is a parsed page shared by all extractors of one pipeline run.
type Document struct {
	Page *model.Page
	Root *html.Node
	DOM  *goquery.Document

	norm *urlnorm.Normalizer
	base string

	anchorsOnce sync.Once
	anchors     []Anchor

	textOnce sync.Once
	text     string

	ldOnce sync.Once
	ld     []model.StructuredData
}

// NewDocument parses page. A nil norm gets a private Normalizer.
func NewDocument(page *model.Page, norm *urlnorm.Normalizer) (*Document, error) {
	root, err := html.Parse(bytes.NewReader(page.Raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", page.URL, err)
	}
	if norm == nil {
		norm = urlnorm.New()
	}

	d := &Document{
		Page: page,
		Root: root,
		DOM:  goquery.NewDocumentFromNode(root),
		norm: norm,
		base: page.URL,
	}

	// <base href> changes how every relative link on the page resolves.
	if href, ok := d.DOM.Find("base[href]").First().Attr("href"); ok {
		if resolved, ok := norm.Normalize(href, page.URL); ok {
			d.base = resolved
		}
	}
	return d, nil
}

// Resolve returns href as an absolute canonical URL relative to the page.
func (d *Document) Resolve(href string) (string, bool) {
	return d.norm.Normalize(href, d.base)
}

// HTML returns the raw page body.
func (d *Document) HTML() string {
	return string(d.Page.Raw)
}

// Anchors returns every <a href> in document order.
func (d *Document) Anchors() []Anchor {
	d.anchorsOnce.Do(func() {
		d.DOM.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			a := Anchor{Href: strings.TrimSpace(href), Text: anchorText(s), Node: s.Get(0)}
			if u, ok := d.Resolve(a.Href); ok {
				a.URL = u
			}
			d.anchors = append(d.anchors, a)
		})
	})
	return d.anchors
}

// Links returns the distinct resolved anchor URLs in document order.
func (d *Document) Links() []string {
	seen := make(map[string]bool)
	var links []string
	for _, a := range d.Anchors() {
		if a.URL == "" || seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		links = append(links, a.URL)
	}
	return links
}

// Text returns the visible text of the page, one text node per line.
// Script, style and template contents are skipped.
func (d *Document) Text() string {
	d.textOnce.Do(func() {
		d.text = visibleText(d.Root)
	})
	return d.text
}

// StructuredData returns the normalized JSON-LD nodes of the page.
func (d *Document) StructuredData() []model.StructuredData {
	d.ldOnce.Do(func() {
		d.DOM.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
			d.ld = append(d.ld, parseJSONLD([]byte(s.Text()))...)
		})
	})
	return d.ld
}

func anchorText(s *goquery.Selection) string {
	text := collapseSpace(s.Text())
	if text != "" {
		return text
	}
	for _, attr := range []string{"aria-label", "title"} {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return collapseSpace(v)
		}
	}
	if alt, ok := s.Find("img[alt]").First().Attr("alt"); ok {
		return collapseSpace(alt)
	}
	return ""
}

var skippedTextElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

func visibleText(root *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedTextElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := collapseSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return b.String()
}

// collapseSpace trims s and folds runs of whitespace (including NBSP) into one space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
