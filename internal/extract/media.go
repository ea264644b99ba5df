package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/leadcrawl/internal/model"
)

// lazySourceAttrs carry the real source of lazily loaded images.
var lazySourceAttrs = []string{"data-src", "data-lazy-src", "data-original", "data-lazy"}

// ImageExtractor lists the images referenced by <img> tags.
type ImageExtractor struct{}

// NewImageExtractor creates a new ImageExtractor.
func NewImageExtractor() *ImageExtractor {
	return &ImageExtractor{}
}

// Name returns the extractor name.
func (e *ImageExtractor) Name() string {
	return "image"
}

// Extract appends one record per distinct resolved image URL.
func (e *ImageExtractor) Extract(doc *Document, out *Findings) error {
	seen := make(map[string]bool)
	doc.DOM.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := imageSource(s)
		if src == "" {
			return
		}
		u, ok := doc.Resolve(src)
		if !ok || seen[u] {
			return
		}
		seen[u] = true
		alt, _ := s.Attr("alt")
		out.Images = append(out.Images, model.ImageRecord{
			URL:     u,
			Alt:     collapseSpace(alt),
			PageURL: doc.Page.URL,
			Width:   dimension(s, "width"),
			Height:  dimension(s, "height"),
		})
	})
	return nil
}

// imageSource returns the raw source of an <img>: a lazy-load attribute,
// then src, then the first srcset candidate. Inline data: URIs yield "".
func imageSource(s *goquery.Selection) string {
	var src string
	for _, attr := range lazySourceAttrs {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			src = v
			break
		}
	}
	if src == "" {
		src, _ = s.Attr("src")
	}
	if strings.TrimSpace(src) == "" {
		if set, ok := s.Attr("srcset"); ok {
			src = firstSrcsetCandidate(set)
		}
	}
	src = strings.TrimSpace(src)
	if hasSchemePrefix(src, "data:") {
		return ""
	}
	return src
}

func firstSrcsetCandidate(set string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(set), ",")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
