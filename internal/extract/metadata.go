package extract

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/language"

	"github.com/nao1215/leadcrawl/internal/model"
)

// largeImageMinSize is the minimum declared width and height of an inline
// image that may serve as the main image.
const largeImageMinSize = 200

// MetadataExtractor reads the title, meta tags, OpenGraph and Twitter card
// tags, JSON-LD and icons of a page.
type MetadataExtractor struct{}

// NewMetadataExtractor creates a new MetadataExtractor.
func NewMetadataExtractor() *MetadataExtractor {
	return &MetadataExtractor{}
}

// Name returns the extractor name.
func (e *MetadataExtractor) Name() string {
	return "metadata"
}

// Extract sets out.Metadata.
func (e *MetadataExtractor) Extract(doc *Document, out *Findings) error {
	md := &model.PageMetadata{
		URL:         doc.Page.URL,
		Title:       collapseSpace(doc.DOM.Find("title").First().Text()),
		Meta:        make(map[string]string),
		OpenGraph:   make(map[string]string),
		TwitterCard: make(map[string]string),
	}

	doc.DOM.Find("meta").Each(func(_ int, s *goquery.Selection) {
		key, _ := s.Attr("property")
		if key == "" {
			key, _ = s.Attr("name")
		}
		key = strings.ToLower(strings.TrimSpace(key))
		content, ok := s.Attr("content")
		if key == "" || !ok {
			return
		}
		content = strings.TrimSpace(content)

		var dst map[string]string
		switch {
		case strings.HasPrefix(key, "og:"):
			dst = md.OpenGraph
		case strings.HasPrefix(key, "twitter:"):
			dst = md.TwitterCard
		default:
			dst = md.Meta
		}
		if _, dup := dst[key]; !dup {
			dst[key] = content
		}
	})

	md.Description = md.Meta["description"]
	if md.Description == "" {
		md.Description = md.OpenGraph["og:description"]
	}
	if md.Title == "" {
		md.Title = md.OpenGraph["og:title"]
	}
	md.Keywords = splitKeywords(md.Meta["keywords"])
	if lang, ok := doc.DOM.Find("html").First().Attr("lang"); ok {
		if tag, err := language.Parse(strings.TrimSpace(lang)); err == nil {
			md.Language = tag.String()
		}
	}
	md.StructuredData = doc.StructuredData()
	md.Icons = e.icons(doc, md)

	out.Metadata = md
	return nil
}

func (e *MetadataExtractor) icons(doc *Document, md *model.PageMetadata) model.Icons {
	var icons model.Icons
	resolve := func(href string) string {
		u, _ := doc.Resolve(href)
		return u
	}

	doc.DOM.Find("link[rel][href]").Each(func(_ int, s *goquery.Selection) {
		rel, _ := s.Attr("rel")
		href, _ := s.Attr("href")
		rels := strings.Fields(strings.ToLower(rel))
		for _, r := range rels {
			switch {
			case r == "icon" && icons.Favicon == "":
				icons.Favicon = resolve(href)
			case (r == "apple-touch-icon" || r == "apple-touch-icon-precomposed") && icons.AppleTouchIcon == "":
				icons.AppleTouchIcon = resolve(href)
			}
		}
	})
	if icons.Favicon == "" {
		icons.Favicon = resolve("/favicon.ico")
	}
	if v := md.OpenGraph["og:image"]; v != "" {
		icons.OGImage = resolve(v)
	}
	if v := md.TwitterCard["twitter:image"]; v != "" {
		icons.TwitterImage = resolve(v)
	}
	icons.Logo = e.logo(doc)

	large := e.largeImage(doc)
	for _, candidate := range []string{icons.OGImage, icons.TwitterImage, icons.AppleTouchIcon, icons.Logo, large, icons.Favicon} {
		if candidate != "" {
			icons.MainImage = candidate
			break
		}
	}
	return icons
}

// logo prefers an image labeled as a logo, then the first image in the
// page header or navigation, then the JSON-LD organization logo.
func (e *MetadataExtractor) logo(doc *Document) string {
	var logo string
	doc.DOM.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		alt, _ := s.Attr("alt")
		if strings.Contains(strings.ToLower(class+" "+id+" "+alt), "logo") {
			logo, _ = doc.Resolve(imageSource(s))
		}
		return logo == ""
	})
	if logo == "" {
		if s := doc.DOM.Find("header img, nav img").First(); s.Length() > 0 {
			logo, _ = doc.Resolve(imageSource(s))
		}
	}
	if logo == "" {
		for _, sd := range doc.StructuredData() {
			if sd.Logo == "" {
				continue
			}
			if u, ok := doc.Resolve(sd.Logo); ok {
				return u
			}
		}
	}
	return logo
}

func (e *MetadataExtractor) largeImage(doc *Document) string {
	var found string
	doc.DOM.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		w := dimension(s, "width")
		h := dimension(s, "height")
		if w >= largeImageMinSize && h >= largeImageMinSize {
			found, _ = doc.Resolve(imageSource(s))
		}
		return found == ""
	})
	return found
}

// dimension parses a width/height attribute such as "300" or "300px".
func dimension(s *goquery.Selection, attr string) int {
	v, ok := s.Attr(attr)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func splitKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = collapseSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
