package extract

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/leadcrawl/internal/model"
)

// DefaultEnctype is the encoding of forms without an enctype attribute.
const DefaultEnctype = "application/x-www-form-urlencoded"

// FormExtractor records forms as entry points. Forms are never submitted.
type FormExtractor struct {
	// csrfFieldRegex matches hidden anti-forgery field names.
	csrfFieldRegex *regexp.Regexp

	// csrfMetaNames are <meta name> values that carry a page-wide token.
	csrfMetaNames []string
}

// NewFormExtractor creates a new FormExtractor.
func NewFormExtractor() *FormExtractor {
	return &FormExtractor{
		csrfFieldRegex: regexp.MustCompile(`(?i)csrf|xsrf|authenticity_token|__requestverificationtoken|_token$|nonce`),
		csrfMetaNames:  []string{"csrf-token", "csrf-param", "_csrf", "xsrf-token"},
	}
}

// Name returns the extractor name.
func (e *FormExtractor) Name() string {
	return "form"
}

// Extract appends one entry point per <form>.
func (e *FormExtractor) Extract(doc *Document, out *Findings) error {
	pageToken := false
	doc.DOM.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name, _ := s.Attr("name")
		for _, m := range e.csrfMetaNames {
			if strings.EqualFold(strings.TrimSpace(name), m) {
				pageToken = true
			}
		}
		return !pageToken
	})

	doc.DOM.Find("form").Each(func(_ int, form *goquery.Selection) {
		fp := model.FormEntryPoint{
			PageURL:   doc.Page.URL,
			ActionURL: e.action(doc, form),
			Method:    http.MethodGet,
			Enctype:   DefaultEnctype,
			HasCSRF:   pageToken,
		}
		if m, ok := form.Attr("method"); ok && strings.TrimSpace(m) != "" {
			fp.Method = strings.ToUpper(strings.TrimSpace(m))
		}
		if enc, ok := form.Attr("enctype"); ok && strings.TrimSpace(enc) != "" {
			fp.Enctype = strings.ToLower(strings.TrimSpace(enc))
		}

		fp.Fields = e.fields(form)
		for _, f := range fp.Fields {
			if e.csrfFieldRegex.MatchString(f.Name) {
				fp.HasCSRF = true
			}
			if f.Type == "file" {
				fp.HasFileUpload = true
			}
		}
		out.Forms = append(out.Forms, fp)
	})
	return nil
}

// action resolves the form action; an empty action posts to the page itself.
// Unresolvable actions (javascript:, mailto:) are kept verbatim.
func (e *FormExtractor) action(doc *Document, form *goquery.Selection) string {
	raw, _ := form.Attr("action")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return doc.Page.URL
	}
	if u, ok := doc.Resolve(raw); ok {
		return u
	}
	return raw
}

func (e *FormExtractor) fields(form *goquery.Selection) []model.FormField {
	var fields []model.FormField
	// grouped merges radio and checkbox inputs sharing a name.
	grouped := make(map[string]int)

	form.Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		_, required := s.Attr("required")
		placeholder, _ := s.Attr("placeholder")
		field := model.FormField{
			Name:        strings.TrimSpace(name),
			Required:    required,
			Placeholder: strings.TrimSpace(placeholder),
		}

		switch goquery.NodeName(s) {
		case "select":
			field.Type = "select"
			s.Find("option").Each(func(_ int, o *goquery.Selection) {
				v, ok := o.Attr("value")
				if !ok {
					v = o.Text()
				}
				if v = collapseSpace(v); v != "" {
					field.Options = append(field.Options, v)
				}
			})
		case "textarea":
			field.Type = "textarea"
		default:
			t, _ := s.Attr("type")
			field.Type = strings.ToLower(strings.TrimSpace(t))
			if field.Type == "" {
				field.Type = "text"
			}
			if field.Type == "submit" || field.Type == "button" || field.Type == "reset" || field.Type == "image" {
				return
			}
			if field.Type == "radio" || field.Type == "checkbox" {
				value, _ := s.Attr("value")
				value = strings.TrimSpace(value)
				key := field.Type + "|" + field.Name
				if i, ok := grouped[key]; ok && field.Name != "" {
					if value != "" {
						fields[i].Options = append(fields[i].Options, value)
					}
					fields[i].Required = fields[i].Required || required
					return
				}
				if value != "" {
					field.Options = []string{value}
				}
				grouped[key] = len(fields)
			}
		}
		fields = append(fields, field)
	})
	return fields
}
