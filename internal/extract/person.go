package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/leadcrawl/internal/model"
)

// Name rules for a plausible person name.
const (
	minNameWords = 2
	maxNameWords = 3
	minNameLen   = 5
	maxTitleLen  = 80
)

// nameBlocklist holds navigation and section vocabulary that looks like
// a capitalized two-word name ("Contact Us", "Our Team").
var nameBlocklist = map[string]bool{
	"about": true, "account": true, "all": true, "blog": true, "careers": true,
	"click": true, "company": true, "contact": true, "cookie": true, "cookies": true,
	"copyright": true, "email": true, "follow": true, "get": true, "here": true,
	"home": true, "in": true, "info": true, "learn": true, "login": true,
	"menu": true, "more": true, "news": true, "our": true, "phone": true,
	"policy": true, "privacy": true, "products": true, "read": true, "rights": true,
	"reserved": true, "send": true, "services": true, "share": true, "sign": true,
	"solutions": true, "started": true, "support": true, "team": true, "terms": true,
	"touch": true, "us": true, "view": true, "welcome": true, "write": true,
}

// PersonExtractor finds people in team sections, around mailto: links
// and in structured data.
type PersonExtractor struct {
	// sectionRegex matches class/id values of team and contact sections.
	sectionRegex *regexp.Regexp

	// titleSelector finds the job title element of a person card.
	titleSelector string

	// nameSelector finds name candidates inside a team section.
	nameSelector string
}

// NewPersonExtractor creates a new PersonExtractor.
func NewPersonExtractor() *PersonExtractor {
	return &PersonExtractor{
		sectionRegex:  regexp.MustCompile(`(?i)team|staff|people|leadership|contact|about|member|founder|equipe|management`),
		titleSelector: `[class*="title"], [class*="role"], [class*="position"], [class*="job"]`,
		nameSelector:  `h2, h3, h4, h5, strong, [class*="name"]`,
	}
}

// Name returns the extractor name.
func (e *PersonExtractor) Name() string {
	return "person"
}

// Extract appends the people of the page, one record per lower-cased name.
func (e *PersonExtractor) Extract(doc *Document, out *Findings) error {
	c := &personCollector{pageURL: doc.Page.URL, index: make(map[string]int)}

	e.fromSections(doc, c)
	e.fromMailto(doc, c)
	for _, sd := range doc.StructuredData() {
		for _, p := range sd.People {
			rec := model.PersonRecord{Name: p.Name, Title: p.JobTitle, Email: p.Email}
			if isLinkedInProfile(p.URL) {
				rec.LinkedInURL = p.URL
			}
			c.add(rec)
		}
	}

	out.People = append(out.People, c.people...)
	return nil
}

func (e *PersonExtractor) fromSections(doc *Document, c *personCollector) {
	sections := doc.DOM.Find("section, div, ul, article, aside").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		return e.sectionRegex.MatchString(class + " " + id)
	})

	sections.Each(func(_ int, section *goquery.Selection) {
		section.Find(e.nameSelector).Each(func(_ int, cand *goquery.Selection) {
			if cand.Is(e.titleSelector) && !cand.Is(`[class*="name"]`) {
				return
			}
			name := collapseSpace(cand.Text())
			if !IsPlausibleName(normalizeName(name)) {
				return
			}
			card := e.cardOf(cand, section)
			if card == nil {
				return
			}
			rec := e.fromCard(card, cand)
			rec.Name = name
			c.add(rec)
		})
	})
}

// cardOf walks up from a name element, at most three levels and never past
// section, to the first ancestor that carries a person marker.
func (e *PersonExtractor) cardOf(name, section *goquery.Selection) *goquery.Selection {
	card := name.Parent()
	for range 3 {
		if card.Length() == 0 {
			return nil
		}
		if e.hasMarker(card) {
			return card
		}
		if card.IsSelection(section) {
			return nil
		}
		card = card.Parent()
	}
	return nil
}

func (e *PersonExtractor) hasMarker(card *goquery.Selection) bool {
	if card.Find(e.titleSelector).Length() > 0 {
		return true
	}
	found := false
	card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		found = isLinkedInProfile(href) || hasSchemePrefix(href, "tel:") || hasSchemePrefix(href, "mailto:")
		return !found
	})
	return found
}

func (e *PersonExtractor) fromCard(card, name *goquery.Selection) model.PersonRecord {
	var rec model.PersonRecord

	card.Find(e.titleSelector).EachWithBreak(func(_ int, t *goquery.Selection) bool {
		if t.IsSelection(name) {
			return true
		}
		rec.Title = plausibleTitle(t.Text())
		return rec.Title == ""
	})
	if rec.Title == "" {
		if next := name.NextFiltered("p, span, small, em, div"); next.Length() > 0 && next.Find("a").Length() == 0 {
			rec.Title = plausibleTitle(next.Text())
		}
	}

	card.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		switch {
		case rec.Email == "" && hasSchemePrefix(href, "mailto:"):
			for _, addr := range mailtoAddresses(href) {
				if email, ok := NormalizeEmail(addr); ok {
					rec.Email = email
					break
				}
			}
		case rec.Phone == "" && hasSchemePrefix(href, "tel:"):
			if number, ok := telNumber(href); ok {
				rec.Phone, _ = NormalizePhone(number)
			}
		case rec.LinkedInURL == "" && isLinkedInProfile(href):
			rec.LinkedInURL = strings.TrimSpace(href)
		}
	})
	return rec
}

func (e *PersonExtractor) fromMailto(doc *Document, c *personCollector) {
	doc.DOM.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		addrs := mailtoAddresses(href)
		if len(addrs) == 0 {
			return
		}
		email, ok := NormalizeEmail(addrs[0])
		if !ok {
			return
		}

		rec := model.PersonRecord{Email: email}
		if text := collapseSpace(a.Text()); IsPlausibleName(normalizeName(text)) {
			rec.Name = text
			c.add(rec)
			return
		}

		container := a.Closest("li, tr, article, p, td, div")
		if container.Length() == 0 {
			return
		}
		container.Find("h2, h3, h4, h5, strong, b").EachWithBreak(func(_ int, h *goquery.Selection) bool {
			if text := collapseSpace(h.Text()); IsPlausibleName(normalizeName(text)) {
				rec.Name = text
			}
			return rec.Name == ""
		})
		if rec.Name == "" {
			rec.Name, rec.Title = nameFromLines(visibleText(container.Get(0)))
		}
		if rec.Name != "" {
			c.add(rec)
		}
	})
}

// nameFromLines returns the first plausible name among the segments of
// text and the segment following it as a title.
func nameFromLines(text string) (name, title string) {
	segments := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '|' || r == ',' || r == '·' || r == '–' || r == '—'
	})
	for i, seg := range segments {
		seg = strings.TrimSpace(seg)
		if !IsPlausibleName(normalizeName(seg)) {
			continue
		}
		if i+1 < len(segments) {
			next := strings.TrimSpace(segments[i+1])
			if !strings.Contains(next, "@") && !IsPlausibleName(normalizeName(next)) {
				title = plausibleTitle(next)
			}
		}
		return seg, title
	}
	return "", ""
}

// IsPlausibleName reports whether s looks like a person's name: two or three
// capitalized words, at least five characters, no digits and no
// navigation vocabulary.
func IsPlausibleName(s string) bool {
	if len(s) < minNameLen || strings.ContainsAny(s, "@/:") {
		return false
	}
	words := strings.Fields(s)
	if len(words) < minNameWords || len(words) > maxNameWords {
		return false
	}
	for _, w := range words {
		if nameBlocklist[strings.ToLower(strings.Trim(w, ".,"))] {
			return false
		}
		for i, r := range w {
			switch {
			case unicode.IsDigit(r):
				return false
			case i == 0 && !unicode.IsUpper(r):
				return false
			case !unicode.IsLetter(r) && r != '-' && r != '\'' && r != '.':
				return false
			}
		}
	}
	return true
}

// normalizeName collapses whitespace and title-cases all-caps names.
func normalizeName(s string) string {
	s = collapseSpace(s)
	if s != "" && s == strings.ToUpper(s) && s != strings.ToLower(s) {
		s = cases.Title(language.Und).String(strings.ToLower(s))
	}
	return s
}

func plausibleTitle(s string) string {
	s = collapseSpace(s)
	if s == "" || len(s) > maxTitleLen || strings.Contains(s, "@") {
		return ""
	}
	return s
}

func isLinkedInProfile(href string) bool {
	lower := strings.ToLower(href)
	return strings.Contains(lower, "linkedin.com/in/")
}

// personCollector dedups people of one page by lower-cased name,
// folding later details into the first record.
type personCollector struct {
	pageURL string
	index   map[string]int
	people  []model.PersonRecord
}

func (c *personCollector) add(rec model.PersonRecord) {
	rec.Name = normalizeName(rec.Name)
	if !IsPlausibleName(rec.Name) {
		return
	}
	key := strings.ToLower(rec.Name)
	if i, ok := c.index[key]; ok {
		c.people[i].Merge(rec)
		return
	}
	rec.PageURL = c.pageURL
	rec.Source = model.PersonSourceWebsite
	c.index[key] = len(c.people)
	c.people = append(c.people, rec)
}
