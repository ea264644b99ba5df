package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/nao1215/leadcrawl/internal/model"
)

// MinPhoneDigits is the minimum number of digits of an accepted phone number.
const MinPhoneDigits = 10

// maxPhoneDigits is the E.164 upper bound; longer digit runs are identifiers.
const maxPhoneDigits = 15

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	// phonePattern matches digit runs with optional separators in visible
	// text, e.g. "0102030405", "01 02 03 04 05", "+33 1 23 45 67 89",
	// "(555) 123-4567". Separators never include newlines so numbers on
	// adjacent lines stay apart. Matches touching another digit are dropped
	// by the caller.
	phonePattern = regexp.MustCompile(`(?:\+\d{1,3}[ .\-]?)?(?:\(\d{1,4}\)[ .\-]?)?\d(?:[ .\-]?\d){8,14}`)

	datePattern = regexp.MustCompile(`^\d{4}[ .\-/]\d{1,2}[ .\-/]\d{1,2}`)
)

// assetSuffixes are "TLDs" produced by retina asset names such as logo@2x.png.
var assetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".css", ".js", ".ico"}

// ignoredEmailDomains are placeholders and error-reporting endpoints.
var ignoredEmailDomains = []string{"example.com", "example.org", "example.net", "domain.com", "sentry.io", "wixpress.com"}

// EmailExtractor finds email addresses in the raw HTML and in mailto: links.
type EmailExtractor struct{}

// NewEmailExtractor creates a new EmailExtractor.
func NewEmailExtractor() *EmailExtractor {
	return &EmailExtractor{}
}

// Name returns the extractor name.
func (e *EmailExtractor) Name() string {
	return "email"
}

// Extract appends every distinct address of the page.
func (e *EmailExtractor) Extract(doc *Document, out *Findings) error {
	seen := make(map[string]bool)
	add := func(raw string) {
		email, ok := NormalizeEmail(raw)
		if !ok || seen[email] {
			return
		}
		seen[email] = true
		out.Emails = append(out.Emails, model.EmailRecord{Email: email, PageURL: doc.Page.URL})
	}

	for _, a := range doc.Anchors() {
		for _, addr := range mailtoAddresses(a.Href) {
			add(addr)
		}
	}
	for _, match := range emailPattern.FindAllString(doc.HTML(), -1) {
		add(match)
	}
	return nil
}

// NormalizeEmail lower-cases raw and reports whether it is a plausible address.
func NormalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.Trim(strings.TrimSpace(raw), ".,;:<>()[]\"'"))
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || !emailPattern.MatchString(email) {
		return "", false
	}
	domain := email[at+1:]
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(domain, suffix) {
			return "", false
		}
	}
	for _, ignored := range ignoredEmailDomains {
		if domain == ignored || strings.HasSuffix(domain, "."+ignored) {
			return "", false
		}
	}
	return email, true
}

// mailtoAddresses returns the recipients of a mailto: href.
func mailtoAddresses(href string) []string {
	if !hasSchemePrefix(href, "mailto:") {
		return nil
	}
	rest := href[len("mailto:"):]
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest = rest[:i]
	}
	if decoded, err := url.PathUnescape(rest); err == nil {
		rest = decoded
	}
	return strings.FieldsFunc(rest, func(r rune) bool { return r == ',' || r == ';' })
}

// PhoneExtractor finds phone numbers in tel: links, visible text and structured data.
type PhoneExtractor struct{}

// NewPhoneExtractor creates a new PhoneExtractor.
func NewPhoneExtractor() *PhoneExtractor {
	return &PhoneExtractor{}
}

// Name returns the extractor name.
func (e *PhoneExtractor) Name() string {
	return "phone"
}

// Extract appends every distinct normalized number of the page.
func (e *PhoneExtractor) Extract(doc *Document, out *Findings) error {
	seen := make(map[string]bool)
	add := func(raw string) {
		phone, ok := NormalizePhone(raw)
		if !ok || seen[phone] {
			return
		}
		seen[phone] = true
		out.Phones = append(out.Phones, model.PhoneRecord{Phone: phone, PageURL: doc.Page.URL})
	}

	for _, a := range doc.Anchors() {
		if number, ok := telNumber(a.Href); ok {
			add(number)
		}
	}
	for _, sd := range doc.StructuredData() {
		if sd.Telephone != "" {
			add(sd.Telephone)
		}
	}
	text := doc.Text()
	for _, loc := range phonePattern.FindAllStringIndex(text, -1) {
		if touchesDigit(text, loc[0], loc[1]) {
			continue
		}
		match := text[loc[0]:loc[1]]
		if datePattern.MatchString(match) || !phoneGrouping(match) {
			continue
		}
		add(match)
	}
	return nil
}

// touchesDigit reports whether text[start:end] is part of a longer digit run.
func touchesDigit(text string, start, end int) bool {
	return (start > 0 && isDigit(text[start-1])) || (end < len(text) && isDigit(text[end]))
}

// phoneGrouping reports whether the digit groups of a text match look like a
// phone number: one unbroken run, or groups of at most four digits.
// "123 456 789 00012" is a company identifier, not a number to call.
func phoneGrouping(match string) bool {
	groups := strings.FieldsFunc(match, func(r rune) bool {
		return r == ' ' || r == '.' || r == '-' || r == '(' || r == ')' || r == '+'
	})
	if len(groups) <= 1 {
		return true
	}
	for _, g := range groups {
		if len(g) > 4 {
			return false
		}
	}
	return true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// NormalizePhone strips '.', '-', parentheses and whitespace from raw and
// accepts the result when it holds MinPhoneDigits to 15 digits. A leading
// '+' is kept; any other character rejects the candidate.
func NormalizePhone(raw string) (string, bool) {
	var b strings.Builder
	digits := 0
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r == '.' || r == '-' || r == '(' || r == ')' || unicode.IsSpace(r):
			continue
		case r >= '0' && r <= '9':
			digits++
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		default:
			return "", false
		}
	}
	if digits < MinPhoneDigits || digits > maxPhoneDigits {
		return "", false
	}
	return b.String(), true
}

// telNumber returns the number of a tel: href.
func telNumber(href string) (string, bool) {
	if !hasSchemePrefix(href, "tel:") {
		return "", false
	}
	number := href[len("tel:"):]
	if decoded, err := url.PathUnescape(number); err == nil {
		number = decoded
	}
	return number, number != ""
}

func hasSchemePrefix(href, scheme string) bool {
	return len(href) >= len(scheme) && strings.EqualFold(href[:len(scheme)], scheme)
}
