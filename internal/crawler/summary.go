package crawler

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/leadcrawl/internal/model"
)

// maxSummaryLen is the maximum summary length in runes.
const maxSummaryLen = 500

var (
	homeSuffix = regexp.MustCompile(`(?i)\s*[-|–—:·]+\s*(home|home ?page|accueil|welcome|official (web)?site)\s*$`)
	homePrefix = regexp.MustCompile(`(?i)^\s*(home|home ?page|accueil|welcome)\s*[-|–—:·]+\s*`)
)

// Summarize describes the company from the home page title and
// description, followed by one sentence about its stack and one about its team.
// Without home page metadata it states where the company is on the web.
func Summarize(r *model.CrawlResult) string {
	var parts []string
	if lead := describe(r.Metadata); lead != "" {
		parts = append(parts, lead)
	} else {
		parts = append(parts, fmt.Sprintf("%s is present on the web at %s.", companyLabel(r.Domain), r.Domain))
	}
	parts = append(parts, observations(r)...)
	return truncateRunes(strings.Join(parts, " "), maxSummaryLen)
}

func describe(md *model.PageMetadata) string {
	if md == nil {
		return ""
	}
	title := CleanTitle(md.Title)
	desc := strings.TrimSpace(md.Description)
	switch {
	case title != "" && desc != "":
		if strings.EqualFold(title, desc) {
			return sentence(title)
		}
		return sentence(title + ": " + desc)
	case desc != "":
		return sentence(desc)
	case title != "":
		return sentence(title)
	}
	return ""
}

// CleanTitle strips "Home" style prefixes and suffixes from a page title.
func CleanTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	title = homeSuffix.ReplaceAllString(title, "")
	title = homePrefix.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

func observations(r *model.CrawlResult) []string {
	var out []string

	var techs []string
	for _, category := range model.AllTechCategories {
		techs = append(techs, r.Technologies[category]...)
	}
	if len(techs) > 3 {
		techs = techs[:3]
	}
	if len(techs) > 0 {
		out = append(out, fmt.Sprintf("The website is built with %s.", strings.Join(techs, ", ")))
	}

	if p, ok := firstWithTitle(r.People); ok {
		out = append(out, fmt.Sprintf("%s works there as %s.", p.Name, p.Title))
	} else if len(r.People) > 0 {
		out = append(out, fmt.Sprintf("The site lists %d team members.", len(r.People)))
	}
	return out
}

func firstWithTitle(people []model.PersonRecord) (model.PersonRecord, bool) {
	for _, p := range people {
		if p.Title != "" {
			return p, true
		}
	}
	return model.PersonRecord{}, false
}

// companyLabel derives a display name from the registrable domain:
// "www.acme-corp.co.uk" becomes "Acme-Corp". IP hosts are returned as is.
func companyLabel(domain string) string {
	host, _, err := net.SplitHostPort(domain)
	if err != nil {
		host = domain
	}
	if host == "" {
		return "This company"
	}
	if net.ParseIP(host) != nil {
		return host
	}
	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		registrable = host
	}
	label, _, _ := strings.Cut(registrable, ".")
	return cases.Title(language.Und).String(label)
}

func sentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if r, _ := utf8.DecodeLastRuneInString(s); strings.ContainsRune(".!?", r) {
		return s
	}
	return s + "."
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n-3])) + "..."
}
