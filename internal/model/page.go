package model

import (
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// Page represents one fetched web page.
// It holds the raw response data; parsing is done by the extract package.
type Page struct {
	// URL is the normalized absolute URL the page was fetched from.
	URL string `json:"url"`

	// Depth is the link distance from the seed URL (0 for the home page).
	Depth int `json:"depth"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// Headers contains all HTTP response headers in canonical form.
	Headers map[string][]string `json:"headers"`

	// ContentType is the MIME type of the response.
	ContentType string `json:"content_type"`

	// Raw contains the decoded (UTF-8) response body.
	Raw []byte `json:"-"`

	// Hash is the SHA3-256 hash of Raw.
	// Pages with identical bodies under different URLs share a hash.
	Hash string `json:"hash"`

	// FetchedAt is when the response was received.
	FetchedAt time.Time `json:"fetched_at"`
}

// MaxPageSize is the default maximum number of body bytes read per page.
const MaxPageSize = 5 * 1024 * 1024 // 5 MB

// ComputeHash calculates and sets the SHA3-256 hash of the page's raw content.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}
	sum := sha3.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(sum[:])
}

// GetHeader returns the first value of the specified header.
// Returns empty string if the header is not present.
func (p *Page) GetHeader(name string) string {
	if values, ok := p.Headers[name]; ok && len(values) > 0 {
		return values[0]
	}
	return ""
}

// IsHTML returns true if the page content type indicates HTML.
// An empty content type is treated as HTML since many small sites omit it.
func (p *Page) IsHTML() bool {
	ct := strings.ToLower(strings.TrimSpace(p.ContentType))
	if ct == "" {
		return true
	}
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

// IsHome reports whether the page is the crawl's seed page.
func (p *Page) IsHome() bool {
	return p.Depth == 0
}
