package urlnorm

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// DefaultCacheSize is the number of entries kept before the cache is reset.
const DefaultCacheSize = 10000

// rejectedSchemes are href prefixes that never point to a crawlable page.
var rejectedSchemes = []string{"javascript:", "mailto:", "tel:", "data:"}

var (
	// ErrEmptyURL is returned by Canonical for an empty input.
	ErrEmptyURL = errors.New("empty url")
	// ErrUnsupportedScheme is returned by Canonical for non-HTTP(S) URLs.
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
	// ErrMissingHost is returned by Canonical when the URL has no host.
	ErrMissingHost = errors.New("url has no host")
)

type cacheKey struct {
	href string
	base string
}

type cacheEntry struct {
	url string
	ok  bool
}

// Normalizer resolves and canonicalizes hrefs. It is safe for concurrent use.
type Normalizer struct {
	mu      sync.Mutex
	cache   map[cacheKey]cacheEntry
	maxSize int
	hits    int
	misses  int
}

// New returns a Normalizer with an empty cache.
func New() *Normalizer {
	return &Normalizer{
		cache:   make(map[cacheKey]cacheEntry),
		maxSize: DefaultCacheSize,
	}
}

// Normalize resolves href against base and returns the canonical absolute URL.
// ok is false when href is not a crawlable HTTP(S) link.
func (n *Normalizer) Normalize(href, base string) (string, bool) {
	key := cacheKey{href: href, base: base}

	n.mu.Lock()
	if e, found := n.cache[key]; found {
		n.hits++
		n.mu.Unlock()
		return e.url, e.ok
	}
	n.mu.Unlock()

	resolved, ok := resolve(href, base)

	n.mu.Lock()
	n.misses++
	if len(n.cache) >= n.maxSize {
		n.cache = make(map[cacheKey]cacheEntry)
	}
	n.cache[key] = cacheEntry{url: resolved, ok: ok}
	n.mu.Unlock()

	return resolved, ok
}

// Stats returns the cache hit and miss counts.
func (n *Normalizer) Stats() (hits, misses int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.hits, n.misses
}

func resolve(href, base string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	lower := strings.ToLower(href)
	for _, scheme := range rejectedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}

	u := baseURL.ResolveReference(ref)
	if err := canonicalize(u); err != nil {
		return "", false
	}
	return u.String(), true
}

// Canonical parses an absolute URL and returns its canonical form.
// A missing scheme defaults to https.
func Canonical(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if err := canonicalize(u); err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	return u.String(), nil
}

// canonicalize rewrites u in place.
// Equivalent spellings of a page (host case, default port, empty root path,
// fragment) collapse to one string so the visited set sees them as one URL.
func canonicalize(u *url.URL) error {
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrUnsupportedScheme
	}
	if u.Host == "" {
		return ErrMissingHost
	}

	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]" // IPv6 literal
	}
	if port != "" {
		host = host + ":" + port
	}
	u.Host = host

	u.Fragment = ""
	u.RawFragment = ""
	u.User = nil
	if u.Path == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	return nil
}

// Host returns the lower-cased host (with port, if any) of rawURL, or "".
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// SameDomain reports whether rawURL's host equals domain exactly.
// Subdomains are distinct: "blog.acme.test" is not "acme.test".
func SameDomain(rawURL, domain string) bool {
	h := Host(rawURL)
	return h != "" && h == strings.ToLower(domain)
}
