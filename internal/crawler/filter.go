package crawler

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/nao1215/leadcrawl/internal/urlnorm"
)

// linkFilter decides which discovered links are followed.
type linkFilter struct {
	domain  string
	include []string
	exclude []string
}

// allow reports whether link is on the crawl domain and passes the patterns.
func (f linkFilter) allow(link string) bool {
	return urlnorm.SameDomain(link, f.domain) && f.shouldCrawl(link)
}

// shouldCrawl checks a URL path against the exclude then include patterns.
// An empty include list allows every path that was not excluded.
func (f linkFilter) shouldCrawl(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range f.exclude {
		if matchPattern(pattern, path) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, pattern := range f.include {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// matchPattern reports whether path matches a glob pattern.
//   - "/team/*" matches "/team" and everything below it
//   - "*.pdf" matches any path ending in ".pdf"
//   - other patterns use filepath.Match, against the whole path and, for
//     patterns without a slash, against the last segment
func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	if ext, ok := strings.CutPrefix(pattern, "*"); ok && strings.HasPrefix(ext, ".") && !strings.ContainsAny(ext, "*?[") {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}
	return false
}
