package crawler

import "testing"

func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{name: "prefix pattern matches child", pattern: "/blog/*", path: "/blog/post-1", want: true},
		{name: "prefix pattern matches nested child", pattern: "/blog/*", path: "/blog/2024/post", want: true},
		{name: "prefix pattern matches the directory", pattern: "/blog/*", path: "/blog", want: true},
		{name: "prefix pattern does not match sibling", pattern: "/blog/*", path: "/blogger", want: false},
		{name: "extension pattern matches", pattern: "*.pdf", path: "/docs/file.pdf", want: true},
		{name: "extension pattern does not match other extension", pattern: "*.pdf", path: "/docs/file.txt", want: false},
		{name: "exact match", pattern: "/team", path: "/team", want: true},
		{name: "exact pattern does not match child", pattern: "/team", path: "/team/jane", want: false},
		{name: "question mark wildcard", pattern: "/page?", path: "/page1", want: true},
		{name: "root path", pattern: "/", path: "/", want: true},
		{name: "segment glob", pattern: "*.php", path: "/wp/login.php", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := matchPattern(tt.pattern, tt.path); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestLinkFilterAllow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter linkFilter
		link   string
		want   bool
	}{
		{
			name:   "same host without patterns",
			filter: linkFilter{domain: "acme.test"},
			link:   "https://acme.test/about",
			want:   true,
		},
		{
			name:   "subdomain is another site",
			filter: linkFilter{domain: "acme.test"},
			link:   "https://blog.acme.test/",
			want:   false,
		},
		{
			name:   "exclude wins over include",
			filter: linkFilter{domain: "acme.test", include: []string{"/blog/*"}, exclude: []string{"/blog/drafts/*"}},
			link:   "https://acme.test/blog/drafts/x",
			want:   false,
		},
		{
			name:   "include list restricts paths",
			filter: linkFilter{domain: "acme.test", include: []string{"/team/*"}},
			link:   "https://acme.test/pricing",
			want:   false,
		},
		{
			name:   "empty path is the root",
			filter: linkFilter{domain: "acme.test", include: []string{"/"}},
			link:   "https://acme.test",
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.filter.allow(tt.link); got != tt.want {
				t.Errorf("allow(%q) = %v, want %v", tt.link, got, tt.want)
			}
		})
	}
}
