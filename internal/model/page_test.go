package model

import (
	"testing"
)

// TestPageComputeHash tests the ComputeHash method.
func TestPageComputeHash(t *testing.T) {
	t.Parallel()

	t.Run("computes SHA3-256 hash of raw content", func(t *testing.T) {
		t.Parallel()

		page := &Page{Raw: []byte("Hello, World!")}
		page.ComputeHash()

		expected := "1af17a664e3fa8e419b8ba05c2a173169df76162a5a286e0c405b460d478f7ef"
		if page.Hash != expected {
			t.Errorf("got %q, expected %q", page.Hash, expected)
		}
	})

	t.Run("identical bodies share a hash", func(t *testing.T) {
		t.Parallel()

		a := &Page{URL: "https://acme.test/a", Raw: []byte("<html>same</html>")}
		b := &Page{URL: "https://acme.test/b", Raw: []byte("<html>same</html>")}
		a.ComputeHash()
		b.ComputeHash()

		if a.Hash != b.Hash {
			t.Errorf("hashes differ: %q vs %q", a.Hash, b.Hash)
		}
	})

	t.Run("empty content produces empty hash", func(t *testing.T) {
		t.Parallel()

		page := &Page{Raw: nil}
		page.ComputeHash()

		if page.Hash != "" {
			t.Errorf("expected empty hash, got %q", page.Hash)
		}
	})
}

// TestPageGetHeader tests the GetHeader method.
func TestPageGetHeader(t *testing.T) {
	t.Parallel()

	page := &Page{
		Headers: map[string][]string{
			"Server": {"nginx/1.25.3"},
			"Empty":  {},
		},
	}

	t.Run("returns first header value", func(t *testing.T) {
		t.Parallel()
		if got := page.GetHeader("Server"); got != "nginx/1.25.3" {
			t.Errorf("got %q, expected nginx/1.25.3", got)
		}
	})

	t.Run("returns empty string for missing or empty header", func(t *testing.T) {
		t.Parallel()
		if got := page.GetHeader("X-Missing"); got != "" {
			t.Errorf("got %q, expected empty string", got)
		}
		if got := page.GetHeader("Empty"); got != "" {
			t.Errorf("got %q, expected empty string", got)
		}
	})
}

// TestPageIsHTML tests the IsHTML method.
func TestPageIsHTML(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		contentType string
		expected    bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"TEXT/HTML", true},
		{"application/xhtml+xml", true},
		{"", true},
		{"application/json", false},
		{"text/plain", false},
		{"image/png", false},
	}

	for _, tc := range testCases {
		t.Run("content type "+tc.contentType, func(t *testing.T) {
			t.Parallel()

			page := &Page{ContentType: tc.contentType}
			if page.IsHTML() != tc.expected {
				t.Errorf("IsHTML() for %q = %v, expected %v", tc.contentType, page.IsHTML(), tc.expected)
			}
		})
	}
}

func TestPageIsHome(t *testing.T) {
	t.Parallel()

	if !(&Page{Depth: 0}).IsHome() {
		t.Error("depth 0 should be the home page")
	}
	if (&Page{Depth: 1}).IsHome() {
		t.Error("depth 1 should not be the home page")
	}
}
