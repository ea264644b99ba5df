package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestFetcherFetch(t *testing.T) {
	t.Parallel()

	t.Run("returns the decoded page and sends the user agent", func(t *testing.T) {
		t.Parallel()

		userAgents := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userAgents <- r.UserAgent()
			w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
			_, _ = w.Write([]byte("<p>Caf\xe9</p>")) //nolint:errcheck
		}))
		defer server.Close()

		f := NewFetcher(server.Client())
		f.userAgent = "leadcrawl-test"
		page, err := f.Fetch(context.Background(), server.URL+"/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := string(page.Raw); got != "<p>Café</p>" {
			t.Errorf("expected decoded body, got %q", got)
		}
		if gotUA := <-userAgents; gotUA != "leadcrawl-test" {
			t.Errorf("expected user agent leadcrawl-test, got %q", gotUA)
		}
		if page.Hash == "" {
			t.Error("expected a content hash")
		}
		if page.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d", page.StatusCode)
		}
	})

	t.Run("rejects non-2xx responses", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := NewFetcher(server.Client()).Fetch(context.Background(), server.URL)
		if !errors.Is(err, ErrUnexpectedStatus) {
			t.Errorf("expected ErrUnexpectedStatus, got %v", err)
		}
	})

	t.Run("rejects non-HTML responses", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4")) //nolint:errcheck
		}))
		defer server.Close()

		_, err := NewFetcher(server.Client()).Fetch(context.Background(), server.URL)
		if !errors.Is(err, ErrNotHTML) {
			t.Errorf("expected ErrNotHTML, got %v", err)
		}
	})

	t.Run("cuts the body at the size limit", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(strings.Repeat("a", 100))) //nolint:errcheck
		}))
		defer server.Close()

		f := NewFetcher(server.Client())
		f.maxBodySize = 10
		page, err := f.Fetch(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Raw) != 10 {
			t.Errorf("expected 10 bytes, got %d", len(page.Raw))
		}
	})

	t.Run("fails on a canceled context", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := NewFetcher(server.Client()).Fetch(ctx, server.URL); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
	t.Run("records the final URL after a redirect", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/blog" {
				http.Redirect(w, r, "/blog/", http.StatusMovedPermanently)
				return
			}
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<p>blog</p>")) //nolint:errcheck
		}))
		defer server.Close()

		page, err := NewFetcher(server.Client()).Fetch(context.Background(), server.URL+"/blog")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.URL != server.URL+"/blog/" {
			t.Errorf("expected the redirect target, got %q", page.URL)
		}
	})
}

func TestFetcherWait(t *testing.T) {
	t.Parallel()

	t.Run("returns at once without a limiter", func(t *testing.T) {
		t.Parallel()
		if err := NewFetcher(nil).Wait(context.Background()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("stops waiting when the context ends", func(t *testing.T) {
		t.Parallel()

		f := NewFetcher(nil)
		f.limiter = rate.NewLimiter(rate.Limit(0.01), 1)
		if err := f.Wait(context.Background()); err != nil {
			t.Fatalf("first token: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)
		start := time.Now()
		if err := f.Wait(ctx); err == nil {
			t.Error("expected an error once the context was canceled")
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("Wait blocked for %s after cancel", elapsed)
		}
	})
}
