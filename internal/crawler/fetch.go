package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/nao1215/leadcrawl/internal/model"
	"github.com/nao1215/leadcrawl/internal/urlnorm"
)

// Default fetch settings.
const (
	DefaultRequestTimeout = 10 * time.Second
	DefaultMaxBodySize    = model.MaxPageSize
	DefaultUserAgent      = "leadcrawl/1.0 (+https://github.com/nao1215/leadcrawl)"
)

// Fetcher downloads HTML pages.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	timeout     time.Duration
	maxBodySize int64

	// limiter throttles requests when set.
	limiter *rate.Limiter
}

// NewFetcher returns a Fetcher with default settings. A nil client uses
// http.DefaultClient.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		client:      client,
		userAgent:   DefaultUserAgent,
		timeout:     DefaultRequestTimeout,
		maxBodySize: DefaultMaxBodySize,
	}
}

// Wait blocks until the rate limiter allows one more request or ctx ends.
// It returns immediately when no limiter is set.
func (f *Fetcher) Wait(ctx context.Context) error {
	if f.limiter == nil {
		return nil
	}
	return f.limiter.Wait(ctx)
}

// Fetch GETs pageURL. The request is bounded by the fetch timeout and by ctx.
// Non-2xx and non-HTML responses are errors. The body is decoded to UTF-8
// according to its declared charset and cut at the body size limit.
// Page.URL is the canonical URL of the last response, after redirects.
// Fetch does not wait for the rate limiter; callers use Wait first.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*model.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return nil, fmt.Errorf("%w: %d for %s", ErrUnexpectedStatus, resp.StatusCode, pageURL)
	}

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		if canonical, err := urlnorm.Canonical(resp.Request.URL.String()); err == nil {
			finalURL = canonical
		}
	}

	page := &model.Page{
		URL:         finalURL,
		StatusCode:  resp.StatusCode,
		Headers:     resp.Header,
		ContentType: resp.Header.Get("Content-Type"),
		FetchedAt:   time.Now().UTC(),
	}
	if !page.IsHTML() {
		return nil, fmt.Errorf("%w: %q for %s", ErrNotHTML, page.ContentType, pageURL)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodySize), page.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", pageURL, err)
	}
	page.Raw, err = io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", pageURL, err)
	}
	page.ComputeHash()
	return page, nil
}
