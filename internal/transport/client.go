package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"time"

	"golang.org/x/net/proxy"
	"golang.org/x/net/publicsuffix"
)

// Client defaults.
const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 10
)

type clientConfig struct {
	proxyAddress string
	timeout      time.Duration
	maxRedirects int
	cookie       string
	headers      map[string]string
}

// Option configures NewClient.
type Option func(*clientConfig)

// WithProxyAddress routes every connection through the SOCKS5 proxy at addr ("host:port").
func WithProxyAddress(addr string) Option {
	return func(c *clientConfig) {
		c.proxyAddress = addr
	}
}

// WithTimeout sets the overall timeout of one request, redirects included.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxRedirects sets how many redirects are followed before the last
// response is returned as is.
func WithMaxRedirects(n int) Option {
	return func(c *clientConfig) {
		if n >= 0 {
			c.maxRedirects = n
		}
	}
}

// WithCookie adds a raw cookie string ("session=abc; lang=en") to every request.
func WithCookie(cookie string) Option {
	return func(c *clientConfig) {
		c.cookie = cookie
	}
}

// WithHeaders sets extra headers on every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *clientConfig) {
		c.headers = headers
	}
}

// NewClient returns an HTTP client with a cookie jar and a redirect cap.
// With WithProxyAddress it dials through SOCKS5; the proxy is not contacted
// until the first request. Use CheckProxy to verify it up front.
func NewClient(opts ...Option) (*http.Client, error) {
	cfg := clientConfig{
		timeout:      DefaultTimeout,
		maxRedirects: DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	base := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	base.MaxIdleConnsPerHost = 4
	base.IdleConnTimeout = 30 * time.Second

	if cfg.proxyAddress != "" {
		if err := ValidateProxyAddress(cfg.proxyAddress); err != nil {
			return nil, err
		}
		dialer, err := proxy.SOCKS5("tcp", cfg.proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		base.Proxy = nil
		base.DialContext = contextDialer(dialer)
		// Compressed sizes would let an observer of the circuit infer content.
		base.DisableCompression = true
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	var rt http.RoundTripper = base
	if cfg.cookie != "" || len(cfg.headers) > 0 {
		rt = &headerInjectingTransport{base: base, cookie: cfg.cookie, headers: cfg.headers}
	}

	maxRedirects := cfg.maxRedirects
	return &http.Client{
		Transport: rt,
		Timeout:   cfg.timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}, nil
}

// contextDialer adapts a proxy dialer to http.Transport.DialContext.
func contextDialer(d proxy.Dialer) func(context.Context, string, string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type result struct {
			conn net.Conn
			err  error
		}
		ch := make(chan result, 1)
		go func() {
			conn, err := d.Dial(network, addr)
			ch <- result{conn, err}
		}()
		select {
		case r := <-ch:
			return r.conn, r.err
		case <-ctx.Done():
			go func() {
				if r := <-ch; r.conn != nil {
					r.conn.Close()
				}
			}()
			return nil, ctx.Err()
		}
	}
}

// ValidateProxyAddress checks that addr is "host:port" with a port in 1-65535.
func ValidateProxyAddress(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidProxyAddress, addr)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("%w: %q", ErrInvalidProxyAddress, addr)
	}
	return nil
}

// headerInjectingTransport adds a cookie and custom headers to every request.
type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}
	return t.base.RoundTrip(clone)
}
