package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "leadcrawl"

	// DefaultMaxWorkers is the number of concurrent fetch workers per site.
	DefaultMaxWorkers = 5

	// DefaultMaxDepth is the maximum link distance from the seed URL.
	DefaultMaxDepth = 3

	// DefaultMaxTime is the wall-clock budget of one site crawl.
	DefaultMaxTime = 300 * time.Second

	// DefaultMaxPages is the maximum number of pages admitted per site.
	DefaultMaxPages = 50

	// DefaultRequestTimeout is the per-request fetch timeout.
	DefaultRequestTimeout = 10 * time.Second

	// DefaultBatchSize is the number of sites crawled concurrently.
	DefaultBatchSize = 3

	// DefaultUserAgent identifies leadcrawl in HTTP requests.
	DefaultUserAgent = "leadcrawl/1.0 (+https://github.com/nao1215/leadcrawl)"

	// DefaultMaxBodySize limits the response body size read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultMaxEXIFImages caps the number of images downloaded by the EXIF step.
	DefaultMaxEXIFImages = 20
)

// Config holds all configuration options for leadcrawl.
// It is populated from CLI flags and passed down explicitly; there is no global state.
type Config struct {
	// Targets is the list of site URLs to crawl.
	Targets []string

	// MaxWorkers is the number of concurrent fetch workers per site.
	MaxWorkers int

	// MaxDepth is the maximum link distance from the seed URL.
	// MaxDepth 0 means only fetch the seed page.
	MaxDepth int

	// MaxTime is the wall-clock budget of one site crawl.
	MaxTime time.Duration

	// MaxPages is the maximum number of pages admitted to the visited set.
	MaxPages int

	// RequestTimeout applies to each HTTP request, not to the crawl.
	RequestTimeout time.Duration

	// RequestsPerSecond throttles fetches per site. Zero disables throttling.
	RequestsPerSecond float64

	// MergePeople makes a later sighting of a known person fill in missing
	// title, email, phone or LinkedIn fields. When false the first sighting wins.
	MergePeople bool

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// BatchSize is the number of sites crawled concurrently.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the usual locations.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config file.
	SiteConfigs *File

	// JSONReport enables JSON report output. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. Stdout when empty.
	ReportFile string

	// ProxyAddress routes all requests through a SOCKS5 proxy ("host:port").
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and crawls through it.
	UseTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded Tor daemon.
	TorStartupTimeout time.Duration

	// DBDir is the directory holding the SQLite database.
	// Defaults to XDG data directory (~/.local/share/leadcrawl on Linux).
	DBDir string

	// SaveToDB stores every crawl report for later compare/history.
	SaveToDB bool

	// ImageEXIF downloads discovered images and records their EXIF tags.
	ImageEXIF bool

	// MaxEXIFImages caps the images downloaded per site by the EXIF step.
	MaxEXIFImages int

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		MaxWorkers:        DefaultMaxWorkers,
		MaxDepth:          DefaultMaxDepth,
		MaxTime:           DefaultMaxTime,
		MaxPages:          DefaultMaxPages,
		RequestTimeout:    DefaultRequestTimeout,
		BatchSize:         DefaultBatchSize,
		TorStartupTimeout: DefaultTorStartupTimeout,
		SaveToDB:          true,
		MaxEXIFImages:     DefaultMaxEXIFImages,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for leadcrawl.
// On Linux: ~/.local/share/leadcrawl
// On macOS: ~/Library/Application Support/leadcrawl
// On Windows: %LOCALAPPDATA%\leadcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for leadcrawl.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.MaxWorkers <= 0 {
		return ErrInvalidMaxWorkers
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.MaxTime <= 0 {
		return ErrInvalidMaxTime
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.RequestsPerSecond < 0 {
		return ErrInvalidRate
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.UseTor && c.ProxyAddress != "" {
		return ErrConflictingProxy
	}
	return nil
}

// ForSite returns a copy of c with the overrides of the site-specific
// configuration applied. host is the bare host name of the target.
func (c *Config) ForSite(host string) (*Config, SiteConfig) {
	out := *c
	if c.SiteConfigs == nil {
		return &out, SiteConfig{}
	}

	site := c.SiteConfigs.GetSiteConfig(host)
	if site.MaxDepth != nil {
		out.MaxDepth = *site.MaxDepth
	}
	if site.MaxPages > 0 {
		out.MaxPages = site.MaxPages
	}
	if site.MaxWorkers > 0 {
		out.MaxWorkers = site.MaxWorkers
	}
	return &out, site
}
