package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/leadcrawl/internal/config"
	"github.com/nao1215/leadcrawl/internal/crawler"
	"github.com/nao1215/leadcrawl/internal/database"
	"github.com/nao1215/leadcrawl/internal/log"
	"github.com/nao1215/leadcrawl/internal/model"
	"github.com/nao1215/leadcrawl/internal/pipeline"
	"github.com/nao1215/leadcrawl/internal/report"
	"github.com/nao1215/leadcrawl/internal/transport"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [url]...",
		Short: "Crawl company websites and extract leads",
		Long: `Crawl visits each site within the page, depth and time limits and
extracts contact emails, phone numbers, people, social profiles, the
technology stack, forms and page metadata.

Several sites are crawled concurrently (see --batch). Every report is saved
to the local database unless --save=false is given.

Examples:
  # Crawl one site with the default limits
  leadcrawl crawl https://acme.example

  # Crawl several sites, two at a time, and write one JSON document per site
  leadcrawl crawl --batch 2 --json -o leads.json acme.example globex.example

  # Be polite: at most two requests per second per site
  leadcrawl crawl --rate 2 https://acme.example

  # Crawl through an embedded Tor daemon and inspect image EXIF data
  leadcrawl crawl --tor --exif https://acme.example

Configuration file (.leadcrawl) example:
  defaults:
    max_pages: 30
  sites:
    acme.example:
      cookie: "session=abc123"
      exclude:
        - "/blog/*"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl limits
	cmd.Flags().IntP("workers", "w", config.DefaultMaxWorkers, "Concurrent fetch workers per site")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth, "Maximum link distance from the start URL")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages, "Maximum pages visited per site")
	cmd.Flags().DurationP("max-time", "t", config.DefaultMaxTime, "Time budget per site")
	cmd.Flags().Duration("timeout", config.DefaultRequestTimeout, "Timeout of each HTTP request")
	cmd.Flags().Float64("rate", 0, "Maximum requests per second per site (0 disables throttling)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent, "User-Agent header")
	cmd.Flags().Bool("merge-people", false, "Fill missing fields of known people from later pages")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of sites crawled concurrently")

	// Extra steps
	cmd.Flags().Bool("exif", false, "Download same-site images and record their EXIF tags")
	cmd.Flags().Int("max-exif-images", config.DefaultMaxEXIFImages, "Maximum images inspected per site")

	// Network
	cmd.Flags().String("proxy", "", "Crawl through the SOCKS5 proxy at host:port")
	cmd.Flags().Bool("tor", false, "Crawl through an embedded Tor daemon")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout, "Timeout for embedded Tor startup")

	// Configuration and storage
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .leadcrawl in current or home directory)")
	cmd.Flags().Bool("save", true, "Save reports to the database")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Database directory")

	// Report
	cmd.Flags().BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "", "Write reports to this file instead of stdout")

	return cmd
}

func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Targets = args
	cfg.Verbose = getVerboseFlag(cmd)

	flags := cmd.Flags()
	var err error
	if cfg.MaxWorkers, err = flags.GetInt("workers"); err != nil {
		return nil, err
	}
	if cfg.MaxDepth, err = flags.GetInt("depth"); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.MaxTime, err = flags.GetDuration("max-time"); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.RequestsPerSecond, err = flags.GetFloat64("rate"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.MergePeople, err = flags.GetBool("merge-people"); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
		return nil, err
	}
	if cfg.ImageEXIF, err = flags.GetBool("exif"); err != nil {
		return nil, err
	}
	if cfg.MaxEXIFImages, err = flags.GetInt("max-exif-images"); err != nil {
		return nil, err
	}
	if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.UseTor, err = flags.GetBool("tor"); err != nil {
		return nil, err
	}
	if cfg.TorStartupTimeout, err = flags.GetDuration("tor-timeout"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.SaveToDB, err = flags.GetBool("save"); err != nil {
		return nil, err
	}
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	// An explicit config path must exist; otherwise a missing file means no overrides.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SiteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	return cfg, nil
}

// runCrawl crawls every target and writes each report as soon as its
// pipeline finishes.
func runCrawl(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer, logger *slog.Logger) error {
	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Debug("database opened", slog.String("path", db.Path()))
	}

	clients, err := newClientFactory(ctx, cfg, stderr, logger)
	if err != nil {
		return err
	}
	defer clients.Close()

	output, closeOutput, err := openOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer closeOutput()
	writer := newReportWriter(cfg, output)

	progress := pipeline.NewProgressAggregator(func(line string) {
		fmt.Fprintln(stderr, line)
	})

	bp := pipeline.NewBatchProcessor(
		func(site string) *pipeline.Pipeline {
			return newSitePipeline(site, cfg, clients, db, progress, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	start := time.Now()
	var mu sync.Mutex
	err = bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(rep *model.CrawlReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		if rep.Result == nil {
			fmt.Fprintf(stderr, "[%d/%d] %s failed: %v\n", index+1, len(cfg.Targets), rep.Site, rep.Errors)
			return
		}
		if _, err := writer.Write(rep); err != nil {
			logger.Error("failed to write report", slog.String("site", rep.Site), slog.Any("error", err))
		}
	})

	sites := progress.Close()
	finished := 0
	for _, sp := range sites {
		if sp.Finished {
			finished++
		}
	}
	fmt.Fprintf(stderr, "Crawled %d of %d sites in %s\n", finished, len(cfg.Targets), time.Since(start).Round(time.Millisecond))
	return err
}

// newSitePipeline builds the per-site pipeline: crawl, then the optional
// EXIF step, then persistence.
func newSitePipeline(
	site string,
	cfg *config.Config,
	clients *clientFactory,
	db *database.CrawlDB,
	progress *pipeline.ProgressAggregator,
	logger *slog.Logger,
) *pipeline.Pipeline {
	siteCfg, overrides := cfg.ForSite(database.SiteKey(site))
	siteLogger := logger.With(slog.String("site", site))

	p := pipeline.New(pipeline.WithLogger(siteLogger), pipeline.WithContinueOnError(true))

	client, err := clients.New(overrides)
	if err != nil {
		p.AddStep(failedStep{name: "crawl", err: err})
		return p
	}

	spider := crawler.NewSpider(client,
		crawler.WithLogger(siteLogger),
		crawler.WithUserAgent(siteCfg.UserAgent),
		crawler.WithRequestTimeout(siteCfg.RequestTimeout),
		crawler.WithMaxBodySize(siteCfg.MaxBodySize),
		crawler.WithRateLimit(siteCfg.RequestsPerSecond),
	)
	crawlStep := pipeline.NewCrawlStep(spider, crawlerConfig(siteCfg, overrides),
		pipeline.WithCrawlCallbacks(progress.Callbacks(site)),
		pipeline.WithCrawlLogger(siteLogger),
	)
	p.AddStep(pipeline.NewProgressStep(crawlStep, progress))

	if cfg.ImageEXIF {
		p.AddStep(pipeline.NewImageEXIFStep(client,
			pipeline.WithMaxEXIFImages(cfg.MaxEXIFImages),
			pipeline.WithEXIFLogger(siteLogger),
		))
	}
	if db != nil {
		p.AddStep(pipeline.NewPersistStep(db))
	}
	return p
}

// crawlerConfig maps the CLI configuration onto the crawler limits.
func crawlerConfig(cfg *config.Config, site config.SiteConfig) crawler.Config {
	cc := crawler.DefaultConfig()
	cc.MaxWorkers = cfg.MaxWorkers
	cc.MaxDepth = cfg.MaxDepth
	cc.MaxPages = cfg.MaxPages
	cc.MaxTime = cfg.MaxTime
	cc.MergePeople = cfg.MergePeople
	cc.IncludePatterns = site.Include
	cc.ExcludePatterns = site.Exclude
	return cc
}

// failedStep reports an error that happened while building a pipeline.
type failedStep struct {
	name string
	err  error
}

func (s failedStep) Name() string { return s.name }

func (s failedStep) Do(context.Context, *model.CrawlReport) error { return s.err }

// clientFactory builds one HTTP client per site so that cookies and
// headers never leak between sites.
type clientFactory struct {
	timeout time.Duration
	proxy   string
	tor     *transport.EmbeddedTor
	logger  *slog.Logger
}

// newClientFactory verifies the proxy or starts the embedded Tor daemon.
func newClientFactory(ctx context.Context, cfg *config.Config, stderr io.Writer, logger *slog.Logger) (*clientFactory, error) {
	f := &clientFactory{timeout: cfg.RequestTimeout, proxy: cfg.ProxyAddress, logger: logger}

	switch {
	case cfg.ProxyAddress != "":
		if err := transport.ValidateProxyAddress(cfg.ProxyAddress); err != nil {
			return nil, fmt.Errorf("invalid proxy: %w", err)
		}
		if status := transport.CheckProxy(ctx, cfg.ProxyAddress); status != transport.ProxyStatusOK {
			return nil, fmt.Errorf("proxy check failed for %s: %w", cfg.ProxyAddress, status.Err())
		}
		logger.Info("proxy verified", slog.String("address", cfg.ProxyAddress))

	case cfg.UseTor:
		fmt.Fprintln(stderr, "Starting embedded Tor daemon (this may take 1-3 minutes)...")
		tor := transport.NewEmbeddedTor(transport.WithStartupTimeout(cfg.TorStartupTimeout))
		if err := tor.Start(ctx); err != nil {
			return nil, err
		}
		if status := transport.CheckProxy(ctx, tor.SocksAddr()); status != transport.ProxyStatusOK {
			_ = tor.Stop() //nolint:errcheck // best effort
			return nil, fmt.Errorf("embedded Tor proxy check failed: %w", status.Err())
		}
		fmt.Fprintf(stderr, "Tor SOCKS proxy: %s\n", tor.SocksAddr())
		f.tor = tor
	}
	return f, nil
}

// New returns a client carrying the cookie and headers of site.
func (f *clientFactory) New(site config.SiteConfig) (*http.Client, error) {
	opts := []transport.Option{
		transport.WithTimeout(f.timeout),
		transport.WithCookie(site.Cookie),
		transport.WithHeaders(site.Headers),
	}
	if f.tor != nil {
		return f.tor.Client(opts...)
	}
	if f.proxy != "" {
		opts = append(opts, transport.WithProxyAddress(f.proxy))
	}
	return transport.NewClient(opts...)
}

// Close stops the embedded Tor daemon, if any.
func (f *clientFactory) Close() {
	if f.tor == nil {
		return
	}
	if err := f.tor.Stop(); err != nil {
		f.logger.Error("failed to stop embedded Tor", slog.Any("error", err))
	}
}

// openOutput returns the report destination. Reports may hold personal
// data, so files are created readable by the owner only.
func openOutput(path string, stdout io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return stdout, func() {}, nil
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // user-chosen output path
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// newReportWriter picks the writer for the requested format.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}
