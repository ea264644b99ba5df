package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/nao1215/leadcrawl/internal/extract"
	"github.com/nao1215/leadcrawl/internal/log"
	"github.com/nao1215/leadcrawl/internal/model"
	"github.com/nao1215/leadcrawl/internal/urlnorm"
)

// Callbacks are notified of records the first time they are seen.
// They are called synchronously from worker goroutines, possibly
// concurrently, and must not block for long. Nil callbacks are skipped.
type Callbacks struct {
	OnEmailFound  func(model.EmailRecord)
	OnPersonFound func(model.PersonRecord)
	OnPhoneFound  func(model.PhoneRecord)
	OnSocialFound func(model.SocialProfile)

	// OnProgress receives a cumulative status line after the first visited
	// page and every 5 visited pages. It is called from the Crawl goroutine.
	OnProgress func(string)
}

// Spider crawls company sites. A Spider holds no per-crawl state and may
// run several crawls concurrently.
type Spider struct {
	fetcher  *Fetcher
	pipeline *extract.Pipeline
	norm     *urlnorm.Normalizer
	logger   *slog.Logger

	// rps throttles each crawl when positive.
	rps float64
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPipeline replaces the extraction pipeline.
func WithPipeline(p *extract.Pipeline) SpiderOption {
	return func(s *Spider) {
		s.pipeline = p
	}
}

// WithNormalizer shares a URL normalizer cache between spiders.
func WithNormalizer(n *urlnorm.Normalizer) SpiderOption {
	return func(s *Spider) {
		s.norm = n
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) SpiderOption {
	return func(s *Spider) {
		if ua != "" {
			s.fetcher.userAgent = ua
		}
	}
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(d time.Duration) SpiderOption {
	return func(s *Spider) {
		if d > 0 {
			s.fetcher.timeout = d
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes read per page.
func WithMaxBodySize(size int64) SpiderOption {
	return func(s *Spider) {
		if size > 0 {
			s.fetcher.maxBodySize = size
		}
	}
}

// WithRateLimit limits each crawl to rps requests per second.
func WithRateLimit(rps float64) SpiderOption {
	return func(s *Spider) {
		s.rps = rps
	}
}

// NewSpider creates a Spider that fetches through client.
func NewSpider(client *http.Client, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:  NewFetcher(client),
		pipeline: extract.NewPipeline(),
		norm:     urlnorm.New(),
		logger:   log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Crawl crawls the site at baseURL within the limits of cfg.
//
// Configuration errors are returned before any request is made. Every other
// failure is per page: the page is skipped and counted in PageErrors. A site
// that cannot be reached yields an empty result and a nil error.
func (s *Spider) Crawl(ctx context.Context, baseURL string, cfg Config, cb Callbacks) (*model.CrawlResult, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrEmptyBaseURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed, err := urlnorm.Canonical(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	domain := urlnorm.Host(seed)

	c := &crawl{
		cfg:      cfg,
		cb:       cb,
		fetcher:  s.fetcher,
		pipeline: s.pipeline,
		norm:     s.norm,
		logger:   s.logger.With(slog.String("site", domain)),
		store:    newStore(cfg.MaxPages, cfg.MergePeople),
		frontier: newFrontier(),
		filter: linkFilter{
			domain:  domain,
			include: cfg.IncludePatterns,
			exclude: cfg.ExcludePatterns,
		},
	}
	if s.rps > 0 {
		// One limiter per crawl so concurrent sites do not share a budget.
		f := *s.fetcher
		f.limiter = rate.NewLimiter(rate.Limit(s.rps), 1)
		c.fetcher = &f
	}

	// halted ends rate limiter waits once the crawl stops. In-flight
	// requests keep ctx.
	var cancelHalt context.CancelFunc
	c.halted, cancelHalt = context.WithCancel(ctx)
	c.cancelHalt = cancelHalt
	defer cancelHalt()

	start := time.Now()
	c.store.Schedule([]string{seed})
	c.frontier.Push(entry{url: seed, depth: 0})
	c.logger.Info("crawl started",
		slog.String("url", seed),
		slog.Int("workers", cfg.MaxWorkers),
		slog.Int("max_depth", cfg.MaxDepth),
		slog.Int("max_pages", cfg.MaxPages),
		slog.Duration("max_time", cfg.MaxTime))

	var wg sync.WaitGroup
	for range cfg.MaxWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.work(ctx)
		}()
	}

	reason := c.supervise(ctx, start)
	c.halt(reason)
	if !waitTimeout(&wg, cfg.drainTimeout()) {
		c.logger.Debug("workers still fetching after stop; their results are discarded")
	}
	c.store.Close()

	result := model.NewCrawlResult(seed, domain)
	c.store.Snapshot(result)
	result.StopReason = c.stopReason()
	result.DurationSeconds = time.Since(start).Seconds()
	result.ComputeTotals()
	result.Summary = Summarize(result)

	c.logger.Info("crawl finished",
		slog.String("reason", string(result.StopReason)),
		slog.Int("pages", len(result.VisitedURLs)),
		slog.Int("page_errors", result.PageErrors),
		slog.Int("emails", result.Totals.Emails),
		slog.Int("people", result.Totals.People),
		slog.Float64("seconds", result.DurationSeconds))
	return result, nil
}

// crawl is the state of one Crawl call.
type crawl struct {
	cfg      Config
	cb       Callbacks
	fetcher  *Fetcher
	pipeline *extract.Pipeline
	norm     *urlnorm.Normalizer
	logger   *slog.Logger
	store    *store
	frontier *frontier
	filter   linkFilter

	stop       atomic.Bool
	halted     context.Context
	cancelHalt context.CancelFunc
	reasonMu   sync.Mutex
	reason     model.StopReason
}

// halt sets the stop flag. The first reason given is kept.
func (c *crawl) halt(reason model.StopReason) {
	c.reasonMu.Lock()
	if c.reason == "" {
		c.reason = reason
	}
	c.reasonMu.Unlock()
	c.stop.Store(true)
	c.cancelHalt()
}

func (c *crawl) stopped() bool {
	return c.stop.Load()
}

func (c *crawl) stopReason() model.StopReason {
	c.reasonMu.Lock()
	defer c.reasonMu.Unlock()
	if c.reason == model.StopReasonCompleted && c.store.Truncated() {
		return model.StopReasonPageLimit
	}
	if c.reason == "" {
		return model.StopReasonCompleted
	}
	return c.reason
}

// work is the worker loop: dequeue, fetch, extract, enqueue.
func (c *crawl) work(ctx context.Context) {
	for !c.stopped() {
		e, ok := c.frontier.Pop(c.cfg.PollInterval)
		if !ok {
			continue
		}
		c.process(ctx, e)
	}
}

func (c *crawl) process(ctx context.Context, e entry) {
	defer c.frontier.Done()

	if c.stopped() {
		return
	}
	if err := c.fetcher.Wait(c.halted); err != nil || c.stopped() {
		return
	}
	admitted, limitHit := c.store.TryVisit(e.url)
	if limitHit {
		c.halt(model.StopReasonPageLimit)
		return
	}
	if !admitted {
		return
	}

	page, err := c.fetcher.Fetch(ctx, e.url)
	if err == nil && !urlnorm.SameDomain(page.URL, c.filter.domain) {
		err = fmt.Errorf("%w: %s -> %s", ErrOffDomainRedirect, e.url, page.URL)
	}
	if err != nil {
		c.store.PageFailed()
		c.logger.Debug("fetch failed", slog.String("url", e.url), slog.Any("error", err))
		return
	}
	page.Depth = e.depth
	if c.stopped() {
		return
	}
	if page.Hash != "" && c.store.SeenContent(page.Hash) {
		c.logger.Debug("duplicate content skipped", slog.String("url", e.url))
		return
	}

	doc, err := extract.NewDocument(page, c.norm)
	if err != nil {
		c.store.PageFailed()
		c.logger.Debug("parse failed", slog.String("url", e.url), slog.Any("error", err))
		return
	}
	findings, errs := c.pipeline.Run(doc)
	for _, err := range errs {
		c.logger.Debug("extractor failed", slog.Any("error", err))
	}
	if c.stopped() {
		return
	}
	c.merge(page, findings)

	if e.depth >= c.cfg.MaxDepth {
		return
	}
	var links []string
	for _, link := range doc.Links() {
		if c.filter.allow(link) {
			links = append(links, link)
		}
	}
	for _, link := range c.store.Schedule(links) {
		c.frontier.Push(entry{url: link, depth: e.depth + 1})
	}
}

// merge adds the findings of one page to the store and fires callbacks for
// new records after the store lock is released.
func (c *crawl) merge(page *model.Page, f *extract.Findings) {
	for _, rec := range f.Emails {
		if c.store.AddEmail(rec) && c.cb.OnEmailFound != nil {
			c.cb.OnEmailFound(rec)
		}
	}
	for _, rec := range f.Phones {
		if c.store.AddPhone(rec) && c.cb.OnPhoneFound != nil {
			c.cb.OnPhoneFound(rec)
		}
	}
	for _, rec := range f.People {
		if c.store.AddPerson(rec) && c.cb.OnPersonFound != nil {
			c.cb.OnPersonFound(rec)
		}
	}
	for _, rec := range f.Social {
		if c.store.AddSocial(rec) && c.cb.OnSocialFound != nil {
			c.cb.OnSocialFound(rec)
		}
	}
	for _, tech := range f.Technologies {
		c.store.AddTechnology(tech)
	}
	for _, rec := range f.Images {
		c.store.AddImage(rec)
	}
	for _, rec := range f.Forms {
		c.store.AddForm(rec)
	}
	if md := f.Metadata; md != nil {
		if page.IsHome() {
			c.store.SetHomeMetadata(md)
		}
		c.store.SetOG(page.URL, md.OpenGraph)
	}
}

// waitTimeout waits for wg up to d and reports whether it finished.
func waitTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
