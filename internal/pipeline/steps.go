package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/leadcrawl/internal/crawler"
	"github.com/nao1215/leadcrawl/internal/log"
	"github.com/nao1215/leadcrawl/internal/model"
	"github.com/nao1215/leadcrawl/internal/urlnorm"
)

// ErrNoCrawlResult is returned by steps that need a crawl result when the
// crawl step has not produced one.
var ErrNoCrawlResult = errors.New("no crawl result")

// CrawlStep crawls report.Site and stores the result on the report.
type CrawlStep struct {
	spider    *crawler.Spider
	cfg       crawler.Config
	callbacks crawler.Callbacks
	logger    *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlCallbacks sets the callbacks passed to every crawl.
func WithCrawlCallbacks(cb crawler.Callbacks) CrawlStepOption {
	return func(s *CrawlStep) {
		s.callbacks = cb
	}
}

// WithCrawlLogger sets the step logger.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep returns a step that crawls with spider under cfg.
func NewCrawlStep(spider *crawler.Spider, cfg crawler.Config, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		spider: spider,
		cfg:    cfg,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do runs the crawl. Only configuration errors fail the step; an
// unreachable site produces an empty result.
func (s *CrawlStep) Do(ctx context.Context, report *model.CrawlReport) error {
	report.Settings = model.RunSettings{
		MaxWorkers:     s.cfg.MaxWorkers,
		MaxDepth:       s.cfg.MaxDepth,
		MaxPages:       s.cfg.MaxPages,
		MaxTimeSeconds: s.cfg.MaxTime.Seconds(),
		MergePeople:    s.cfg.MergePeople,
		Include:        s.cfg.IncludePatterns,
		Exclude:        s.cfg.ExcludePatterns,
	}
	result, err := s.spider.Crawl(ctx, report.Site, s.cfg, s.callbacks)
	if err != nil {
		return fmt.Errorf("crawl %s: %w", report.Site, err)
	}
	report.Result = result
	s.logger.Info("crawl completed",
		slog.String("site", result.Domain),
		slog.Int("pages", len(result.VisitedURLs)),
		slog.String("stop_reason", string(result.StopReason)))
	return nil
}

// Default EXIF step limits.
const (
	DefaultMaxEXIFImages   = 20
	DefaultMaxImageSize    = 5 * 1024 * 1024
	defaultEXIFConcurrency = 4
)

// exifExtensions lists the formats that carry EXIF.
var exifExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".heic": true,
}

// ImageEXIFStep downloads same-site images found by the crawl and records
// their EXIF tags. Camera serials, GPS positions and author names in
// published photos are common OSINT leads.
type ImageEXIFStep struct {
	client       *http.Client
	maxImages    int
	maxImageSize int64
	concurrency  int
	logger       *slog.Logger
}

// ImageEXIFStepOption configures an ImageEXIFStep.
type ImageEXIFStepOption func(*ImageEXIFStep)

// WithMaxEXIFImages caps the number of images downloaded per site.
func WithMaxEXIFImages(n int) ImageEXIFStepOption {
	return func(s *ImageEXIFStep) {
		if n > 0 {
			s.maxImages = n
		}
	}
}

// WithMaxImageSize caps the bytes read per image.
func WithMaxImageSize(size int64) ImageEXIFStepOption {
	return func(s *ImageEXIFStep) {
		if size > 0 {
			s.maxImageSize = size
		}
	}
}

// WithEXIFLogger sets the step logger.
func WithEXIFLogger(logger *slog.Logger) ImageEXIFStepOption {
	return func(s *ImageEXIFStep) {
		s.logger = logger
	}
}

// NewImageEXIFStep returns an EXIF step that downloads through client.
func NewImageEXIFStep(client *http.Client, opts ...ImageEXIFStepOption) *ImageEXIFStep {
	s := &ImageEXIFStep{
		client:       client,
		maxImages:    DefaultMaxEXIFImages,
		maxImageSize: DefaultMaxImageSize,
		concurrency:  defaultEXIFConcurrency,
		logger:       log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ImageEXIFStep) Name() string {
	return "image_exif"
}

// Do inspects the images of report.Result. Download and parse failures
// are skipped; only a missing result fails the step.
func (s *ImageEXIFStep) Do(ctx context.Context, report *model.CrawlReport) error {
	if report.Result == nil {
		return ErrNoCrawlResult
	}
	images := report.Result.Images
	candidates := s.candidates(report.Result.Domain, images)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, i := range candidates {
		// Each goroutine writes a distinct element.
		g.Go(func() error {
			data, err := s.download(gctx, images[i].URL)
			if err != nil {
				s.logger.Debug("image download failed", slog.String("url", images[i].URL), slog.Any("error", err))
				return nil
			}
			meta, err := ParseEXIF(data)
			if err != nil {
				return nil
			}
			images[i].EXIF = meta
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never fail

	withEXIF := 0
	for _, i := range candidates {
		if images[i].EXIF != nil {
			withEXIF++
		}
	}
	s.logger.Info("exif inspection completed",
		slog.Int("images", len(candidates)),
		slog.Int("with_exif", withEXIF))
	return ctx.Err()
}

// candidates returns the indexes of same-site images in an EXIF format.
func (s *ImageEXIFStep) candidates(domain string, images []model.ImageRecord) []int {
	var out []int
	for i, img := range images {
		if len(out) >= s.maxImages {
			break
		}
		if !urlnorm.SameDomain(img.URL, domain) {
			continue
		}
		u, err := url.Parse(img.URL)
		if err != nil || !exifExtensions[strings.ToLower(path.Ext(u.Path))] {
			continue
		}
		out = append(out, i)
	}
	return out
}

func (s *ImageEXIFStep) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if resp.ContentLength > s.maxImageSize {
		return nil, fmt.Errorf("image too large: %d bytes", resp.ContentLength)
	}
	return io.ReadAll(io.LimitReader(resp.Body, s.maxImageSize))
}

// ReportSaver persists reports.
type ReportSaver interface {
	SaveReport(ctx context.Context, report *model.CrawlReport) error
}

// PersistStep saves the report. It should be the last step.
type PersistStep struct {
	saver ReportSaver
}

// NewPersistStep returns a step that saves through saver.
func NewPersistStep(saver ReportSaver) *PersistStep {
	return &PersistStep{saver: saver}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do saves the report. The step name is recorded before saving so the
// stored report lists it.
func (s *PersistStep) Do(ctx context.Context, report *model.CrawlReport) error {
	if report.Result == nil {
		return ErrNoCrawlResult
	}
	stored := *report
	if stored.FinishedAt.IsZero() {
		stored.FinishedAt = time.Now().UTC()
	}
	stored.PerformedSteps = append(append([]string(nil), report.PerformedSteps...), s.Name())
	if err := s.saver.SaveReport(ctx, &stored); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}
