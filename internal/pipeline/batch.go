package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/leadcrawl/internal/log"
	"github.com/nao1215/leadcrawl/internal/model"
)

// DefaultConcurrency is the number of sites crawled at once.
const DefaultConcurrency = 3

// BatchProcessor crawls several sites concurrently, one fresh pipeline per site.
type BatchProcessor struct {
	pipelineFactory func(site string) *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the batch logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets how many sites run at once. Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor. pipelineFactory is called once per site.
func NewBatchProcessor(pipelineFactory func(site string) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = log.Discard()
	}
	return bp
}

// ProcessBatch runs every site and returns the reports in input order.
// A failing site does not stop the others; its error is in its report.
// Sites not started before ctx ends have a nil report, and the context
// error is returned.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sites []string) ([]*model.CrawlReport, error) {
	reports := make([]*model.CrawlReport, len(sites))
	err := bp.ProcessBatchWithCallback(ctx, sites, func(report *model.CrawlReport, index int) {
		// Indexes are distinct, so no lock is needed.
		reports[index] = report
	})
	return reports, err
}

// ProcessBatchWithCallback runs every site and hands each report to
// callback as soon as its pipeline finishes. callback runs on the site's
// goroutine and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sites []string,
	callback func(report *model.CrawlReport, index int),
) error {
	bp.logger.Info("starting batch",
		slog.Int("sites", len(sites)),
		slog.Int("concurrency", bp.concurrency))
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)
	for i, site := range sites {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			report := model.NewCrawlReport(site)
			if err := bp.pipelineFactory(site).Execute(gctx, report); err != nil {
				bp.logger.Warn("site failed", slog.String("site", site), slog.Any("error", err))
			}
			callback(report, i)
			return nil
		})
	}
	err := g.Wait()

	bp.logger.Info("batch complete",
		slog.Int("sites", len(sites)),
		slog.Duration("elapsed", time.Since(start)))
	return err
}
