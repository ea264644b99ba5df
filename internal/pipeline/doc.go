// Package pipeline runs the per-site work of a crawl as ordered steps.
//
// A Pipeline executes Steps against one model.CrawlReport: the crawl
// itself, optional EXIF inspection of the images found, and persistence.
// BatchProcessor runs one pipeline per site with bounded concurrency, and
// ProgressAggregator funnels the progress of concurrent crawls through a
// single goroutine.
package pipeline
