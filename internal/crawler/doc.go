// Package crawler crawls one company site with a bounded worker pool and
// aggregates the entities found by the extraction pipeline.
//
// # Architecture
//
// A crawl is driven by Spider.Crawl. It seeds a frontier with the base URL,
// starts Config.MaxWorkers workers and supervises them from the calling
// goroutine until one of three limits ends the crawl:
//
//   - MaxTime: the wall-clock budget.
//   - MaxPages: the visited set never grows beyond this size, and links are
//     only scheduled while visited plus pending stays under it.
//   - MaxDepth: links found on a page at MaxDepth are not followed.
//
// The crawl is complete when the frontier is empty and no worker holds an
// entry on two consecutive supervisor checks.
//
// Workers share one store. Every mutation is an insert-if-absent operation
// under the store mutex, and callbacks fire only for records that were new.
//
// # Cancellation
//
// Canceling the context passed to Crawl aborts in-flight requests. The
// internal stop flag only prevents new work: a fetch already running
// completes and its results are discarded.
//
// # Usage
//
//	spider := crawler.NewSpider(client, crawler.WithLogger(logger))
//	result, err := spider.Crawl(ctx, "https://acme.test", crawler.DefaultConfig(), crawler.Callbacks{})
package crawler
