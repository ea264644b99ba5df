// Package model defines the core data structures used throughout leadcrawl.
//
// This package contains the following main types:
//   - Page: A fetched web page with its raw body and response headers
//   - Entity records: EmailRecord, PhoneRecord, PersonRecord, SocialProfile,
//     Technology, ImageRecord and FormEntryPoint
//   - CrawlResult: The terminal snapshot of one crawl
//   - CrawlReport: A CrawlResult plus run bookkeeping (run id, steps, errors)
//
// Models live in their own package so that crawler, extract, pipeline, report
// and database can share them without import cycles.
//
// All types are serializable to JSON for report output and database storage.
package model
