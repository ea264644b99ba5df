// Package database stores crawl reports in SQLite (modernc.org/sqlite, no cgo).
//
// Each run is one row of crawl_runs holding the full report as JSON, plus
// one row per entity in the emails, phones, people, social_links,
// technologies, images, forms and og_pages tables. The entity tables make
// cross-run questions ("which emails are new since last week") plain SQL.
//
// Sites are keyed by host, so "acme.com" and "https://ACME.com/" share a
// history. See SiteKey.
package database
