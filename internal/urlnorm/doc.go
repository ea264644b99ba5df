// Package urlnorm canonicalizes links found in crawled pages.
//
// A Normalizer resolves a (possibly relative) href against the URL of the page
// it was found on, strips the fragment, keeps the query string and lowercases
// scheme and host. Non-navigational hrefs (javascript:, mailto:, tel:, data:,
// empty and anchor-only) are rejected. Results are memoized because the same
// navigation links repeat on every page of a site.
package urlnorm
