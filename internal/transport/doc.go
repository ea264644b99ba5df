// Package transport builds the HTTP clients leadcrawl fetches pages with.
//
// A client connects directly or through a SOCKS5 proxy, either one the user
// runs or a private Tor daemon started with tornago. Per-site credentials
// (a raw cookie string and extra headers) are injected into every request,
// redirects included.
package transport
