package crawler

import "errors"

var (
	// ErrEmptyBaseURL is returned when Crawl is called without a base URL.
	ErrEmptyBaseURL = errors.New("base URL is empty")

	// ErrInvalidBaseURL is returned when the base URL is not an http(s) URL with a host.
	ErrInvalidBaseURL = errors.New("invalid base URL")

	// ErrInvalidMaxWorkers is returned when MaxWorkers is less than 1.
	ErrInvalidMaxWorkers = errors.New("max workers must be at least 1")

	// ErrInvalidMaxDepth is returned when MaxDepth is negative.
	ErrInvalidMaxDepth = errors.New("max depth must not be negative")

	// ErrInvalidMaxTime is returned when MaxTime is not positive.
	ErrInvalidMaxTime = errors.New("max time must be positive")

	// ErrInvalidMaxPages is returned when MaxPages is less than 1.
	ErrInvalidMaxPages = errors.New("max pages must be at least 1")

	// ErrInvalidPollInterval is returned when PollInterval is not positive.
	ErrInvalidPollInterval = errors.New("poll interval must be positive")

	// ErrInvalidPattern is returned when an include or exclude pattern is malformed.
	ErrInvalidPattern = errors.New("invalid URL pattern")

	// ErrUnexpectedStatus is returned by Fetch for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrNotHTML is returned by Fetch for responses that are not HTML documents.
	ErrNotHTML = errors.New("response is not HTML")

	// ErrOffDomainRedirect is recorded when a page redirects to another host.
	ErrOffDomainRedirect = errors.New("redirected off the crawled domain")
)
