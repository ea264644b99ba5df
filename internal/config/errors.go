package config

import "errors"

// Configuration validation errors returned by Config.Validate().
// Callers match them with errors.Is().
var (
	// ErrNoTarget is returned when no site URL is specified.
	ErrNoTarget = errors.New("no target specified: provide one or more site URLs")

	// ErrInvalidMaxWorkers is returned when the worker count is not positive.
	ErrInvalidMaxWorkers = errors.New("invalid max workers: must be positive")

	// ErrInvalidMaxDepth is returned when the depth limit is negative.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidMaxTime is returned when the time budget is not positive.
	ErrInvalidMaxTime = errors.New("invalid max time: must be positive")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidRate is returned when the request rate is negative.
	ErrInvalidRate = errors.New("invalid rate: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingProxy is returned when --tor and --proxy are both given.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --tor and --proxy cannot be used together")
)
