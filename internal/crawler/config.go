package crawler

import (
	"fmt"
	"path/filepath"
	"time"
)

// Default crawl limits.
const (
	DefaultMaxWorkers   = 5
	DefaultMaxDepth     = 3
	DefaultMaxTime      = 300 * time.Second
	DefaultMaxPages     = 50
	DefaultPollInterval = 100 * time.Millisecond

	// idleChecks is the number of consecutive idle observations that end a crawl.
	idleChecks = 2

	// progressEvery is the number of visited pages between progress messages.
	progressEvery = 5
)

// Config holds the limits of one crawl. It is not modified by Crawl.
type Config struct {
	// MaxWorkers is the size of the worker pool.
	MaxWorkers int

	// MaxDepth is the maximum link distance from the base URL.
	MaxDepth int

	// MaxTime is the wall-clock budget.
	MaxTime time.Duration

	// MaxPages bounds the visited set.
	MaxPages int

	// PollInterval spaces supervisor checks and bounds how long a worker
	// waits on an empty frontier before re-checking the stop flag.
	PollInterval time.Duration

	// DrainTimeout bounds how long Crawl waits for workers after stopping.
	// Zero means two poll intervals.
	DrainTimeout time.Duration

	// MergePeople makes later sightings of a known person fill its empty fields.
	MergePeople bool

	// IncludePatterns, when set, restrict followed links to matching paths.
	IncludePatterns []string

	// ExcludePatterns skip links with matching paths.
	ExcludePatterns []string
}

// DefaultConfig returns the default crawl limits.
func DefaultConfig() Config {
	return Config{
		MaxWorkers:   DefaultMaxWorkers,
		MaxDepth:     DefaultMaxDepth,
		MaxTime:      DefaultMaxTime,
		MaxPages:     DefaultMaxPages,
		PollInterval: DefaultPollInterval,
	}
}

// Validate checks the limits.
func (c Config) Validate() error {
	if c.MaxWorkers < 1 {
		return ErrInvalidMaxWorkers
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.MaxTime <= 0 {
		return ErrInvalidMaxTime
	}
	if c.MaxPages < 1 {
		return ErrInvalidMaxPages
	}
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	for _, p := range append(append([]string{}, c.IncludePatterns...), c.ExcludePatterns...) {
		if _, err := filepath.Match(p, "/"); err != nil {
			return fmt.Errorf("%w %q: %v", ErrInvalidPattern, p, err)
		}
	}
	return nil
}

func (c Config) drainTimeout() time.Duration {
	if c.DrainTimeout > 0 {
		return c.DrainTimeout
	}
	return 2 * c.PollInterval
}
