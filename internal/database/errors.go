package database

import "errors"

var (
	// ErrRunNotFound is returned when no run has the requested id.
	ErrRunNotFound = errors.New("crawl run not found")

	// ErrDatabaseNotFound is returned by Open when the file is missing and
	// CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrNilReport is returned when SaveReport receives a report without a result.
	ErrNilReport = errors.New("report has no result")
)
