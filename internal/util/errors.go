package util

import "errors"

// Sentinel errors for the ingestion failure taxonomy. Everything except
// ErrStoreUnavailable is recoverable: the record, row, or page is skipped
// and counted.
var (
	// ErrSourceMissing indicates an input file or table is absent
	ErrSourceMissing = errors.New("source missing")

	// ErrMissingColumns indicates a tabular source lacks a required column
	ErrMissingColumns = errors.New("required columns missing")

	// ErrMalformedRow indicates a row lacks a required field or cannot be parsed
	ErrMalformedRow = errors.New("malformed row")

	// ErrStructureNotFound indicates the expected markup container is absent
	ErrStructureNotFound = errors.New("structure not found")

	// ErrUniquenessConflict indicates an insert collided with an existing row
	ErrUniquenessConflict = errors.New("uniqueness conflict")

	// ErrTransport indicates a page could not be fetched
	ErrTransport = errors.New("transport failure")

	// ErrStoreUnavailable indicates the destination store could not be opened
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)
