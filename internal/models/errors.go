package models

import "errors"

// Error taxonomy for the aggregation engine. Callers match these with
// errors.Is; lower layers wrap them with context via fmt.Errorf and %w.
var (
	// ErrInvalidIdentifier indicates a job identifier that is not a legal
	// 24-character hex string.
	ErrInvalidIdentifier = errors.New("invalid job identifier")

	// ErrInvalidRange indicates a malformed or inverted time range.
	ErrInvalidRange = errors.New("invalid time range")

	// ErrTypeConversion indicates a value that could not be converted to the
	// requested time representation.
	ErrTypeConversion = errors.New("unsupported type conversion")

	// ErrUnsupportedSortField indicates a sort key the query engine does not
	// recognize.
	ErrUnsupportedSortField = errors.New("unsupported sort field")

	// ErrSourceUnavailable indicates a failure reaching one of the source
	// stores. The engine performs no retry; the error propagates to the caller.
	ErrSourceUnavailable = errors.New("source store unavailable")

	// ErrLockTimeout indicates the shared lookup cache lock could not be
	// acquired within the configured timeout.
	ErrLockTimeout = errors.New("lookup cache lock timeout")

	// ErrPermission indicates a non-admin caller attempting an admin-only
	// operation.
	ErrPermission = errors.New("permission denied")

	// ErrMalformedRecord indicates a mandatory field missing from trusted
	// source input. This is a programming error, not a data condition, and
	// aborts the whole request.
	ErrMalformedRecord = errors.New("malformed source record")
)
