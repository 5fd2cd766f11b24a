package models

import (
	"errors"
)

// Error taxonomy shared by the catalog components. Absence ("no match",
// "no images") is never reported through these: lookups return an explicit
// empty result instead.
var (
	// ErrRemoteUnavailable covers transport-level listing failures
	// (connection refused, timeout). Retryable by the caller.
	ErrRemoteUnavailable = errors.New("remote listing unavailable")

	// ErrRemoteProtocol covers unexpected status codes and unparseable
	// multistatus responses. Not retried.
	ErrRemoteProtocol = errors.New("remote listing protocol error")

	// ErrPersonNotFound means the caller asked to sync a name that has no
	// person row.
	ErrPersonNotFound = errors.New("person not found")

	// ErrStoreIntegrity marks catalog constraint violations, e.g. a
	// duplicate-key race. Surfaced, never swallowed.
	ErrStoreIntegrity = errors.New("catalog integrity violation")
)
