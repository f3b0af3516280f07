// Package errors provides centralized error handling for agentdeck.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the application. All error types can be checked
// using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
var (
	// ErrInvalidFeedType indicates a feed entry was posted with a type
	// outside the fixed set of valid feed types.
	ErrInvalidFeedType = errors.New("invalid feed type")

	// ErrMemoryUnavailable indicates the long-term memory database could
	// not be opened or queried. Handlers report this as a structured
	// error payload; it never crashes the process.
	ErrMemoryUnavailable = errors.New("memory store unavailable")

	// ErrScriptFailed indicates an external monitoring script failed to
	// run, timed out, or produced unparseable output.
	ErrScriptFailed = errors.New("script execution failed")

	// ErrEmptyValue indicates a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrDataDirLocked indicates the data directory is already locked by
	// another server instance.
	ErrDataDirLocked = errors.New("data directory already in use")

	// ErrInvalidLimit indicates a query limit was outside its allowed range.
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrConfigNil indicates a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidServer indicates an invalid server configuration value.
	ErrConfigInvalidServer = errors.New("invalid server configuration")

	// ErrConfigInvalidTimeout indicates a non-positive timeout in the
	// configuration.
	ErrConfigInvalidTimeout = errors.New("invalid timeout configuration")
)
