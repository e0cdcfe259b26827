package oram

// errors.go collects the sentinel error values the engine reports to
// callers: plain sentinels for comparison with errors.Is, wrapped with
// fmt.Errorf for context at the call site.
//
// © 2025 sqrtoram authors. MIT License.

import "errors"

var (
	// ErrPayloadTooLarge is returned by Put when the value does not fit
	// inside the engine's fixed block size. The engine's state is
	// unchanged.
	ErrPayloadTooLarge = errors.New("oram: payload exceeds block size")

	// ErrStorageFailure wraps a failure returned by the storage backend on
	// a read or write. It is fatal: the engine's invariants may now span a
	// partial maintenance cycle, and the caller must discard the instance.
	ErrStorageFailure = errors.New("oram: storage backend failure")

	// ErrIntegrityMismatch reports that a physical read returned a block
	// whose header disagreed with the header cache, or whose decoded
	// length disagreed with the engine's block size. It signals corruption
	// or tampering, not a user error.
	ErrIntegrityMismatch = errors.New("oram: integrity mismatch")

	// ErrNotFound is returned when the storage backend reports a slot is
	// missing that the engine expected to exist. It indicates a dropped
	// block and is fatal.
	ErrNotFound = errors.New("oram: expected slot not found in storage")

	// ErrBinarySearchMiss reports that the sorted prefix did not contain
	// the tag the engine searched for. Per the design notes on PRF
	// collision handling, this is always a corruption signal: the tag
	// being sought was derived from a block that must exist at this
	// epoch's snapshot. The engine never panics on this condition; it
	// surfaces as ErrIntegrityMismatch's cause.
	ErrBinarySearchMiss = errors.New("oram: binary search did not find expected tag")

	// ErrConcurrentAccess is returned when a second caller attempts to
	// enter the engine while another call is already in flight. The
	// engine's concurrency model is single-threaded by design (see
	// SPEC_FULL.md §5); this turns undefined behavior into a clean error.
	ErrConcurrentAccess = errors.New("oram: concurrent access to engine")

	// ErrInvalidConfig is returned by New/Open when n or blockSize are
	// non-positive.
	ErrInvalidConfig = errors.New("oram: n and blockSize must be positive")

	// ErrClosed is returned by Get/Put after Close has been called.
	ErrClosed = errors.New("oram: engine is closed")
)
