// Package store defines the minimal byte-level key-value contract the ORAM
// engine addresses its physical slots through, along with the shared error
// values every backend reports through it.
//
// The engine only ever calls Put and Get with 4-byte big-endian physical
// slot numbers as keys; it never iterates, ranges, or deletes. Keeping the
// surface this small is what lets memstore, diskstore and sealedstore be
// interchangeable without the engine knowing which one it is talking to.
//
// © 2025 sqrtoram authors. MIT License.
package store

import "errors"

// ErrClosed is returned by Put/Get after Close has been called on the
// backend.
var ErrClosed = errors.New("store: backend is closed")

// Backend is the storage contract the ORAM engine is built against. Get
// reports ok=false (with a nil error) when the key is absent; it is not an
// error condition by itself — the engine decides whether an absent key is
// expected.
type Backend interface {
	Put(key, value []byte) error
	Get(key []byte) (value []byte, ok bool, err error)
	// Existed reports whether the backend had prior contents when it was
	// opened, i.e. whether this is a reopen of a persistent store rather
	// than a fresh one.
	Existed() bool
	Close() error
}
