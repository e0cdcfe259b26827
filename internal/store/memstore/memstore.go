// Package memstore is the in-memory store.Backend used for ephemeral ORAM
// instances and for tests: a mutex-protected map with no persistence.
//
// © 2025 sqrtoram authors. MIT License.
package memstore

import (
	"sync"

	"github.com/Voskan/sqrtoram/internal/store"
)

// Backend is an in-memory, process-lifetime-only store.Backend.
type Backend struct {
	mu     sync.Mutex
	data   map[string][]byte
	closed bool
}

// New constructs an empty in-memory backend. Existed always reports false:
// an in-memory store never pre-exists.
func New() *Backend {
	return &Backend{data: make(map[string][]byte)}
}

func (b *Backend) Put(key, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return store.ErrClosed
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	b.data[string(key)] = cp
	return nil
}

func (b *Backend) Get(key []byte) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, false, store.ErrClosed
	}
	v, ok := b.data[string(key)]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(v))
	copy(cp, v)
	return cp, true, nil
}

func (b *Backend) Existed() bool { return false }

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.data = nil
	return nil
}
