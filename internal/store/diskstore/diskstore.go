// Package diskstore is the on-disk store.Backend backing a persistent ORAM
// instance, built on github.com/dgraph-io/badger/v4 as the actual
// persistence layer named by the "on-disk" configuration option.
//
// © 2025 sqrtoram authors. MIT License.
package diskstore

import (
	"errors"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/Voskan/sqrtoram/internal/store"
)

// Backend wraps a badger.DB opened at a fixed directory.
type Backend struct {
	db      *badger.DB
	existed bool
}

// Open opens (or creates) a badger store at dir. existed reports whether dir
// already contained a database before this call.
func Open(dir string, logger *zap.Logger) (*Backend, error) {
	existed := directoryHasContents(dir)

	opts := badger.DefaultOptions(dir).WithLogger(newBadgerLogger(logger))
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Backend{db: db, existed: existed}, nil
}

func directoryHasContents(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	return len(entries) > 0
}

func (b *Backend) Put(key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(append([]byte(nil), key...), append([]byte(nil), value...))
	})
}

func (b *Backend) Get(key []byte) ([]byte, bool, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			out = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	if out == nil {
		return nil, false, nil
	}
	return out, true, nil
}

func (b *Backend) Existed() bool { return b.existed }

func (b *Backend) Close() error {
	return b.db.Close()
}

// badgerLogger adapts a *zap.Logger to badger's minimal Logger interface so
// diskstore never has to introduce a second logging dependency.
type badgerLogger struct {
	l *zap.SugaredLogger
}

func newBadgerLogger(l *zap.Logger) *badgerLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &badgerLogger{l: l.Sugar()}
}

func (b *badgerLogger) Errorf(f string, args ...any)   { b.l.Errorf(f, args...) }
func (b *badgerLogger) Warningf(f string, args ...any) { b.l.Warnf(f, args...) }
func (b *badgerLogger) Infof(f string, args ...any)    { b.l.Infof(f, args...) }
func (b *badgerLogger) Debugf(f string, args ...any)   { b.l.Debugf(f, args...) }

var _ store.Backend = (*Backend)(nil)

// DefaultName joins a base directory and an ORAM name the way the engine's
// Open(name, ...) expects, kept here so cmd/examples agree on the layout.
func DefaultName(base, name string) string {
	return filepath.Join(base, name)
}
