// Package sealedstore implements a one-file-per-key store.Backend whose
// filename is the hex Blake2b-256 hash of the key, never the key itself. The
// hash is unkeyed: anyone who knows a key can compute its filename. It is grounded
// on original_source/src/db/sgxfs.rs, the protected-filesystem backend from
// the reference implementation: that backend has no portable Go equivalent
// (it depends on an SGX enclave's sealed filesystem), so this backend keeps
// its shape — hash the key to a filename, write the record atomically — on
// an ordinary filesystem instead, trading enclave sealing for
// rename-on-write atomicity via github.com/natefinch/atomic.
//
// © 2025 sqrtoram authors. MIT License.
package sealedstore

import (
	"bytes"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"golang.org/x/crypto/blake2b"

	"github.com/Voskan/sqrtoram/internal/store"
)

// Backend stores each key as a separate file inside dir.
type Backend struct {
	dir     string
	existed bool
}

// Open opens (creating if necessary) a sealed-file store rooted at dir.
// Existed reports whether dir already held files before this call.
func Open(dir string) (*Backend, error) {
	entries, readErr := os.ReadDir(dir)
	existed := readErr == nil && len(entries) > 0

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &Backend{dir: dir, existed: existed}, nil
}

func (b *Backend) Existed() bool { return b.existed }

func (b *Backend) filename(key []byte) string {
	sum := blake2b.Sum256(key)
	return filepath.Join(b.dir, hex.EncodeToString(sum[:]))
}

// record is the on-disk framing for a sealed file: the original key,
// followed by the value, each length-prefixed so Get can recover the exact
// value bytes without relying on file size alone.
func encodeRecord(key, value []byte) []byte {
	out := make([]byte, 0, 8+len(key)+len(value))
	out = appendUint32(out, uint32(len(key)))
	out = append(out, key...)
	out = appendUint32(out, uint32(len(value)))
	out = append(out, value...)
	return out
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func readUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func decodeRecord(buf []byte) (key, value []byte, err error) {
	if len(buf) < 4 {
		return nil, nil, errors.New("sealedstore: truncated record")
	}
	keyLen := int(readUint32(buf))
	buf = buf[4:]
	if len(buf) < keyLen+4 {
		return nil, nil, errors.New("sealedstore: truncated record")
	}
	key = buf[:keyLen]
	buf = buf[keyLen:]
	valLen := int(readUint32(buf))
	buf = buf[4:]
	if len(buf) < valLen {
		return nil, nil, errors.New("sealedstore: truncated record")
	}
	value = buf[:valLen]
	return key, value, nil
}

func (b *Backend) Put(key, value []byte) error {
	rec := encodeRecord(key, value)
	return atomic.WriteFile(b.filename(key), bytes.NewReader(rec))
}

func (b *Backend) Get(key []byte) ([]byte, bool, error) {
	buf, err := os.ReadFile(b.filename(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	storedKey, value, err := decodeRecord(buf)
	if err != nil {
		return nil, false, err
	}
	if !bytes.Equal(storedKey, key) {
		// A hash collision between two distinct keys would land here; the
		// engine never retries with a different key for the same slot, so
		// treat this as a storage-level integrity failure rather than a
		// silent miss.
		return nil, false, errors.New("sealedstore: filename collision detected")
	}
	return value, true, nil
}

func (b *Backend) Close() error { return nil }

var _ store.Backend = (*Backend)(nil)
