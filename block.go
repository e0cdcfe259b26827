// Package oram implements a square-root ORAM: a storage engine that hides
// which logical index an access touched by giving every Get and Put the same
// physical footprint, regardless of which block it actually concerns.
//
// © 2025 sqrtoram authors. MIT License.
package oram

import (
	"encoding/binary"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"
)

// DummyIndex marks a block as a dummy: padding inserted so that every region
// of the array is always full, and so that shelter scans and sorts never
// reveal how many genuine entries they touched.
const DummyIndex = ^uint32(0)

// block is the engine's in-memory view of a single slot: a PRF tag (for a
// dummy, one derived from its slot or from DummyIndex, or copied from the
// block it replaced), the logical index itself (DummyIndex for dummies), and
// its payload.
type block struct {
	tag          uint32
	logicalIndex uint32
	payload      []byte
}

func (b block) isDummy() bool { return b.logicalIndex == DummyIndex }

// tagger derives the PRF tag for a logical index from a per-instance salt,
// the way the engine's original keeps one keyed hash per session rather than
// a single fixed one: two instances over the same logical indices never
// produce the same physical tag sequence.
type tagger struct {
	salt [32]byte
}

func newTagger(salt [32]byte) tagger { return tagger{salt: salt} }

// tagFor derives a 4-byte tag for logicalIndex from a keyed Blake2b hash
// with a 4-byte output: only enough bits to order the array, never enough
// to leak the index itself from the tag alone within a single epoch's
// blocks.
func (t tagger) tagFor(logicalIndex uint32) uint32 {
	h := t.newMAC()
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], logicalIndex)
	h.Write(buf[:])
	sum := h.Sum(nil)
	return binary.BigEndian.Uint32(sum[:4])
}

func (t tagger) newMAC() hash.Hash {
	h, err := blake2b.New(4, t.salt[:])
	if err != nil {
		// blake2b.New only fails for a digest size outside 1..64 or a key
		// over 64 bytes; here the size is 4 and the salt is fixed at 32.
		panic(err)
	}
	return h
}

// freshPayload draws blockSize bytes of random padding, for dummy clones and
// shelter-append dummies that must never correlate with a prior payload at
// the same slot.
func freshPayload(rng io.Reader, blockSize int) ([]byte, error) {
	payload := make([]byte, blockSize)
	if _, err := io.ReadFull(rng, payload); err != nil {
		return nil, err
	}
	return payload, nil
}
