// Package headercache mirrors every physical slot's (tag, logicalIndex) pair
// in memory so the ORAM engine can binary-search the sorted prefix without
// touching physical storage for anything but the one matching slot.
// Collapsing an O(log capacity) sequence of block reads into an in-memory
// lookup plus a single physical read is load-bearing for obliviousness:
// without it, the search itself would touch storage in a pattern correlated
// with the tag distribution.
//
// © 2025 sqrtoram authors. MIT License.
package headercache

import (
	"fmt"
	"sort"
)

// Header is the (tag, logicalIndex) pair mirrored for a single physical
// slot.
type Header struct {
	Tag          uint32
	LogicalIndex uint32
}

// ErrIntegrityMismatch reports that a physical read returned a header that
// disagrees with the cache — a corruption or tampering signal, never a
// user-facing condition.
type ErrIntegrityMismatch struct {
	Slot     int
	Cached   Header
	Observed Header
}

func (e *ErrIntegrityMismatch) Error() string {
	return fmt.Sprintf("headercache: slot %d header mismatch: cached %+v, observed %+v", e.Slot, e.Cached, e.Observed)
}

// Cache is a dense mirror of every slot's header, indexed by physical slot
// number.
type Cache struct {
	headers []Header
}

// New constructs a Cache for the given capacity. All headers start zeroed;
// callers populate them via Set before relying on SearchByTag.
func New(capacity int) *Cache {
	return &Cache{headers: make([]Header, capacity)}
}

// Len returns the cache's capacity.
func (c *Cache) Len() int { return len(c.headers) }

// Get returns the cached header for slot i.
func (c *Cache) Get(i int) Header { return c.headers[i] }

// Set records the header observed (or just written) at slot i.
func (c *Cache) Set(i int, h Header) { c.headers[i] = h }

// Verify returns an *ErrIntegrityMismatch if observed does not match the
// header cached for slot i.
func (c *Cache) Verify(i int, observed Header) error {
	if c.headers[i] != observed {
		return &ErrIntegrityMismatch{Slot: i, Cached: c.headers[i], Observed: observed}
	}
	return nil
}

// SearchByTag binary-searches headers[0:end) — which must be sorted
// ascending by Tag, as it is immediately after a shuffle — for the slot
// whose Tag equals tag. ok is false if no such slot was found, which the
// caller should treat as a corruption signal rather than a normal miss: the
// tag being searched for was derived from a block that must exist at this
// epoch's snapshot.
func (c *Cache) SearchByTag(end int, tag uint32) (slot int, ok bool) {
	prefix := c.headers[:end]
	i := sort.Search(len(prefix), func(i int) bool {
		return prefix[i].Tag >= tag
	})
	if i < len(prefix) && prefix[i].Tag == tag {
		return i, true
	}
	return 0, false
}
