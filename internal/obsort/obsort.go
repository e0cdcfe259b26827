// Package obsort implements Batcher's odd-even merge sort over an external,
// caller-supplied element store. It exists because the ORAM shuffle and
// rearrange steps must not leak information through the order in which they
// compare or swap elements: a sorting network performs the exact same
// sequence of compare-and-swap operations for any input of a given length,
// so an observer watching the physical access pattern learns nothing beyond
// the length that was sorted.
//
// The design favors a tiny capability interface (see this repository's
// metricsSink and internal/store.Backend) over a monolithic slice-based
// API: callers implement Accessor to bridge the sorter to whatever storage
// it is shuffling — an in-memory slice in tests, or the ORAM's physical
// slots in production.
//
// © 2025 sqrtoram authors. MIT License.
package obsort

import "github.com/Voskan/sqrtoram/internal/bitutil"

// Comparator reports whether a sorts strictly before b.
type Comparator[T any] func(a, b T) bool

// Accessor bridges the sorting network to an external array-like structure.
// Read and Write are never called outside the range [0, n) passed to Sort.
type Accessor[T any] interface {
	Read(i int) T
	Write(i int, v T)
}

// Sort sorts positions [0, n) of access in ascending order according to cmp,
// using Batcher's odd-even merge sort. The comparator schedule depends only
// on n, never on the values being compared: every call with the same n
// performs the exact same sequence of Read calls against the same indices,
// regardless of the data backing access. Write is called only for a pair
// that compares out of order, so the Write calls depend on the data.
func Sort[T any](n int, cmp Comparator[T], access Accessor[T]) {
	if n <= 1 {
		return
	}
	s := &sorter[T]{n: n, cmp: cmp, access: access}
	if n > iterativeThreshold {
		s.sortIterative()
		return
	}
	high := int(bitutil.NextPowerOfTwo(uint64(n)))
	s.mergeSort(0, high)
}

// iterativeThreshold is the range length beyond which the recursive
// odd-even merge sort's O(log^2 n) call-stack depth becomes a concern (see
// the original design notes on unbounded recursion for very large n). Below
// this threshold the straightforward recursive schedule below is used
// unchanged.
const iterativeThreshold = 1 << 20

type sorter[T any] struct {
	n      int
	cmp    Comparator[T]
	access Accessor[T]
}

func (s *sorter[T]) mergeSort(lo, hi int) {
	if hi-lo > 1 {
		m := (hi - lo) >> 1
		s.mergeSort(lo, lo+m)
		s.mergeSort(lo+m, hi)
		s.merge(lo, hi, 1)
	}
}

func (s *sorter[T]) merge(lo, hi, d int) {
	if hi-lo > 2*d {
		s.merge(lo, hi, 2*d)
		s.merge(lo+d, hi, 2*d)
		for i := lo + d; i < hi-d; i += 2 * d {
			if i+d < s.n {
				s.compareAndSwap(i, i+d)
			}
		}
	} else if lo+d < s.n {
		s.compareAndSwap(lo, lo+d)
	}
}

func (s *sorter[T]) compareAndSwap(a, b int) {
	av := s.access.Read(a)
	bv := s.access.Read(b)
	if !s.cmp(av, bv) {
		s.access.Write(a, bv)
		s.access.Write(b, av)
	}
}

// sortIterative performs the same comparator schedule as mergeSort/merge but
// drives it from an explicit work stack instead of the call stack, bounding
// memory use for very large n at the cost of an extra allocation for the
// stack itself.
func (s *sorter[T]) sortIterative() {
	high := int(bitutil.NextPowerOfTwo(uint64(s.n)))
	// kind 0 = mergeSort(lo,hi), kind 1 = merge(lo,hi,d), kind 2 = the
	// cmp_swap sweep that merge(lo,hi,d) performs after its two recursive
	// merges complete. Splitting the sweep into its own frame lets the
	// stack preserve merge's "recurse, recurse, then sweep" ordering,
	// which the sorting network's correctness depends on.
	type frame struct {
		kind      uint8
		lo, hi, d int
	}
	stack := []frame{{kind: 0, lo: 0, hi: high}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch f.kind {
		case 0: // mergeSort(lo, hi)
			if f.hi-f.lo > 1 {
				m := (f.hi - f.lo) >> 1
				stack = append(stack,
					frame{kind: 1, lo: f.lo, hi: f.hi, d: 1},
					frame{kind: 0, lo: f.lo + m, hi: f.hi},
					frame{kind: 0, lo: f.lo, hi: f.lo + m},
				)
			}
		case 1: // merge(lo, hi, d)
			if f.hi-f.lo > 2*f.d {
				stack = append(stack,
					frame{kind: 2, lo: f.lo, hi: f.hi, d: f.d},
					frame{kind: 1, lo: f.lo + f.d, hi: f.hi, d: 2 * f.d},
					frame{kind: 1, lo: f.lo, hi: f.hi, d: 2 * f.d},
				)
			} else if f.lo+f.d < s.n {
				s.compareAndSwap(f.lo, f.lo+f.d)
			}
		case 2: // the cmp_swap sweep for merge(lo,hi,d)
			for i := f.lo + f.d; i < f.hi-f.d; i += 2 * f.d {
				if i+f.d < s.n {
					s.compareAndSwap(i, i+f.d)
				}
			}
		}
	}
}
