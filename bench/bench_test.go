// Package bench provides reproducible micro-benchmarks for sqrtoram.
// Run via: go test ./bench -bench=. -benchmem
//
// There is no GetParallel here: an Oram instance is single-threaded by
// design (see the root package's concurrency model) and a concurrent
// benchmark would just measure ErrConcurrentAccess contention rather than
// engine throughput.
//
// © 2025 sqrtoram authors. MIT License.
package bench

import (
	"math/rand"
	"testing"

	oram "github.com/Voskan/sqrtoram"
)

const (
	n         = 4096
	blockSize = 64
)

func newTestEngine(b *testing.B) *oram.Oram {
	o, err := oram.New(n, blockSize)
	if err != nil {
		b.Fatalf("oram.New: %v", err)
	}
	return o
}

func BenchmarkPut(b *testing.B) {
	o := newTestEngine(b)
	rng := rand.New(rand.NewSource(1))
	val := make([]byte, blockSize)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := uint32(rng.Intn(n))
		if err := o.Put(key, val); err != nil {
			b.Fatalf("Put: %v", err)
		}
	}
}

func BenchmarkGet(b *testing.B) {
	o := newTestEngine(b)
	val := make([]byte, blockSize)
	for i := uint32(0); i < n; i++ {
		if err := o.Put(i, val); err != nil {
			b.Fatalf("warm-up Put: %v", err)
		}
	}
	rng := rand.New(rand.NewSource(1))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := uint32(rng.Intn(n))
		if _, err := o.Get(key); err != nil {
			b.Fatalf("Get: %v", err)
		}
	}
}

func BenchmarkMixed(b *testing.B) {
	o := newTestEngine(b)
	val := make([]byte, blockSize)
	rng := rand.New(rand.NewSource(1))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := uint32(rng.Intn(n))
		if i%4 == 0 {
			if err := o.Put(key, val); err != nil {
				b.Fatalf("Put: %v", err)
			}
			continue
		}
		if _, err := o.Get(key); err != nil {
			b.Fatalf("Get: %v", err)
		}
	}
}
