package oram

import "testing"

func TestTaggerDeterministic(t *testing.T) {
	var salt [32]byte
	for i := range salt {
		salt[i] = byte(i)
	}
	tg := newTagger(salt)
	a := tg.tagFor(42)
	b := tg.tagFor(42)
	if a != b {
		t.Fatalf("tagFor should be deterministic for a fixed salt: %d != %d", a, b)
	}
	if tg.tagFor(42) == tg.tagFor(43) {
		t.Fatal("different logical indices should (almost certainly) produce different tags")
	}
}

func TestTaggerSaltChangesTags(t *testing.T) {
	var saltA, saltB [32]byte
	saltB[0] = 1
	if newTagger(saltA).tagFor(7) == newTagger(saltB).tagFor(7) {
		t.Fatal("different salts should (almost certainly) produce different tags")
	}
}

func TestIsDummy(t *testing.T) {
	real := block{logicalIndex: 3}
	dummy := block{logicalIndex: DummyIndex}
	if real.isDummy() {
		t.Fatal("real block reported as dummy")
	}
	if !dummy.isDummy() {
		t.Fatal("DummyIndex block not reported as dummy")
	}
}
