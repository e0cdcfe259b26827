package sealedstore

import (
	"bytes"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	key := []byte{0, 0, 0, 7}
	val := []byte("sealed payload")
	if err := b.Put(key, val); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := b.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: got=%v ok=%v err=%v", got, ok, err)
	}
	if !bytes.Equal(got, val) {
		t.Fatalf("Get returned %q, want %q", got, val)
	}
}

func TestGetAbsentKey(t *testing.T) {
	dir := t.TempDir()
	b, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	_, ok, err := b.Get([]byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for absent key")
	}
}

func TestOverwrite(t *testing.T) {
	dir := t.TempDir()
	b, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	key := []byte{0, 0, 0, 3}
	if err := b.Put(key, []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := b.Put(key, []byte("second")); err != nil {
		t.Fatal(err)
	}
	got, ok, err := b.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: got=%v ok=%v err=%v", got, ok, err)
	}
	if string(got) != "second" {
		t.Fatalf("got %q, want %q", got, "second")
	}
}

func TestReopenExisted(t *testing.T) {
	dir := t.TempDir()
	b1, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if b1.Existed() {
		t.Fatal("fresh directory should not report Existed")
	}
	if err := b1.Put([]byte{0, 0, 0, 0}, []byte("x")); err != nil {
		t.Fatal(err)
	}
	b1.Close()

	b2, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer b2.Close()
	if !b2.Existed() {
		t.Fatal("reopened directory should report Existed")
	}
}
