package diskstore

import (
	"bytes"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer b.Close()

	if b.Existed() {
		t.Fatal("fresh directory should not report Existed")
	}

	key := []byte{0, 0, 0, 1}
	val := []byte("hello world")
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

	_, ok, err = b.Get([]byte{9, 9, 9, 9})
	if err != nil {
		t.Fatalf("Get absent key: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for absent key")
	}
}

func TestReopenReportsExisted(t *testing.T) {
	dir := t.TempDir()
	b1, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := b1.Put([]byte{0, 0, 0, 0}, []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := b1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b2, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b2.Close()
	if !b2.Existed() {
		t.Fatal("reopened directory should report Existed")
	}
}
