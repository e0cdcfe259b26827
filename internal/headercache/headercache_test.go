package headercache

import "testing"

func TestSearchByTag(t *testing.T) {
	c := New(5)
	tags := []uint32{10, 20, 30, 40, 50}
	for i, tag := range tags {
		c.Set(i, Header{Tag: tag, LogicalIndex: uint32(i)})
	}

	for i, tag := range tags {
		slot, ok := c.SearchByTag(len(tags), tag)
		if !ok || slot != i {
			t.Fatalf("SearchByTag(%d) = (%d, %v), want (%d, true)", tag, slot, ok, i)
		}
	}

	if _, ok := c.SearchByTag(len(tags), 25); ok {
		t.Fatal("expected miss for tag not present")
	}
}

func TestSearchByTagRespectsEnd(t *testing.T) {
	c := New(4)
	c.Set(0, Header{Tag: 1})
	c.Set(1, Header{Tag: 2})
	c.Set(2, Header{Tag: 3})
	c.Set(3, Header{Tag: 4})

	if _, ok := c.SearchByTag(2, 3); ok {
		t.Fatal("search should not find tags beyond end")
	}
	if slot, ok := c.SearchByTag(2, 2); !ok || slot != 1 {
		t.Fatalf("got (%d,%v), want (1,true)", slot, ok)
	}
}

func TestVerify(t *testing.T) {
	c := New(2)
	c.Set(0, Header{Tag: 5, LogicalIndex: 1})

	if err := c.Verify(0, Header{Tag: 5, LogicalIndex: 1}); err != nil {
		t.Fatalf("unexpected mismatch: %v", err)
	}

	err := c.Verify(0, Header{Tag: 6, LogicalIndex: 1})
	if err == nil {
		t.Fatal("expected mismatch error")
	}
	if _, ok := err.(*ErrIntegrityMismatch); !ok {
		t.Fatalf("expected *ErrIntegrityMismatch, got %T", err)
	}
}
