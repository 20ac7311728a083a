package uf

import "testing"

func TestUnionFindBasic(t *testing.T) {
	u := New(5)
	if u.NrBlocks() != 5 {
		t.Fatalf("NrBlocks() = %d, want 5", u.NrBlocks())
	}
	if !u.Unite(0, 1) {
		t.Fatal("expected Unite(0,1) to merge distinct classes")
	}
	if u.Unite(0, 1) {
		t.Fatal("expected second Unite(0,1) to be a no-op")
	}
	if u.NrBlocks() != 4 {
		t.Fatalf("NrBlocks() = %d, want 4", u.NrBlocks())
	}
	if !u.Connected(0, 1) {
		t.Fatal("expected 0 and 1 to be connected")
	}
	if u.Connected(0, 2) {
		t.Fatal("expected 0 and 2 to be distinct")
	}
}

func TestUnionFindAddEntry(t *testing.T) {
	u := New(2)
	idx := u.AddEntry()
	if idx != 2 {
		t.Fatalf("AddEntry() = %d, want 2", idx)
	}
	if u.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", u.Size())
	}
	if u.NrBlocks() != 3 {
		t.Fatalf("NrBlocks() = %d, want 3", u.NrBlocks())
	}
}

func TestUnionFindChainMerge(t *testing.T) {
	u := New(10)
	for i := 0; i < 9; i++ {
		u.Unite(i, i+1)
	}
	if u.NrBlocks() != 1 {
		t.Fatalf("NrBlocks() = %d, want 1", u.NrBlocks())
	}
	for i := 1; i < 10; i++ {
		if !u.Connected(0, i) {
			t.Fatalf("expected 0 and %d to be connected", i)
		}
	}
}
