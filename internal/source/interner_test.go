package source

import "testing"

func TestInternerDeduplicates(t *testing.T) {
	in := NewInterner()
	a := in.Intern("valve")
	b := in.Intern("valve")
	if a != b {
		t.Fatalf("same spelling must intern to one ID: %d vs %d", a, b)
	}
	if s := in.MustLookup(a); s != "valve" {
		t.Fatalf("lookup: got %q", s)
	}
}

func TestInternerNFCNormalization(t *testing.T) {
	in := NewInterner()
	// U+00E9 vs e + U+0301 are the same identifier after NFC.
	composed := in.Intern("café")
	decomposed := in.Intern("café")
	if composed != decomposed {
		t.Fatalf("NFC-equal spellings must share an ID: %d vs %d", composed, decomposed)
	}
}

func TestInternerSnapshotRestore(t *testing.T) {
	in := NewInterner()
	stage := in.Intern("stage")
	fifo := in.Intern("fifo")

	restored := Restore(in.Snapshot())
	if got := restored.Intern("stage"); got != stage {
		t.Fatalf("restored interner lost %q: got %d, want %d", "stage", got, stage)
	}
	if got := restored.Intern("fifo"); got != fifo {
		t.Fatalf("restored interner lost %q: got %d, want %d", "fifo", got, fifo)
	}
	if restored.Len() != in.Len() {
		t.Fatalf("length mismatch: %d vs %d", restored.Len(), in.Len())
	}
}
