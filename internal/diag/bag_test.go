package diag

import (
	"testing"

	"ripple/internal/source"
)

func span(file source.FileID, start, end uint32) source.Span {
	return source.Span{File: file, Start: start, End: end}
}

func TestBagLimitKeepsEarlierEntries(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewError(InferTypeConflict, span(0, 0, 1), "first")) {
		t.Fatalf("first add should fit")
	}
	if !b.Add(NewError(InferTypeConflict, span(0, 1, 2), "second")) {
		t.Fatalf("second add should fit")
	}
	if b.Add(NewError(InferTypeConflict, span(0, 2, 3), "third")) {
		t.Fatalf("third add should be dropped")
	}
	if b.Len() != 2 {
		t.Fatalf("len: got %d", b.Len())
	}
	if b.Items()[0].Message != "first" {
		t.Fatalf("limit must never truncate earlier entries")
	}
}

func TestBagSortDeterministic(t *testing.T) {
	b := NewBag(10)
	b.Add(NewError(InferUnresolvedType, span(1, 5, 6), "later"))
	b.Add(NewError(InferTypeConflict, span(0, 9, 10), "same file, later offset"))
	b.Add(NewError(InferTypeConflict, span(0, 1, 2), "earliest"))
	b.Sort()

	items := b.Items()
	if items[0].Message != "earliest" || items[2].Message != "later" {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(10)
	d := NewError(InferNotArray, span(0, 3, 4), "not an array")
	b.Add(d)
	b.Add(d)
	b.Add(NewError(InferNotArray, span(0, 7, 8), "same code, other span"))
	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("dedup: got %d items", b.Len())
	}
}

func TestBagHasErrors(t *testing.T) {
	b := NewBag(4)
	b.Add(New(SevWarning, AggInfo, span(0, 0, 0), "just a warning"))
	if b.HasErrors() {
		t.Fatalf("warnings are not errors")
	}
	b.Add(NewError(AggUnknownType, span(0, 0, 0), "unknown type"))
	if !b.HasErrors() {
		t.Fatalf("expected HasErrors after an error")
	}
}

func TestBagMergeGrowsLimit(t *testing.T) {
	a := NewBag(1)
	a.Add(NewError(UnknownCode, span(0, 0, 0), "a"))
	other := NewBag(2)
	other.Add(NewError(UnknownCode, span(0, 1, 1), "b"))
	other.Add(NewError(UnknownCode, span(0, 2, 2), "c"))
	a.Merge(other)
	if a.Len() != 3 {
		t.Fatalf("merge must keep every entry, got %d", a.Len())
	}
}
