package ast

import "testing"

func TestArenaIndicesAreOneBased(t *testing.T) {
	a := NewArena[int](4)
	first := a.Allocate(10)
	second := a.Allocate(20)
	if first != 1 || second != 2 {
		t.Fatalf("unexpected indices: %d, %d", first, second)
	}
	if a.Get(0) != nil {
		t.Fatalf("index 0 must be the invalid sentinel")
	}
	if got := *a.Get(first); got != 10 {
		t.Fatalf("get(1): got %d", got)
	}
	if a.Get(3) != nil {
		t.Fatalf("out-of-range index must return nil")
	}
}

func TestArenaRestore(t *testing.T) {
	a := NewArena[string](0)
	a.Allocate("x")
	b := NewArena[string](0)
	b.Restore(a.Slice())
	if b.Len() != 1 || *b.Get(1) != "x" {
		t.Fatalf("restore lost data")
	}
}

func TestBuilderPayloadAccessors(t *testing.T) {
	b := NewBuilder(Hints{})
	name := b.Intern("x")
	lit := b.Exprs.NewIntLit(span(0, 4), 3, 0)
	let := b.Stmts.NewLet(span(0, 10), name, NoTypeSynID, lit)

	letData, ok := b.Stmts.Let(let)
	if !ok || letData.Name != name || letData.Init != lit {
		t.Fatalf("let payload mismatch: %+v ok=%v", letData, ok)
	}
	// Accessing with the wrong kind accessor must fail cleanly.
	if _, ok := b.Stmts.If(let); ok {
		t.Fatalf("let must not answer as if")
	}
	litData, ok := b.Exprs.IntLit(lit)
	if !ok || litData.Value != 3 {
		t.Fatalf("literal payload mismatch: %+v ok=%v", litData, ok)
	}
}
