package ast

import (
	"testing"

	"ripple/internal/source"
)

func span(start, end uint32) source.Span {
	return source.Span{Start: start, End: end}
}

type recordingVisitor struct {
	exprs   []ExprID
	stmts   []StmtID
	items   []ItemID
	after   int
	stopAt  ExprID
	stopped bool
}

func (r *recordingVisitor) PostExpr(_ *Builder, id ExprID) VisitResult {
	r.exprs = append(r.exprs, id)
	if id == r.stopAt && r.stopAt.IsValid() {
		r.stopped = true
		return VisitStop
	}
	return VisitContinue
}

func (r *recordingVisitor) PostStmt(_ *Builder, id StmtID) VisitResult {
	r.stmts = append(r.stmts, id)
	return VisitContinue
}

func (r *recordingVisitor) PostItem(_ *Builder, id ItemID) VisitResult {
	r.items = append(r.items, id)
	return VisitContinue
}

func (r *recordingVisitor) AfterFile(_ *Builder, _ FileID) VisitResult {
	r.after++
	return VisitContinue
}

func buildStageFile(b *Builder) (FileID, ExprID, ExprID, StmtID) {
	x := b.Intern("x")
	left := b.Exprs.NewIntLit(span(0, 1), 1, 0)
	right := b.Exprs.NewIntLit(span(2, 3), 2, 0)
	sum := b.Exprs.NewBinary(span(0, 3), OpAdd, left, right)
	let := b.Stmts.NewLet(span(0, 10), x, NoTypeSynID, sum)
	body := b.Stmts.NewBlock(span(0, 10), []StmtID{let})
	stage := b.Items.NewStage(span(0, 10), b.Intern("main"), body)

	file := b.NewFile(span(0, 10))
	b.PushItem(file, stage)
	return file, left, sum, let
}

func TestWalkPostOrder(t *testing.T) {
	b := NewBuilder(Hints{})
	file, left, sum, let := buildStageFile(b)

	v := &recordingVisitor{}
	if res := WalkFile(b, file, v); res != VisitContinue {
		t.Fatalf("walk aborted unexpectedly")
	}

	// Children before parents.
	posLeft, posSum := -1, -1
	for i, id := range v.exprs {
		switch id {
		case left:
			posLeft = i
		case sum:
			posSum = i
		}
	}
	if posLeft == -1 || posSum == -1 || posLeft > posSum {
		t.Fatalf("post-order violated: left=%d sum=%d", posLeft, posSum)
	}
	if len(v.stmts) != 2 { // let + block
		t.Fatalf("expected 2 statements, got %d", len(v.stmts))
	}
	if v.stmts[0] != let {
		t.Fatalf("let must be visited before its enclosing block")
	}
	if len(v.items) != 1 || v.after != 1 {
		t.Fatalf("items=%d after=%d", len(v.items), v.after)
	}
}

func TestWalkStopShortCircuits(t *testing.T) {
	b := NewBuilder(Hints{})
	file, left, _, _ := buildStageFile(b)

	v := &recordingVisitor{stopAt: left}
	if res := WalkFile(b, file, v); res != VisitStop {
		t.Fatalf("expected VisitStop")
	}
	if !v.stopped {
		t.Fatalf("stop hook not reached")
	}
	if v.after != 0 {
		t.Fatalf("AfterFile must not run after a stop")
	}
	if len(v.stmts) != 0 {
		t.Fatalf("no statement hooks expected after an early stop")
	}
}
