package infer

import (
	"fmt"
	"reflect"
	"testing"

	"ripple/internal/aggtypes"
	"ripple/internal/ast"
	"ripple/internal/diag"
	"ripple/internal/source"
	"ripple/internal/types"
)

func span(start, end uint32) source.Span {
	return source.Span{File: 1, Start: start, End: end}
}

var sp = span(0, 4)

type fixture struct {
	b    *ast.Builder
	tin  *types.Interner
	bag  *diag.Bag
	aggs *aggtypes.Resolver
	file ast.FileID
}

func newFixture() *fixture {
	b := ast.NewBuilder(ast.Hints{})
	tin := types.NewInterner()
	bag := diag.NewBag(64)
	f := &fixture{b: b, tin: tin, bag: bag}
	f.file = b.NewFile(span(0, 1000))
	f.aggs = aggtypes.NewResolver(b, tin, diag.BagReporter{Bag: bag})
	return f
}

func (f *fixture) stage(stmts ...ast.StmtID) {
	body := f.b.Stmts.NewBlock(sp, stmts)
	f.b.PushItem(f.file, f.b.Items.NewStage(sp, f.b.Intern("main"), body))
}

func (f *fixture) run(t *testing.T) (*Result, bool) {
	t.Helper()
	f.aggs.Run(f.file)
	return Run(f.b, f.file, f.tin, f.aggs, diag.BagReporter{Bag: f.bag})
}

func (f *fixture) hasCode(code diag.Code) bool {
	for _, d := range f.bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func (f *fixture) let(name string, ann ast.TypeSynID, init ast.ExprID) ast.StmtID {
	return f.b.Stmts.NewLet(sp, f.b.Intern(name), ann, init)
}

func (f *fixture) ident(name string, binding ast.StmtID) ast.ExprID {
	return f.b.Exprs.NewIdent(sp, f.b.Intern(name), binding)
}

func (f *fixture) named(name string) ast.TypeSynID {
	return f.b.TypeSyns.NewNamed(sp, f.b.Intern(name))
}

func (f *fixture) aggDef(name string, fields ...[2]string) {
	defs := make([]ast.AggDefField, 0, len(fields))
	for _, fd := range fields {
		defs = append(defs, ast.AggDefField{Name: f.b.Intern(fd[0]), Ann: f.named(fd[1]), Span: sp})
	}
	f.b.PushItem(f.file, f.b.Items.NewAggDef(sp, f.b.Intern(name), defs))
}

func (f *fixture) intType(width uint32) types.TypeID {
	return f.tin.Intern(types.MakeInt(width))
}

func (f *fixture) wantLet(t *testing.T, res *Result, let ast.StmtID, want types.TypeID) {
	t.Helper()
	got, ok := res.LetTypes[let]
	if !ok {
		t.Fatalf("binding did not resolve; diagnostics: %v", f.bag.Items())
	}
	if got != want {
		t.Fatalf("binding resolved to %s, want %s",
			f.tin.String(got, f.b.Strings), f.tin.String(want, f.b.Strings))
	}
}

func TestLetLiteralDefaultsInt32(t *testing.T) {
	f := newFixture()
	x := f.let("x", ast.NoTypeSynID, f.b.Exprs.NewIntLit(sp, 5, 0))
	f.stage(x)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, x, f.tin.Builtins().Int32)
}

func TestAnnotationOverridesLiteralDefault(t *testing.T) {
	f := newFixture()
	x := f.let("x", f.named("int8"), f.b.Exprs.NewIntLit(sp, 5, 0))
	f.stage(x)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, x, f.intType(8))
}

func TestIdentSharesBindingType(t *testing.T) {
	f := newFixture()
	x := f.let("x", f.named("int8"), f.b.Exprs.NewIntLit(sp, 5, 0))
	use := f.ident("x", x)
	y := f.let("y", ast.NoTypeSynID, use)
	f.stage(x, y)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, y, f.intType(8))
	if res.ExprTypes[use] != f.intType(8) {
		t.Fatalf("use site resolved to %s, want int8",
			f.tin.String(res.ExprTypes[use], f.b.Strings))
	}
}

func TestArithmeticUnifiesOperands(t *testing.T) {
	f := newFixture()
	x := f.let("x", f.named("int8"), f.b.Exprs.NewIntLit(sp, 5, 0))
	lit := f.b.Exprs.NewIntLit(sp, 3, 0)
	sum := f.b.Exprs.NewBinary(sp, ast.OpAdd, f.ident("x", x), lit)
	y := f.let("y", ast.NoTypeSynID, sum)
	f.stage(x, y)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, y, f.intType(8))
	if res.ExprTypes[lit] != f.intType(8) {
		t.Fatalf("literal operand took %s, want int8 from context",
			f.tin.String(res.ExprTypes[lit], f.b.Strings))
	}
}

func TestCompareYieldsBool(t *testing.T) {
	f := newFixture()
	x := f.let("x", f.named("int8"), ast.NoExprID)
	lit := f.b.Exprs.NewIntLit(sp, 3, 0)
	cmp := f.b.Exprs.NewBinary(sp, ast.OpLt, f.ident("x", x), lit)
	c := f.let("c", ast.NoTypeSynID, cmp)
	f.stage(x, c)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, c, f.tin.Builtins().Bool)
	if res.ExprTypes[lit] != f.intType(8) {
		t.Fatalf("compare operand took %s, want int8",
			f.tin.String(res.ExprTypes[lit], f.b.Strings))
	}
}

func TestConcatSumsWidths(t *testing.T) {
	f := newFixture()
	a := f.let("a", f.named("int8"), ast.NoExprID)
	b := f.let("b", f.named("int8"), ast.NoExprID)
	cat := f.b.Exprs.NewConcat(sp, []ast.ExprID{f.ident("a", a), f.ident("b", b)})
	c := f.let("c", ast.NoTypeSynID, cat)
	f.stage(a, b, c)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, c, f.intType(16))
}

func TestConcatRejectsWidthlessOperand(t *testing.T) {
	f := newFixture()
	p := f.let("p", f.b.TypeSyns.NewPort(sp, f.named("int8")), ast.NoExprID)
	cat := f.b.Exprs.NewConcat(sp, []ast.ExprID{f.ident("p", p), f.ident("p", p)})
	c := f.let("c", ast.NoTypeSynID, cat)
	f.stage(p, c)

	_, ok := f.run(t)
	if ok {
		t.Fatal("expected failure for port operand in concatenation")
	}
	if !f.hasCode(diag.InferConcatOperand) {
		t.Fatalf("missing concat operand diagnostic, got %v", f.bag.Items())
	}
}

func TestCastWidensInteger(t *testing.T) {
	f := newFixture()
	x := f.let("x", f.named("int8"), ast.NoExprID)
	cast := f.b.Exprs.NewCast(sp, f.ident("x", x), f.named("int16"))
	y := f.let("y", ast.NoTypeSynID, cast)
	f.stage(x, y)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, y, f.intType(16))
}

func TestCastRejectsWidthMismatch(t *testing.T) {
	f := newFixture()
	cast := f.b.Exprs.NewCast(sp, f.b.Exprs.NewBoolLit(sp, true), f.named("int8"))
	y := f.let("y", ast.NoTypeSynID, cast)
	f.stage(y)

	_, ok := f.run(t)
	if ok {
		t.Fatal("expected failure casting bool to int8")
	}
	if !f.hasCode(diag.InferCastError) {
		t.Fatalf("missing cast diagnostic, got %v", f.bag.Items())
	}
}

func TestCastBoolToSingleBitInt(t *testing.T) {
	f := newFixture()
	cast := f.b.Exprs.NewCast(sp, f.b.Exprs.NewBoolLit(sp, true), f.named("int1"))
	y := f.let("y", ast.NoTypeSynID, cast)
	f.stage(y)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, y, f.intType(1))
}

func TestIndexDerivesElementType(t *testing.T) {
	f := newFixture()
	arr := f.let("arr", f.b.TypeSyns.NewArray(sp, f.named("int8"), 4), ast.NoExprID)
	idx := f.b.Exprs.NewIndex(sp, f.ident("arr", arr), f.b.Exprs.NewIntLit(sp, 0, 0))
	e := f.let("e", ast.NoTypeSynID, idx)
	f.stage(arr, e)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, e, f.intType(8))
}

func TestIndexRejectsBoolIndex(t *testing.T) {
	f := newFixture()
	arr := f.let("arr", f.b.TypeSyns.NewArray(sp, f.named("int8"), 4), ast.NoExprID)
	idx := f.b.Exprs.NewIndex(sp, f.ident("arr", arr), f.b.Exprs.NewBoolLit(sp, true))
	e := f.let("e", ast.NoTypeSynID, idx)
	f.stage(arr, e)

	_, ok := f.run(t)
	if ok {
		t.Fatal("expected failure for boolean index")
	}
	if !f.hasCode(diag.InferBadIndex) {
		t.Fatalf("missing index diagnostic, got %v", f.bag.Items())
	}
}

func TestIndexRejectsNonArray(t *testing.T) {
	f := newFixture()
	x := f.let("x", f.named("int8"), ast.NoExprID)
	idx := f.b.Exprs.NewIndex(sp, f.ident("x", x), f.b.Exprs.NewIntLit(sp, 0, 0))
	e := f.let("e", ast.NoTypeSynID, idx)
	f.stage(x, e)

	_, ok := f.run(t)
	if ok {
		t.Fatal("expected failure indexing a scalar")
	}
	if !f.hasCode(diag.InferNotArray) {
		t.Fatalf("missing array diagnostic, got %v", f.bag.Items())
	}
}

func TestFieldProjection(t *testing.T) {
	f := newFixture()
	f.aggDef("Pair", [2]string{"a", "int8"}, [2]string{"b", "bool"})
	p := f.let("p", f.named("Pair"), ast.NoExprID)
	proj := f.b.Exprs.NewField(sp, f.ident("p", p), f.b.Intern("a"))
	v := f.let("v", ast.NoTypeSynID, proj)
	f.stage(p, v)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, v, f.intType(8))
}

func TestFieldProjectionUnknownField(t *testing.T) {
	f := newFixture()
	f.aggDef("Pair", [2]string{"a", "int8"}, [2]string{"b", "bool"})
	p := f.let("p", f.named("Pair"), ast.NoExprID)
	proj := f.b.Exprs.NewField(sp, f.ident("p", p), f.b.Intern("c"))
	v := f.let("v", ast.NoTypeSynID, proj)
	f.stage(p, v)

	_, ok := f.run(t)
	if ok {
		t.Fatal("expected failure projecting a missing field")
	}
	if !f.hasCode(diag.InferUnknownField) {
		t.Fatalf("missing field diagnostic, got %v", f.bag.Items())
	}
}

func TestAggregateLiteral(t *testing.T) {
	f := newFixture()
	f.aggDef("Pair", [2]string{"a", "int8"}, [2]string{"b", "bool"})
	lit := f.b.Exprs.NewIntLit(sp, 5, 0)
	agg := f.b.Exprs.NewAggLit(sp, f.b.Intern("Pair"), []ast.AggLitField{
		{Name: f.b.Intern("a"), Value: lit, Span: sp},
		{Name: f.b.Intern("b"), Value: f.b.Exprs.NewBoolLit(sp, true), Span: sp},
	})
	p := f.let("p", ast.NoTypeSynID, agg)
	f.stage(p)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	aggID, found := f.tin.AggByName(f.b.Intern("Pair"))
	if !found {
		t.Fatal("aggregate not registered")
	}
	f.wantLet(t, res, p, f.tin.Intern(types.MakeAgg(aggID)))
	if res.ExprTypes[lit] != f.intType(8) {
		t.Fatalf("literal field took %s, want declared int8",
			f.tin.String(res.ExprTypes[lit], f.b.Strings))
	}
}

func TestAggregateLiteralMissingField(t *testing.T) {
	f := newFixture()
	f.aggDef("Pair", [2]string{"a", "int8"}, [2]string{"b", "bool"})
	agg := f.b.Exprs.NewAggLit(sp, f.b.Intern("Pair"), []ast.AggLitField{
		{Name: f.b.Intern("a"), Value: f.b.Exprs.NewIntLit(sp, 5, 0), Span: sp},
	})
	p := f.let("p", ast.NoTypeSynID, agg)
	f.stage(p)

	_, ok := f.run(t)
	if ok {
		t.Fatal("expected failure for incomplete aggregate literal")
	}
	if !f.hasCode(diag.InferBadAggLiteral) {
		t.Fatalf("missing literal diagnostic, got %v", f.bag.Items())
	}
}

func TestPortReadDerivesElement(t *testing.T) {
	f := newFixture()
	p := f.let("p", f.b.TypeSyns.NewPort(sp, f.named("int8")), ast.NoExprID)
	read := f.b.Exprs.NewPortRead(sp, f.ident("p", p))
	v := f.let("v", ast.NoTypeSynID, read)
	f.stage(p, v)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, v, f.intType(8))
}

func TestPortWriteInfersPortType(t *testing.T) {
	f := newFixture()
	p := f.let("p", ast.NoTypeSynID, ast.NoExprID)
	write := f.b.Stmts.NewWrite(sp, f.ident("p", p), f.b.Exprs.NewIntLit(sp, 7, 8))
	f.stage(p, write)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, p, f.tin.Intern(types.MakePort(f.intType(8))))
}

func TestRegReadBothDirections(t *testing.T) {
	f := newFixture()
	r := f.let("r", f.b.TypeSyns.NewReg(sp, f.named("int8")), ast.NoExprID)
	v := f.let("v", ast.NoTypeSynID, f.b.Exprs.NewRegRead(sp, f.ident("r", r)))

	r2 := f.let("r2", ast.NoTypeSynID, ast.NoExprID)
	v2 := f.let("v2", f.named("int8"), f.b.Exprs.NewRegRead(sp, f.ident("r2", r2)))
	f.stage(r, v, r2, v2)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, v, f.intType(8))
	f.wantLet(t, res, r2, f.tin.Intern(types.MakeReg(f.intType(8))))
}

func TestBypassRoundTrip(t *testing.T) {
	f := newFixture()
	name := f.b.Intern("fwd")
	start := f.b.Stmts.NewBypassStart(sp, name)
	write := f.b.Stmts.NewBypassWrite(sp, name, f.b.Exprs.NewIntLit(sp, 1, 8))
	v := f.let("v", ast.NoTypeSynID, f.b.Exprs.NewBypassRead(sp, name))
	end := f.b.Stmts.NewBypassEnd(sp, name)
	f.stage(start, write, v, end)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, v, f.intType(8))
}

func TestBypassReadWithoutWriter(t *testing.T) {
	f := newFixture()
	name := f.b.Intern("fwd")
	start := f.b.Stmts.NewBypassStart(sp, name)
	v := f.let("v", ast.NoTypeSynID, f.b.Exprs.NewBypassRead(sp, name))
	f.stage(start, v)

	_, ok := f.run(t)
	if ok {
		t.Fatal("expected failure for bypass region with no writer")
	}
	if !f.hasCode(diag.InferBypassNoWriter) {
		t.Fatalf("missing bypass diagnostic, got %v", f.bag.Items())
	}
}

func TestConditionTakesBool(t *testing.T) {
	f := newFixture()
	c := f.let("c", ast.NoTypeSynID, ast.NoExprID)
	body := f.b.Stmts.NewBlock(sp, nil)
	loop := f.b.Stmts.NewWhile(sp, f.ident("c", c), body)
	f.stage(c, loop)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, c, f.tin.Builtins().Bool)
}

func TestConditionConflictsWithInteger(t *testing.T) {
	f := newFixture()
	x := f.let("x", f.named("int8"), ast.NoExprID)
	then := f.b.Stmts.NewBlock(sp, nil)
	cond := f.b.Stmts.NewIf(sp, f.ident("x", x), then, ast.NoStmtID)
	f.stage(x, cond)

	_, ok := f.run(t)
	if ok {
		t.Fatal("expected failure for integer condition")
	}
	if !f.hasCode(diag.InferTypeConflict) {
		t.Fatalf("missing conflict diagnostic, got %v", f.bag.Items())
	}
}

func TestUnconstrainedBindingUnresolved(t *testing.T) {
	f := newFixture()
	x := f.let("x", ast.NoTypeSynID, ast.NoExprID)
	f.stage(x)

	_, ok := f.run(t)
	if ok {
		t.Fatal("expected failure for unconstrained binding")
	}
	if !f.hasCode(diag.InferUnresolvedType) {
		t.Fatalf("missing unresolved diagnostic, got %v", f.bag.Items())
	}
}

func TestUnboundIdentReported(t *testing.T) {
	f := newFixture()
	use := f.b.Exprs.NewIdent(sp, f.b.Intern("ghost"), ast.NoStmtID)
	x := f.let("x", ast.NoTypeSynID, use)
	f.stage(x)

	_, ok := f.run(t)
	if ok {
		t.Fatal("expected failure for unbound identifier")
	}
	if !f.hasCode(diag.InferUnboundIdent) {
		t.Fatalf("missing unbound diagnostic, got %v", f.bag.Items())
	}
}

func buildChain(f *fixture, depth int) []ast.StmtID {
	stmts := make([]ast.StmtID, 0, depth)
	prev := f.let("v0", ast.NoTypeSynID, f.b.Exprs.NewIntLit(sp, 1, 0))
	stmts = append(stmts, prev)
	for i := 1; i < depth; i++ {
		name := fmt.Sprintf("v%d", i)
		next := f.let(name, ast.NoTypeSynID, f.ident(fmt.Sprintf("v%d", i-1), prev))
		stmts = append(stmts, next)
		prev = next
	}
	return stmts
}

func TestDeepChainConvergesWithinBound(t *testing.T) {
	f := newFixture()
	stmts := buildChain(f, 16)
	f.stage(stmts...)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	if len(res.LetTypes) != 16 {
		t.Fatalf("resolved %d bindings, want 16", len(res.LetTypes))
	}
	if res.Rounds > 2*res.Nodes+2 {
		t.Fatalf("solver used %d rounds over %d nodes", res.Rounds, res.Nodes)
	}
}

func TestResolutionIsDeterministic(t *testing.T) {
	build := func() (*Result, bool) {
		f := newFixture()
		x := f.let("x", f.named("int8"), f.b.Exprs.NewIntLit(sp, 5, 0))
		sum := f.b.Exprs.NewBinary(sp, ast.OpAdd, f.ident("x", x), f.b.Exprs.NewIntLit(sp, 3, 0))
		y := f.let("y", ast.NoTypeSynID, sum)
		f.stage(x, y)
		return f.run(t)
	}
	first, ok1 := build()
	second, ok2 := build()
	if !ok1 || !ok2 {
		t.Fatal("runs failed")
	}
	if !reflect.DeepEqual(first.ExprTypes, second.ExprTypes) {
		t.Fatalf("expression types differ across runs: %v vs %v", first.ExprTypes, second.ExprTypes)
	}
	if !reflect.DeepEqual(first.LetTypes, second.LetTypes) {
		t.Fatalf("binding types differ across runs: %v vs %v", first.LetTypes, second.LetTypes)
	}
}

func TestAssignUnifiesTargetAndValue(t *testing.T) {
	f := newFixture()
	x := f.let("x", f.named("int8"), ast.NoExprID)
	lit := f.b.Exprs.NewIntLit(sp, 5, 0)
	asn := f.b.Stmts.NewAssign(sp, f.ident("x", x), lit)
	f.stage(x, asn)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, x, f.intType(8))
	if res.ExprTypes[lit] != f.intType(8) {
		t.Fatalf("assigned literal took %s, want int8 from target",
			f.tin.String(res.ExprTypes[lit], f.b.Strings))
	}
}

func TestBranchAssignsConflict(t *testing.T) {
	f := newFixture()
	x := f.let("x", ast.NoTypeSynID, ast.NoExprID)
	then := f.b.Stmts.NewBlock(sp, []ast.StmtID{
		f.b.Stmts.NewAssign(sp, f.ident("x", x), f.b.Exprs.NewIntLit(sp, 1, 8)),
	})
	els := f.b.Stmts.NewBlock(sp, []ast.StmtID{
		f.b.Stmts.NewAssign(sp, f.ident("x", x), f.b.Exprs.NewIntLit(sp, 1, 16)),
	})
	cond := f.b.Exprs.NewBoolLit(sp, true)
	f.stage(x, f.b.Stmts.NewIf(sp, cond, then, els))

	_, ok := f.run(t)
	if ok {
		t.Fatal("expected failure for divergent branch assignments")
	}
	if !f.hasCode(diag.InferTypeConflict) {
		t.Fatalf("missing conflict diagnostic, got %v", f.bag.Items())
	}
}

func TestBranchAssignsConverge(t *testing.T) {
	f := newFixture()
	x := f.let("x", ast.NoTypeSynID, ast.NoExprID)
	then := f.b.Stmts.NewBlock(sp, []ast.StmtID{
		f.b.Stmts.NewAssign(sp, f.ident("x", x), f.b.Exprs.NewIntLit(sp, 1, 8)),
	})
	els := f.b.Stmts.NewBlock(sp, []ast.StmtID{
		f.b.Stmts.NewAssign(sp, f.ident("x", x), f.b.Exprs.NewIntLit(sp, 2, 8)),
	})
	cond := f.b.Exprs.NewBoolLit(sp, true)
	f.stage(x, f.b.Stmts.NewIf(sp, cond, then, els))

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	f.wantLet(t, res, x, f.intType(8))
}

func TestCastIntegerToAggregate(t *testing.T) {
	f := newFixture()
	f.aggDef("Pair", [2]string{"a", "int8"}, [2]string{"b", "int8"})
	x := f.let("x", f.named("int16"), ast.NoExprID)
	cast := f.b.Exprs.NewCast(sp, f.ident("x", x), f.named("Pair"))
	y := f.let("y", ast.NoTypeSynID, cast)
	f.stage(x, y)

	res, ok := f.run(t)
	if !ok {
		t.Fatalf("run failed: %v", f.bag.Items())
	}
	aggID, found := f.tin.AggByName(f.b.Intern("Pair"))
	if !found {
		t.Fatal("aggregate not registered")
	}
	f.wantLet(t, res, y, f.tin.Intern(types.MakeAgg(aggID)))
}

func TestCastIntegerToAggregateWidthMismatch(t *testing.T) {
	f := newFixture()
	f.aggDef("Odd", [2]string{"a", "int8"}, [2]string{"b", "int1"})
	x := f.let("x", f.named("int16"), ast.NoExprID)
	cast := f.b.Exprs.NewCast(sp, f.ident("x", x), f.named("Odd"))
	y := f.let("y", ast.NoTypeSynID, cast)
	f.stage(x, y)

	_, ok := f.run(t)
	if ok {
		t.Fatal("expected failure casting int16 to a 9-bit aggregate")
	}
	if !f.hasCode(diag.InferCastError) {
		t.Fatalf("missing cast diagnostic, got %v", f.bag.Items())
	}
}

func TestConcatWidthOverflowConflicts(t *testing.T) {
	f := newFixture()
	a := f.let("a", f.named("int4294967295"), ast.NoExprID)
	b := f.let("b", f.named("int4294967295"), ast.NoExprID)
	cat := f.b.Exprs.NewConcat(sp, []ast.ExprID{f.ident("a", a), f.ident("b", b)})
	c := f.let("c", ast.NoTypeSynID, cat)
	f.stage(a, b, c)

	_, ok := f.run(t)
	if ok {
		t.Fatal("expected failure for a concatenation wider than any integer type")
	}
	if !f.hasCode(diag.InferTypeConflict) {
		t.Fatalf("missing conflict diagnostic, got %v", f.bag.Items())
	}
}
