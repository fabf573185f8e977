// Package infer resolves the type of every expression and binding in a unit
// by relaxing a unification graph to a fixed point. Each node is an
// equivalence class of AST type slots; edges derive node values from other
// nodes, and validators check the final shapes. The pass walks the tree
// post-order, wires the graph construct by construct, then solves.
package infer

import (
	"ripple/internal/aggtypes"
	"ripple/internal/ast"
	"ripple/internal/diag"
	"ripple/internal/source"
	"ripple/internal/types"
)

// Result carries the resolved types out of a successful run. The same types
// are also written into the AST slots themselves.
type Result struct {
	ExprTypes map[ast.ExprID]types.TypeID
	LetTypes  map[ast.StmtID]types.TypeID
	Nodes     int
	Rounds    int
}

// Pass holds the state of one inference run over one file. A Pass is not
// reusable; build a fresh one per file.
type Pass struct {
	builder  *ast.Builder
	interner *types.Interner
	aggs     *aggtypes.Resolver
	reporter diag.Reporter

	nodes    []Node
	bySlot   map[slotKey]NodeID
	regions  map[source.StringID]NodeID
	fileSpan source.Span

	buildFailed bool
	result      Result
}

// Run infers types for every expression and let binding in the file.
// Aggregate definitions must already be resolved by the aggtypes resolver
// passed in. Returns false when any diagnostic with error severity was
// reported; the Result is still populated with whatever did resolve.
func Run(b *ast.Builder, file ast.FileID, interner *types.Interner, aggs *aggtypes.Resolver, reporter diag.Reporter) (*Result, bool) {
	p := &Pass{
		builder:  b,
		interner: interner,
		aggs:     aggs,
		reporter: reporter,
		bySlot:   make(map[slotKey]NodeID),
		regions:  make(map[source.StringID]NodeID),
		result: Result{
			ExprTypes: make(map[ast.ExprID]types.TypeID),
			LetTypes:  make(map[ast.StmtID]types.TypeID),
		},
	}
	if root := b.Files.Get(file); root != nil {
		p.fileSpan = root.Span
	}
	ok := ast.WalkFile(b, file, p) == ast.VisitContinue
	return &p.result, ok
}

// Graph construction ----------------------------------------------------------

func (p *Pass) newNode(sp source.Span) NodeID {
	id := NodeID(len(p.nodes))
	p.nodes = append(p.nodes, Node{span: sp, bypassWrites: -1})
	return id
}

// nodeFor fetches the node owning the slot, creating one when the slot has
// not been seen yet. Every slot maps to exactly one node for the whole run.
func (p *Pass) nodeFor(slot SlotRef, sp source.Span) NodeID {
	key := slot.key()
	if id, ok := p.bySlot[key]; ok {
		return id
	}
	id := p.newNode(sp)
	p.nodes[id].slots = append(p.nodes[id].slots, slot)
	p.bySlot[key] = id
	return id
}

// attach adds a further slot to an existing node, uniting the slot's type
// with the node's equivalence class.
func (p *Pass) attach(id NodeID, slot SlotRef) {
	p.nodes[id].slots = append(p.nodes[id].slots, slot)
	p.bySlot[slot.key()] = id
}

func (p *Pass) exprNode(id ast.ExprID) NodeID {
	expr := p.builder.Exprs.Get(id)
	return p.nodeFor(exprSlot(id), expr.Span)
}

// regionNode fetches the shared node of a named bypass region. All reads and
// writes of the region unify through this one node.
func (p *Pass) regionNode(name source.StringID, sp source.Span) NodeID {
	if id, ok := p.regions[name]; ok {
		return id
	}
	id := p.newNode(sp)
	p.nodes[id].bypassWrites = 0
	p.ensure(id, ValidBypass, sp)
	p.regions[name] = id
	return id
}

func (p *Pass) addEdge(target NodeID, e Edge) {
	p.nodes[target].edges = append(p.nodes[target].edges, e)
}

// convey makes dst adopt src's resolved type.
func (p *Pass) convey(dst, src NodeID) {
	p.addEdge(dst, Edge{Op: OpConvey, Sources: []NodeID{src}})
}

// conveyBoth unites two nodes in both directions so a type arriving at
// either one settles on both.
func (p *Pass) conveyBoth(a, b NodeID) {
	p.convey(a, b)
	p.convey(b, a)
}

func (p *Pass) conveyConst(n NodeID, t types.TypeID) {
	p.addEdge(n, Edge{Op: OpConst, Const: t})
}

func (p *Pass) ensure(n NodeID, kind ValidatorKind, sp source.Span) {
	p.nodes[n].validators = append(p.nodes[n].validators, Validator{Kind: kind, Span: sp})
}

// Visitor hooks ---------------------------------------------------------------

func (p *Pass) PostExpr(b *ast.Builder, id ast.ExprID) ast.VisitResult {
	expr := b.Exprs.Get(id)
	switch expr.Kind {
	case ast.ExprIdent:
		data, _ := b.Exprs.Ident(id)
		if !data.Binding.IsValid() {
			p.report(diag.InferUnboundIdent, expr.Span,
				"identifier %q is not bound", p.stringOf(data.Name))
			p.buildFailed = true
			p.exprNode(id)
			break
		}
		n := p.nodeFor(letSlot(data.Binding), expr.Span)
		p.attach(n, exprSlot(id))

	case ast.ExprIntLit:
		data, _ := b.Exprs.IntLit(id)
		n := p.exprNode(id)
		if data.Width != 0 {
			p.conveyConst(n, p.interner.Intern(types.MakeInt(data.Width)))
		} else {
			// unsuffixed literal: width comes from context, int32 if none does
			p.nodes[n].deflt = p.interner.Builtins().Int32
		}

	case ast.ExprBoolLit:
		p.conveyConst(p.exprNode(id), p.interner.Builtins().Bool)

	case ast.ExprBinary:
		data, _ := b.Exprs.Binary(id)
		n := p.exprNode(id)
		l := p.exprNode(data.Left)
		r := p.exprNode(data.Right)
		if data.Op.IsCompare() {
			p.conveyBoth(l, r)
			p.conveyConst(n, p.interner.Builtins().Bool)
		} else {
			p.conveyBoth(n, l)
			p.conveyBoth(n, r)
		}
		p.ensure(l, ValidSimple, b.Exprs.Get(data.Left).Span)
		p.ensure(r, ValidSimple, b.Exprs.Get(data.Right).Span)

	case ast.ExprConcat:
		data, _ := b.Exprs.Concat(id)
		n := p.exprNode(id)
		sources := make([]NodeID, 0, len(data.Operands))
		for _, op := range data.Operands {
			opNode := p.exprNode(op)
			sources = append(sources, opNode)
			p.ensure(opNode, ValidConcatOperand, b.Exprs.Get(op).Span)
		}
		p.addEdge(n, Edge{Op: OpWidthSum, Sources: sources})

	case ast.ExprCast:
		data, _ := b.Exprs.Cast(id)
		n := p.exprNode(id)
		arg := p.exprNode(data.Arg)
		target, ok := p.aggs.ResolveAnnotation(data.Target)
		if !ok {
			p.buildFailed = true
			break
		}
		p.conveyConst(n, target)
		p.nodes[arg].validators = append(p.nodes[arg].validators, Validator{
			Kind:   ValidCast,
			Span:   b.Exprs.Get(data.Arg).Span,
			Target: target,
		})

	case ast.ExprIndex:
		data, _ := b.Exprs.Index(id)
		n := p.exprNode(id)
		arr := p.exprNode(data.Array)
		idx := p.exprNode(data.Index)
		p.addEdge(n, Edge{Op: OpArrayElem, Sources: []NodeID{arr}})
		p.ensure(arr, ValidArray, b.Exprs.Get(data.Array).Span)
		p.ensure(idx, ValidSimpleInt, b.Exprs.Get(data.Index).Span)

	case ast.ExprField:
		data, _ := b.Exprs.Field(id)
		n := p.exprNode(id)
		agg := p.exprNode(data.Agg)
		p.addEdge(n, Edge{Op: OpFieldOf, Sources: []NodeID{agg}, Field: data.Name})
		p.nodes[agg].validators = append(p.nodes[agg].validators, Validator{
			Kind:  ValidHasField,
			Span:  expr.Span,
			Field: data.Name,
		})

	case ast.ExprAggLit:
		p.wireAggLiteral(b, id)

	case ast.ExprRegRead:
		data, _ := b.Exprs.RegRead(id)
		n := p.exprNode(id)
		reg := p.exprNode(data.Reg)
		p.addEdge(n, Edge{Op: OpRegUnwrap, Sources: []NodeID{reg}})
		p.addEdge(reg, Edge{Op: OpRegWrap, Sources: []NodeID{n}})
		p.ensure(reg, ValidReg, b.Exprs.Get(data.Reg).Span)

	case ast.ExprPortRead:
		data, _ := b.Exprs.PortRead(id)
		n := p.exprNode(id)
		port := p.exprNode(data.Port)
		p.addEdge(n, Edge{Op: OpPortUnwrap, Sources: []NodeID{port}})
		p.addEdge(port, Edge{Op: OpPortWrap, Sources: []NodeID{n}})
		p.ensure(port, ValidPort, b.Exprs.Get(data.Port).Span)

	case ast.ExprBypassRead:
		data, _ := b.Exprs.BypassRead(id)
		n := p.exprNode(id)
		region := p.regionNode(data.Name, expr.Span)
		p.addEdge(n, Edge{Op: OpBypassUnwrap, Sources: []NodeID{region}})
		p.addEdge(region, Edge{Op: OpBypassWrap, Sources: []NodeID{n}})
		p.ensure(n, ValidSimple, expr.Span)
	}
	return ast.VisitContinue
}

// wireAggLiteral pins the literal to its declared aggregate type and each
// field expression to the declared field type. Unknown names, unknown
// fields, duplicates and omissions are all structural errors reported here
// rather than deferred to the solver.
func (p *Pass) wireAggLiteral(b *ast.Builder, id ast.ExprID) {
	expr := b.Exprs.Get(id)
	data, _ := b.Exprs.AggLit(id)
	n := p.exprNode(id)

	aggID, ok := p.interner.AggByName(data.Name)
	if !ok {
		p.report(diag.InferBadAggLiteral, expr.Span,
			"unknown aggregate type %q", p.stringOf(data.Name))
		p.buildFailed = true
		return
	}
	p.conveyConst(n, p.interner.Intern(types.MakeAgg(aggID)))

	info, _ := p.interner.Agg(aggID)
	if info == nil || !info.Resolved {
		// the aggregate itself failed to resolve; that error is already out
		p.buildFailed = true
		return
	}

	seen := make(map[source.StringID]bool, len(data.Fields))
	for _, f := range data.Fields {
		declared, ok := p.interner.AggField(aggID, f.Name)
		if !ok {
			p.report(diag.InferBadAggLiteral, f.Span,
				"type %q has no field %q", p.stringOf(data.Name), p.stringOf(f.Name))
			p.buildFailed = true
			continue
		}
		if seen[f.Name] {
			p.report(diag.InferBadAggLiteral, f.Span,
				"duplicate field %q in aggregate literal", p.stringOf(f.Name))
			p.buildFailed = true
			continue
		}
		seen[f.Name] = true
		p.conveyConst(p.exprNode(f.Value), declared.Type)
	}
	for _, field := range info.Fields {
		if !seen[field.Name] {
			p.report(diag.InferBadAggLiteral, expr.Span,
				"missing field %q in aggregate literal", p.stringOf(field.Name))
			p.buildFailed = true
		}
	}
}

func (p *Pass) PostStmt(b *ast.Builder, id ast.StmtID) ast.VisitResult {
	stmt := b.Stmts.Get(id)
	switch stmt.Kind {
	case ast.StmtLet:
		data, _ := b.Stmts.Let(id)
		n := p.nodeFor(letSlot(id), stmt.Span)
		if data.Ann.IsValid() {
			if t, ok := p.aggs.ResolveAnnotation(data.Ann); ok {
				p.conveyConst(n, t)
			} else {
				p.buildFailed = true
			}
		}
		if data.Init.IsValid() {
			p.conveyBoth(n, p.exprNode(data.Init))
		}

	case ast.StmtAssign:
		data, _ := b.Stmts.Assign(id)
		p.conveyBoth(p.exprNode(data.Target), p.exprNode(data.Value))

	case ast.StmtWrite:
		data, _ := b.Stmts.Write(id)
		port := p.exprNode(data.Port)
		val := p.exprNode(data.Value)
		p.addEdge(port, Edge{Op: OpPortWrap, Sources: []NodeID{val}})
		p.addEdge(val, Edge{Op: OpPortUnwrap, Sources: []NodeID{port}})
		p.ensure(port, ValidPort, b.Exprs.Get(data.Port).Span)
		p.ensure(val, ValidSimple, b.Exprs.Get(data.Value).Span)

	case ast.StmtIf:
		data, _ := b.Stmts.If(id)
		p.wireCondition(b, data.Cond)

	case ast.StmtWhile:
		data, _ := b.Stmts.While(id)
		p.wireCondition(b, data.Cond)

	case ast.StmtBypassStart:
		data, _ := b.Stmts.BypassStart(id)
		p.regionNode(data.Name, stmt.Span)

	case ast.StmtBypassEnd:
		data, _ := b.Stmts.BypassEnd(id)
		p.regionNode(data.Name, stmt.Span)

	case ast.StmtBypassWrite:
		data, _ := b.Stmts.BypassWrite(id)
		region := p.regionNode(data.Name, stmt.Span)
		val := p.exprNode(data.Value)
		p.addEdge(region, Edge{Op: OpBypassWrap, Sources: []NodeID{val}})
		p.addEdge(val, Edge{Op: OpBypassUnwrap, Sources: []NodeID{region}})
		p.ensure(val, ValidSimple, b.Exprs.Get(data.Value).Span)
		p.nodes[region].bypassWrites++
	}
	return ast.VisitContinue
}

func (p *Pass) wireCondition(b *ast.Builder, cond ast.ExprID) {
	c := p.exprNode(cond)
	p.conveyConst(c, p.interner.Builtins().Bool)
	p.ensure(c, ValidBool, b.Exprs.Get(cond).Span)
}

func (p *Pass) PostItem(*ast.Builder, ast.ItemID) ast.VisitResult {
	return ast.VisitContinue
}

// AfterFile runs the solver once the whole graph is wired. Wiring errors
// abort before solving: a half-built graph would only produce noise on top
// of the structural diagnostics already reported.
func (p *Pass) AfterFile(*ast.Builder, ast.FileID) ast.VisitResult {
	if p.buildFailed {
		return ast.VisitStop
	}
	if !p.solve() {
		return ast.VisitStop
	}
	return ast.VisitContinue
}
