// Package unit defines the wire format of one compilation unit: the arena
// AST plus its interned strings and source text, produced by the front-end
// stages and consumed here. Units are msgpack files; the schema version
// gates decoding so a stale front end fails loudly instead of corrupting
// the arenas.
package unit

import (
	"ripple/internal/ast"
	"ripple/internal/source"
)

// SchemaVersion is bumped on every incompatible payload change.
const SchemaVersion uint16 = 1

// Payload is the serialized form of a unit. The slices mirror the arena
// backing storage one to one, so decoding is a straight restore with no
// per-node fixups.
type Payload struct {
	Schema uint16

	// Source identity, kept so diagnostics can point into the original text.
	Name   string
	Source string

	Strings []string

	Files []ast.File
	Root  ast.FileID

	Items   []ast.Item
	AggDefs []ast.ItemAggDefData
	Stages  []ast.ItemStageData

	Stmts        []ast.Stmt
	Blocks       []ast.StmtBlockData
	Lets         []ast.StmtLetData
	Assigns      []ast.StmtAssignData
	Writes       []ast.StmtWriteData
	Ifs          []ast.StmtIfData
	Whiles       []ast.StmtWhileData
	ExprStmts    []ast.StmtExprData
	BypassStarts []ast.StmtBypassStartData
	BypassEnds   []ast.StmtBypassEndData
	BypassWrites []ast.StmtBypassWriteData

	Exprs       []ast.Expr
	Idents      []ast.ExprIdentData
	IntLits     []ast.ExprIntLitData
	BoolLits    []ast.ExprBoolLitData
	Binaries    []ast.ExprBinaryData
	Concats     []ast.ExprConcatData
	Casts       []ast.ExprCastData
	Indices     []ast.ExprIndexData
	Fields      []ast.ExprFieldData
	AggLits     []ast.ExprAggLitData
	RegReads    []ast.ExprRegReadData
	PortReads   []ast.ExprPortReadData
	BypassReads []ast.ExprBypassReadData

	TypeSyns  []ast.TypeSyn
	NamedSyns []ast.TypeSynNamedData
	ElemSyns  []ast.TypeSynElemData
	ArraySyns []ast.TypeSynArrayData
}

// Unit is a decoded, live compilation unit.
type Unit struct {
	Name   string
	Source string
	Root   ast.FileID
	AST    *ast.Builder
}

// Snapshot captures a builder into a payload.
func Snapshot(name, src string, b *ast.Builder, root ast.FileID) *Payload {
	return &Payload{
		Schema:  SchemaVersion,
		Name:    name,
		Source:  src,
		Strings: b.Strings.Snapshot(),

		Files: b.Files.Arena.Slice(),
		Root:  root,

		Items:   b.Items.Arena.Slice(),
		AggDefs: b.Items.AggDefs.Slice(),
		Stages:  b.Items.Stages.Slice(),

		Stmts:        b.Stmts.Arena.Slice(),
		Blocks:       b.Stmts.Blocks.Slice(),
		Lets:         b.Stmts.Lets.Slice(),
		Assigns:      b.Stmts.Assigns.Slice(),
		Writes:       b.Stmts.Writes.Slice(),
		Ifs:          b.Stmts.Ifs.Slice(),
		Whiles:       b.Stmts.Whiles.Slice(),
		ExprStmts:    b.Stmts.ExprStmts.Slice(),
		BypassStarts: b.Stmts.BypassStarts.Slice(),
		BypassEnds:   b.Stmts.BypassEnds.Slice(),
		BypassWrites: b.Stmts.BypassWrites.Slice(),

		Exprs:       b.Exprs.Arena.Slice(),
		Idents:      b.Exprs.Idents.Slice(),
		IntLits:     b.Exprs.IntLits.Slice(),
		BoolLits:    b.Exprs.BoolLits.Slice(),
		Binaries:    b.Exprs.Binaries.Slice(),
		Concats:     b.Exprs.Concats.Slice(),
		Casts:       b.Exprs.Casts.Slice(),
		Indices:     b.Exprs.Indices.Slice(),
		Fields:      b.Exprs.Fields.Slice(),
		AggLits:     b.Exprs.AggLits.Slice(),
		RegReads:    b.Exprs.RegReads.Slice(),
		PortReads:   b.Exprs.PortReads.Slice(),
		BypassReads: b.Exprs.BypassReads.Slice(),

		TypeSyns:  b.TypeSyns.Arena.Slice(),
		NamedSyns: b.TypeSyns.Named.Slice(),
		ElemSyns:  b.TypeSyns.Elems.Slice(),
		ArraySyns: b.TypeSyns.Arrays.Slice(),
	}
}

// Revive rebuilds a live unit from a payload.
func (p *Payload) Revive() *Unit {
	b := ast.NewBuilder(ast.Hints{})
	b.Strings = source.Restore(p.Strings)

	b.Files.Arena.Restore(p.Files)

	b.Items.Arena.Restore(p.Items)
	b.Items.AggDefs.Restore(p.AggDefs)
	b.Items.Stages.Restore(p.Stages)

	b.Stmts.Arena.Restore(p.Stmts)
	b.Stmts.Blocks.Restore(p.Blocks)
	b.Stmts.Lets.Restore(p.Lets)
	b.Stmts.Assigns.Restore(p.Assigns)
	b.Stmts.Writes.Restore(p.Writes)
	b.Stmts.Ifs.Restore(p.Ifs)
	b.Stmts.Whiles.Restore(p.Whiles)
	b.Stmts.ExprStmts.Restore(p.ExprStmts)
	b.Stmts.BypassStarts.Restore(p.BypassStarts)
	b.Stmts.BypassEnds.Restore(p.BypassEnds)
	b.Stmts.BypassWrites.Restore(p.BypassWrites)

	b.Exprs.Arena.Restore(p.Exprs)
	b.Exprs.Idents.Restore(p.Idents)
	b.Exprs.IntLits.Restore(p.IntLits)
	b.Exprs.BoolLits.Restore(p.BoolLits)
	b.Exprs.Binaries.Restore(p.Binaries)
	b.Exprs.Concats.Restore(p.Concats)
	b.Exprs.Casts.Restore(p.Casts)
	b.Exprs.Indices.Restore(p.Indices)
	b.Exprs.Fields.Restore(p.Fields)
	b.Exprs.AggLits.Restore(p.AggLits)
	b.Exprs.RegReads.Restore(p.RegReads)
	b.Exprs.PortReads.Restore(p.PortReads)
	b.Exprs.BypassReads.Restore(p.BypassReads)

	b.TypeSyns.Arena.Restore(p.TypeSyns)
	b.TypeSyns.Named.Restore(p.NamedSyns)
	b.TypeSyns.Elems.Restore(p.ElemSyns)
	b.TypeSyns.Arrays.Restore(p.ArraySyns)

	return &Unit{
		Name:   p.Name,
		Source: p.Source,
		Root:   p.Root,
		AST:    b,
	}
}
