package infer

import (
	"ripple/internal/ast"
	"ripple/internal/types"
)

// SlotKind names the AST location a node writes its result into.
type SlotKind uint8

const (
	SlotExpr SlotKind = iota
	SlotLet
)

// SlotRef points at one type slot in the syntax tree. A node may own
// several slots (an ident shares the slot of its binding), and every
// slot belongs to exactly one node.
type SlotRef struct {
	Kind SlotKind
	Expr ast.ExprID
	Let  ast.StmtID
}

func exprSlot(id ast.ExprID) SlotRef { return SlotRef{Kind: SlotExpr, Expr: id} }
func letSlot(id ast.StmtID) SlotRef  { return SlotRef{Kind: SlotLet, Let: id} }

type slotKey struct {
	kind SlotKind
	id   uint32
}

func (s SlotRef) key() slotKey {
	if s.Kind == SlotExpr {
		return slotKey{kind: SlotExpr, id: uint32(s.Expr)}
	}
	return slotKey{kind: SlotLet, id: uint32(s.Let)}
}

// read returns the type currently stored in the slot, if any. Seeded
// slots let earlier pipeline stages pin a type before solving starts.
func (s SlotRef) read(b *ast.Builder) (types.TypeID, bool) {
	switch s.Kind {
	case SlotExpr:
		expr := b.Exprs.Get(s.Expr)
		if expr == nil || expr.Type == types.NoTypeID {
			return types.NoTypeID, false
		}
		return expr.Type, true
	case SlotLet:
		data, ok := b.Stmts.Let(s.Let)
		if !ok || data.Type == types.NoTypeID {
			return types.NoTypeID, false
		}
		return data.Type, true
	}
	return types.NoTypeID, false
}

func (s SlotRef) write(b *ast.Builder, t types.TypeID) {
	switch s.Kind {
	case SlotExpr:
		if expr := b.Exprs.Get(s.Expr); expr != nil {
			expr.Type = t
		}
	case SlotLet:
		if data, ok := b.Stmts.Let(s.Let); ok {
			data.Type = t
		}
	}
}
