package ast

import (
	"ripple/internal/source"
	"ripple/internal/types"
)

type ExprKind uint8

const (
	ExprIdent ExprKind = iota
	ExprIntLit
	ExprBoolLit
	ExprBinary
	ExprConcat
	ExprCast
	ExprIndex
	ExprField
	ExprAggLit
	ExprRegRead
	ExprPortRead
	ExprBypassRead
)

func (k ExprKind) String() string {
	switch k {
	case ExprIdent:
		return "ident"
	case ExprIntLit:
		return "int-literal"
	case ExprBoolLit:
		return "bool-literal"
	case ExprBinary:
		return "binary"
	case ExprConcat:
		return "concat"
	case ExprCast:
		return "cast"
	case ExprIndex:
		return "index"
	case ExprField:
		return "field"
	case ExprAggLit:
		return "aggregate-literal"
	case ExprRegRead:
		return "reg-read"
	case ExprPortRead:
		return "port-read"
	case ExprBypassRead:
		return "bypass-read"
	default:
		return "unknown"
	}
}

// BinaryOp enumerates binary operators.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpAnd
	OpOr
	OpXor
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// IsCompare reports whether the operator yields a boolean.
func (op BinaryOp) IsCompare() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpAnd:
		return "&"
	case OpOr:
		return "|"
	case OpXor:
		return "^"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return "?"
	}
}

// Expr is one expression node. Type is the mutable resolved-type slot the
// inference pass fills during write-back; it stays NoTypeID until then.
type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
	Type    types.TypeID
}

// ExprIdentData references a binding introduced by a let statement. The name
// resolver of the earlier stage fills Binding; this stage treats it as given.
type ExprIdentData struct {
	Name    source.StringID
	Binding StmtID
}

// ExprIntLitData is an integer literal. Width 0 means the literal carries no
// width suffix and defaults during inference.
type ExprIntLitData struct {
	Value uint64
	Width uint32
}

// ExprBoolLitData is a boolean literal.
type ExprBoolLitData struct {
	Value bool
}

// ExprBinaryData is a binary arithmetic, bitwise or comparison expression.
type ExprBinaryData struct {
	Op    BinaryOp
	Left  ExprID
	Right ExprID
}

// ExprConcatData is the n-ary bit concatenation `a ++ b ++ ...`.
type ExprConcatData struct {
	Operands []ExprID
}

// ExprCastData converts Arg to the annotated target type.
type ExprCastData struct {
	Arg    ExprID
	Target TypeSynID
}

// ExprIndexData extracts one element of an array value.
type ExprIndexData struct {
	Array ExprID
	Index ExprID
}

// ExprFieldData projects a named field out of an aggregate value.
type ExprFieldData struct {
	Agg  ExprID
	Name source.StringID
}

// AggLitField pairs a field name with its value expression.
type AggLitField struct {
	Name  source.StringID
	Value ExprID
	Span  source.Span
}

// ExprAggLitData constructs a named aggregate from field values.
type ExprAggLitData struct {
	Name   source.StringID
	Fields []AggLitField
}

// ExprRegReadData dereferences a register to its held value.
type ExprRegReadData struct {
	Reg ExprID
}

// ExprPortReadData reads the value carried by a port.
type ExprPortReadData struct {
	Port ExprID
}

// ExprBypassReadData reads the value carried by a named bypass region.
type ExprBypassReadData struct {
	Name source.StringID
}

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena       *Arena[Expr]
	Idents      *Arena[ExprIdentData]
	IntLits     *Arena[ExprIntLitData]
	BoolLits    *Arena[ExprBoolLitData]
	Binaries    *Arena[ExprBinaryData]
	Concats     *Arena[ExprConcatData]
	Casts       *Arena[ExprCastData]
	Indices     *Arena[ExprIndexData]
	Fields      *Arena[ExprFieldData]
	AggLits     *Arena[ExprAggLitData]
	RegReads    *Arena[ExprRegReadData]
	PortReads   *Arena[ExprPortReadData]
	BypassReads *Arena[ExprBypassReadData]
}

func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:       NewArena[Expr](capHint),
		Idents:      NewArena[ExprIdentData](capHint),
		IntLits:     NewArena[ExprIntLitData](capHint),
		BoolLits:    NewArena[ExprBoolLitData](capHint),
		Binaries:    NewArena[ExprBinaryData](capHint),
		Concats:     NewArena[ExprConcatData](capHint),
		Casts:       NewArena[ExprCastData](capHint),
		Indices:     NewArena[ExprIndexData](capHint),
		Fields:      NewArena[ExprFieldData](capHint),
		AggLits:     NewArena[ExprAggLitData](capHint),
		RegReads:    NewArena[ExprRegReadData](capHint),
		PortReads:   NewArena[ExprPortReadData](capHint),
		BypassReads: NewArena[ExprBypassReadData](capHint),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

// NewIdent creates an identifier expression bound to a let statement.
func (e *Exprs) NewIdent(span source.Span, name source.StringID, binding StmtID) ExprID {
	payload := e.Idents.Allocate(ExprIdentData{Name: name, Binding: binding})
	return e.new(ExprIdent, span, PayloadID(payload))
}

// NewIntLit creates an integer literal; width 0 means unsuffixed.
func (e *Exprs) NewIntLit(span source.Span, value uint64, width uint32) ExprID {
	payload := e.IntLits.Allocate(ExprIntLitData{Value: value, Width: width})
	return e.new(ExprIntLit, span, PayloadID(payload))
}

// NewBoolLit creates a boolean literal.
func (e *Exprs) NewBoolLit(span source.Span, value bool) ExprID {
	payload := e.BoolLits.Allocate(ExprBoolLitData{Value: value})
	return e.new(ExprBoolLit, span, PayloadID(payload))
}

// NewBinary creates a binary expression.
func (e *Exprs) NewBinary(span source.Span, op BinaryOp, left, right ExprID) ExprID {
	payload := e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right})
	return e.new(ExprBinary, span, PayloadID(payload))
}

// NewConcat creates a concatenation over the operands.
func (e *Exprs) NewConcat(span source.Span, operands []ExprID) ExprID {
	payload := e.Concats.Allocate(ExprConcatData{Operands: operands})
	return e.new(ExprConcat, span, PayloadID(payload))
}

// NewCast creates an explicit cast to the annotated target.
func (e *Exprs) NewCast(span source.Span, arg ExprID, target TypeSynID) ExprID {
	payload := e.Casts.Allocate(ExprCastData{Arg: arg, Target: target})
	return e.new(ExprCast, span, PayloadID(payload))
}

// NewIndex creates an array indexing expression.
func (e *Exprs) NewIndex(span source.Span, array, index ExprID) ExprID {
	payload := e.Indices.Allocate(ExprIndexData{Array: array, Index: index})
	return e.new(ExprIndex, span, PayloadID(payload))
}

// NewField creates a field projection.
func (e *Exprs) NewField(span source.Span, agg ExprID, name source.StringID) ExprID {
	payload := e.Fields.Allocate(ExprFieldData{Agg: agg, Name: name})
	return e.new(ExprField, span, PayloadID(payload))
}

// NewAggLit creates an aggregate literal.
func (e *Exprs) NewAggLit(span source.Span, name source.StringID, fields []AggLitField) ExprID {
	payload := e.AggLits.Allocate(ExprAggLitData{Name: name, Fields: fields})
	return e.new(ExprAggLit, span, PayloadID(payload))
}

// NewRegRead creates a register dereference.
func (e *Exprs) NewRegRead(span source.Span, reg ExprID) ExprID {
	payload := e.RegReads.Allocate(ExprRegReadData{Reg: reg})
	return e.new(ExprRegRead, span, PayloadID(payload))
}

// NewPortRead creates a port read.
func (e *Exprs) NewPortRead(span source.Span, port ExprID) ExprID {
	payload := e.PortReads.Allocate(ExprPortReadData{Port: port})
	return e.new(ExprPortRead, span, PayloadID(payload))
}

// NewBypassRead creates a read of a named bypass region.
func (e *Exprs) NewBypassRead(span source.Span, name source.StringID) ExprID {
	payload := e.BypassReads.Allocate(ExprBypassReadData{Name: name})
	return e.new(ExprBypassRead, span, PayloadID(payload))
}

// Typed payload accessors -----------------------------------------------------

func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	return exprPayload(e, id, ExprIdent, e.Idents)
}

func (e *Exprs) IntLit(id ExprID) (*ExprIntLitData, bool) {
	return exprPayload(e, id, ExprIntLit, e.IntLits)
}

func (e *Exprs) BoolLit(id ExprID) (*ExprBoolLitData, bool) {
	return exprPayload(e, id, ExprBoolLit, e.BoolLits)
}

func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	return exprPayload(e, id, ExprBinary, e.Binaries)
}

func (e *Exprs) Concat(id ExprID) (*ExprConcatData, bool) {
	return exprPayload(e, id, ExprConcat, e.Concats)
}

func (e *Exprs) Cast(id ExprID) (*ExprCastData, bool) {
	return exprPayload(e, id, ExprCast, e.Casts)
}

func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	return exprPayload(e, id, ExprIndex, e.Indices)
}

func (e *Exprs) Field(id ExprID) (*ExprFieldData, bool) {
	return exprPayload(e, id, ExprField, e.Fields)
}

func (e *Exprs) AggLit(id ExprID) (*ExprAggLitData, bool) {
	return exprPayload(e, id, ExprAggLit, e.AggLits)
}

func (e *Exprs) RegRead(id ExprID) (*ExprRegReadData, bool) {
	return exprPayload(e, id, ExprRegRead, e.RegReads)
}

func (e *Exprs) PortRead(id ExprID) (*ExprPortReadData, bool) {
	return exprPayload(e, id, ExprPortRead, e.PortReads)
}

func (e *Exprs) BypassRead(id ExprID) (*ExprBypassReadData, bool) {
	return exprPayload(e, id, ExprBypassRead, e.BypassReads)
}

func exprPayload[T any](e *Exprs, id ExprID, kind ExprKind, arena *Arena[T]) (*T, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != kind {
		return nil, false
	}
	return arena.Get(uint32(expr.Payload)), true
}
