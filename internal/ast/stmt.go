package ast

import (
	"ripple/internal/source"
	"ripple/internal/types"
)

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtLet
	StmtAssign
	StmtWrite
	StmtIf
	StmtWhile
	StmtExpr
	StmtBypassStart
	StmtBypassEnd
	StmtBypassWrite
)

func (k StmtKind) String() string {
	switch k {
	case StmtBlock:
		return "block"
	case StmtLet:
		return "let"
	case StmtAssign:
		return "assign"
	case StmtWrite:
		return "write"
	case StmtIf:
		return "if"
	case StmtWhile:
		return "while"
	case StmtExpr:
		return "expr"
	case StmtBypassStart:
		return "bypass-start"
	case StmtBypassEnd:
		return "bypass-end"
	case StmtBypassWrite:
		return "bypass-write"
	default:
		return "unknown"
	}
}

// Stmt is one statement node.
type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

// StmtBlockData is a sequence of statements.
type StmtBlockData struct {
	Stmts []StmtID
}

// StmtLetData introduces a binding. Ann is the optional syntactic annotation;
// Type is the mutable resolved-type slot written during write-back.
type StmtLetData struct {
	Name source.StringID
	Ann  TypeSynID
	Init ExprID
	Type types.TypeID
}

// StmtAssignData reassigns a binding through an ident target.
type StmtAssignData struct {
	Target ExprID
	Value  ExprID
}

// StmtWriteData writes a value into a port.
type StmtWriteData struct {
	Port  ExprID
	Value ExprID
}

// StmtIfData branches on a 1-bit condition.
type StmtIfData struct {
	Cond ExprID
	Then StmtID
	Else StmtID // NoStmtID when absent
}

// StmtWhileData loops on a 1-bit condition.
type StmtWhileData struct {
	Cond ExprID
	Body StmtID
}

// StmtExprData evaluates an expression for effect.
type StmtExprData struct {
	Expr ExprID
}

// StmtBypassStartData opens a named bypass region.
type StmtBypassStartData struct {
	Name source.StringID
}

// StmtBypassEndData closes a named bypass region.
type StmtBypassEndData struct {
	Name source.StringID
}

// StmtBypassWriteData publishes a value into a named bypass region.
type StmtBypassWriteData struct {
	Name  source.StringID
	Value ExprID
}

// Stmts manages allocation of statements.
type Stmts struct {
	Arena        *Arena[Stmt]
	Blocks       *Arena[StmtBlockData]
	Lets         *Arena[StmtLetData]
	Assigns      *Arena[StmtAssignData]
	Writes       *Arena[StmtWriteData]
	Ifs          *Arena[StmtIfData]
	Whiles       *Arena[StmtWhileData]
	ExprStmts    *Arena[StmtExprData]
	BypassStarts *Arena[StmtBypassStartData]
	BypassEnds   *Arena[StmtBypassEndData]
	BypassWrites *Arena[StmtBypassWriteData]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Stmts{
		Arena:        NewArena[Stmt](capHint),
		Blocks:       NewArena[StmtBlockData](capHint),
		Lets:         NewArena[StmtLetData](capHint),
		Assigns:      NewArena[StmtAssignData](capHint),
		Writes:       NewArena[StmtWriteData](capHint),
		Ifs:          NewArena[StmtIfData](capHint),
		Whiles:       NewArena[StmtWhileData](capHint),
		ExprStmts:    NewArena[StmtExprData](capHint),
		BypassStarts: NewArena[StmtBypassStartData](capHint),
		BypassEnds:   NewArena[StmtBypassEndData](capHint),
		BypassWrites: NewArena[StmtBypassWriteData](capHint),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload PayloadID) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the statement with the given ID.
func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

// NewBlock creates a statement block.
func (s *Stmts) NewBlock(span source.Span, stmts []StmtID) StmtID {
	payload := s.Blocks.Allocate(StmtBlockData{Stmts: stmts})
	return s.new(StmtBlock, span, PayloadID(payload))
}

// NewLet creates a binding; pass NoTypeSynID when the type is inferred.
func (s *Stmts) NewLet(span source.Span, name source.StringID, ann TypeSynID, init ExprID) StmtID {
	payload := s.Lets.Allocate(StmtLetData{Name: name, Ann: ann, Init: init})
	return s.new(StmtLet, span, PayloadID(payload))
}

// NewAssign creates an assignment.
func (s *Stmts) NewAssign(span source.Span, target, value ExprID) StmtID {
	payload := s.Assigns.Allocate(StmtAssignData{Target: target, Value: value})
	return s.new(StmtAssign, span, PayloadID(payload))
}

// NewWrite creates a port write.
func (s *Stmts) NewWrite(span source.Span, port, value ExprID) StmtID {
	payload := s.Writes.Allocate(StmtWriteData{Port: port, Value: value})
	return s.new(StmtWrite, span, PayloadID(payload))
}

// NewIf creates a conditional; pass NoStmtID when there is no else branch.
func (s *Stmts) NewIf(span source.Span, cond ExprID, then, els StmtID) StmtID {
	payload := s.Ifs.Allocate(StmtIfData{Cond: cond, Then: then, Else: els})
	return s.new(StmtIf, span, PayloadID(payload))
}

// NewWhile creates a loop.
func (s *Stmts) NewWhile(span source.Span, cond ExprID, body StmtID) StmtID {
	payload := s.Whiles.Allocate(StmtWhileData{Cond: cond, Body: body})
	return s.new(StmtWhile, span, PayloadID(payload))
}

// NewExpr creates an expression statement.
func (s *Stmts) NewExpr(span source.Span, expr ExprID) StmtID {
	payload := s.ExprStmts.Allocate(StmtExprData{Expr: expr})
	return s.new(StmtExpr, span, PayloadID(payload))
}

// NewBypassStart opens a bypass region.
func (s *Stmts) NewBypassStart(span source.Span, name source.StringID) StmtID {
	payload := s.BypassStarts.Allocate(StmtBypassStartData{Name: name})
	return s.new(StmtBypassStart, span, PayloadID(payload))
}

// NewBypassEnd closes a bypass region.
func (s *Stmts) NewBypassEnd(span source.Span, name source.StringID) StmtID {
	payload := s.BypassEnds.Allocate(StmtBypassEndData{Name: name})
	return s.new(StmtBypassEnd, span, PayloadID(payload))
}

// NewBypassWrite publishes a value into a bypass region.
func (s *Stmts) NewBypassWrite(span source.Span, name source.StringID, value ExprID) StmtID {
	payload := s.BypassWrites.Allocate(StmtBypassWriteData{Name: name, Value: value})
	return s.new(StmtBypassWrite, span, PayloadID(payload))
}

// Typed payload accessors -----------------------------------------------------

func (s *Stmts) Block(id StmtID) (*StmtBlockData, bool) {
	return stmtPayload(s, id, StmtBlock, s.Blocks)
}

func (s *Stmts) Let(id StmtID) (*StmtLetData, bool) {
	return stmtPayload(s, id, StmtLet, s.Lets)
}

func (s *Stmts) Assign(id StmtID) (*StmtAssignData, bool) {
	return stmtPayload(s, id, StmtAssign, s.Assigns)
}

func (s *Stmts) Write(id StmtID) (*StmtWriteData, bool) {
	return stmtPayload(s, id, StmtWrite, s.Writes)
}

func (s *Stmts) If(id StmtID) (*StmtIfData, bool) {
	return stmtPayload(s, id, StmtIf, s.Ifs)
}

func (s *Stmts) While(id StmtID) (*StmtWhileData, bool) {
	return stmtPayload(s, id, StmtWhile, s.Whiles)
}

func (s *Stmts) Expr(id StmtID) (*StmtExprData, bool) {
	return stmtPayload(s, id, StmtExpr, s.ExprStmts)
}

func (s *Stmts) BypassStart(id StmtID) (*StmtBypassStartData, bool) {
	return stmtPayload(s, id, StmtBypassStart, s.BypassStarts)
}

func (s *Stmts) BypassEnd(id StmtID) (*StmtBypassEndData, bool) {
	return stmtPayload(s, id, StmtBypassEnd, s.BypassEnds)
}

func (s *Stmts) BypassWrite(id StmtID) (*StmtBypassWriteData, bool) {
	return stmtPayload(s, id, StmtBypassWrite, s.BypassWrites)
}

func stmtPayload[T any](s *Stmts, id StmtID, kind StmtKind, arena *Arena[T]) (*T, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != kind {
		return nil, false
	}
	return arena.Get(uint32(stmt.Payload)), true
}
