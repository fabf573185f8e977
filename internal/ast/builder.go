package ast

import (
	"ripple/internal/source"
)

// Hints preallocates the per-kind arenas.
type Hints struct{ Files, Items, Stmts, Exprs, TypeSyns uint }

// Builder owns every arena of one unit's AST plus the identifier interner.
type Builder struct {
	Strings  *source.Interner
	Files    *Files
	Items    *Items
	Stmts    *Stmts
	Exprs    *Exprs
	TypeSyns *TypeSyns
}

func NewBuilder(hints Hints) *Builder {
	if hints.Files == 0 {
		hints.Files = 1 << 2
	}
	if hints.Items == 0 {
		hints.Items = 1 << 6
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if hints.TypeSyns == 0 {
		hints.TypeSyns = 1 << 6
	}
	return &Builder{
		Strings:  source.NewInterner(),
		Files:    NewFiles(hints.Files),
		Items:    NewItems(hints.Items),
		Stmts:    NewStmts(hints.Stmts),
		Exprs:    NewExprs(hints.Exprs),
		TypeSyns: NewTypeSyns(hints.TypeSyns),
	}
}

// NewFile allocates a file root.
func (b *Builder) NewFile(sp source.Span) FileID {
	return b.Files.New(sp)
}

// PushItem appends an item to a file root.
func (b *Builder) PushItem(file FileID, item ItemID) {
	b.Files.Get(file).Items = append(b.Files.Get(file).Items, item)
}

// Intern is a shorthand for interning an identifier spelling.
func (b *Builder) Intern(s string) source.StringID {
	return b.Strings.Intern(s)
}
