package ast

import (
	"ripple/internal/source"
)

// TypeSynKind enumerates syntactic type annotations. Whether a named
// annotation is a builtin or an aggregate is decided by resolution, not here.
type TypeSynKind uint8

const (
	TypeSynNamed TypeSynKind = iota
	TypeSynPort
	TypeSynArray
	TypeSynReg
	TypeSynBypass
)

// TypeSyn is one syntactic type annotation as written in the source.
type TypeSyn struct {
	Kind    TypeSynKind
	Span    source.Span
	Payload PayloadID
}

// TypeSynNamedData names a builtin (bool, intN) or an aggregate.
type TypeSynNamedData struct {
	Name source.StringID
}

// TypeSynElemData wraps an element annotation (port<T>, reg<T>, bypass<T>).
type TypeSynElemData struct {
	Elem TypeSynID
}

// TypeSynArrayData is T[count]; Count 0 means the length is not written.
type TypeSynArrayData struct {
	Elem  TypeSynID
	Count uint32
}

// TypeSyns manages allocation of type annotations.
type TypeSyns struct {
	Arena  *Arena[TypeSyn]
	Named  *Arena[TypeSynNamedData]
	Elems  *Arena[TypeSynElemData]
	Arrays *Arena[TypeSynArrayData]
}

func NewTypeSyns(capHint uint) *TypeSyns {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &TypeSyns{
		Arena:  NewArena[TypeSyn](capHint),
		Named:  NewArena[TypeSynNamedData](capHint),
		Elems:  NewArena[TypeSynElemData](capHint),
		Arrays: NewArena[TypeSynArrayData](capHint),
	}
}

func (t *TypeSyns) new(kind TypeSynKind, span source.Span, payload PayloadID) TypeSynID {
	return TypeSynID(t.Arena.Allocate(TypeSyn{
		Kind:    kind,
		Span:    span,
		Payload: payload,
	}))
}

// Get returns the annotation with the given ID.
func (t *TypeSyns) Get(id TypeSynID) *TypeSyn {
	return t.Arena.Get(uint32(id))
}

// NewNamed creates a named annotation (bool, int8, Flit, ...).
func (t *TypeSyns) NewNamed(span source.Span, name source.StringID) TypeSynID {
	payload := t.Named.Allocate(TypeSynNamedData{Name: name})
	return t.new(TypeSynNamed, span, PayloadID(payload))
}

// NewPort creates a port<elem> annotation.
func (t *TypeSyns) NewPort(span source.Span, elem TypeSynID) TypeSynID {
	payload := t.Elems.Allocate(TypeSynElemData{Elem: elem})
	return t.new(TypeSynPort, span, PayloadID(payload))
}

// NewReg creates a reg<elem> annotation.
func (t *TypeSyns) NewReg(span source.Span, elem TypeSynID) TypeSynID {
	payload := t.Elems.Allocate(TypeSynElemData{Elem: elem})
	return t.new(TypeSynReg, span, PayloadID(payload))
}

// NewBypass creates a bypass<elem> annotation.
func (t *TypeSyns) NewBypass(span source.Span, elem TypeSynID) TypeSynID {
	payload := t.Elems.Allocate(TypeSynElemData{Elem: elem})
	return t.new(TypeSynBypass, span, PayloadID(payload))
}

// NewArray creates a T[count] annotation.
func (t *TypeSyns) NewArray(span source.Span, elem TypeSynID, count uint32) TypeSynID {
	payload := t.Arrays.Allocate(TypeSynArrayData{Elem: elem, Count: count})
	return t.new(TypeSynArray, span, PayloadID(payload))
}

// NamedData returns the payload of a named annotation.
func (t *TypeSyns) NamedData(id TypeSynID) (*TypeSynNamedData, bool) {
	syn := t.Get(id)
	if syn == nil || syn.Kind != TypeSynNamed {
		return nil, false
	}
	return t.Named.Get(uint32(syn.Payload)), true
}

// ElemData returns the payload of a port/reg/bypass annotation.
func (t *TypeSyns) ElemData(id TypeSynID) (*TypeSynElemData, bool) {
	syn := t.Get(id)
	if syn == nil {
		return nil, false
	}
	switch syn.Kind {
	case TypeSynPort, TypeSynReg, TypeSynBypass:
		return t.Elems.Get(uint32(syn.Payload)), true
	}
	return nil, false
}

// ArrayData returns the payload of an array annotation.
func (t *TypeSyns) ArrayData(id TypeSynID) (*TypeSynArrayData, bool) {
	syn := t.Get(id)
	if syn == nil || syn.Kind != TypeSynArray {
		return nil, false
	}
	return t.Arrays.Get(uint32(syn.Payload)), true
}
