package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type (an unresolved slot).
const NoTypeID TypeID = 0

// AggID identifies a named aggregate in the interner's side table.
type AggID uint32

// NoAggID marks the absence of an aggregate.
const NoAggID AggID = 0

// Kind enumerates all supported kinds of types. Int, Bool and Agg are base
// kinds; the rest are structural modifiers wrapping an element type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt
	KindBool
	KindAgg
	KindPort
	KindArray
	KindReg
	KindBypass
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindAgg:
		return "aggregate"
	case KindPort:
		return "port"
	case KindArray:
		return "array"
	case KindReg:
		return "reg"
	case KindBypass:
		return "bypass"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// ArrayDynamicLength marks arrays whose length is not known from the type.
const ArrayDynamicLength = ^uint32(0)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind  Kind
	Width uint32 // for KindInt: bit width
	Elem  TypeID // for modifier kinds
	Count uint32 // for KindArray (ArrayDynamicLength if unknown)
	Agg   AggID  // for KindAgg
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes a signed integer of the given bit width.
func MakeInt(width uint32) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeBool describes the 1-bit boolean type.
func MakeBool() Type {
	return Type{Kind: KindBool}
}

// MakeAgg describes a named aggregate.
func MakeAgg(agg AggID) Type {
	return Type{Kind: KindAgg, Agg: agg}
}

// MakePort describes a port carrying elem.
func MakePort(elem TypeID) Type {
	return Type{Kind: KindPort, Elem: elem}
}

// MakeArray describes an array of elem. Use ArrayDynamicLength when the
// length is not part of the type.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeReg describes a hardware register holding elem.
func MakeReg(elem TypeID) Type {
	return Type{Kind: KindReg, Elem: elem}
}

// MakeBypass describes a bypass network carrying elem.
func MakeBypass(elem TypeID) Type {
	return Type{Kind: KindBypass, Elem: elem}
}

// IsModifier reports whether the kind wraps an element type.
func (k Kind) IsModifier() bool {
	switch k {
	case KindPort, KindArray, KindReg, KindBypass:
		return true
	}
	return false
}
