package infer

import "ripple/internal/types"

// State orders the knowledge a node has about its type.
// Unknown < Resolved < Conflict; joins only move upward.
type State uint8

const (
	StateUnknown State = iota
	StateResolved
	StateConflict
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateResolved:
		return "resolved"
	case StateConflict:
		return "conflict"
	default:
		return "state?"
	}
}

// Value is a point on the inference lattice. Type is meaningful only
// when State is StateResolved.
type Value struct {
	State State
	Type  types.TypeID
}

func Unknown() Value { return Value{State: StateUnknown} }

func Resolved(t types.TypeID) Value { return Value{State: StateResolved, Type: t} }

func Conflicted() Value { return Value{State: StateConflict} }

func (v Value) IsResolved() bool { return v.State == StateResolved }

// Join combines two lattice points. Unknown is the identity, Conflict
// absorbs everything, and two distinct resolved types collide into
// Conflict. Commutative, associative, idempotent.
func Join(a, b Value) Value {
	switch {
	case a.State == StateConflict || b.State == StateConflict:
		return Conflicted()
	case a.State == StateUnknown:
		return b
	case b.State == StateUnknown:
		return a
	case a.Type == b.Type:
		return a
	default:
		return Conflicted()
	}
}
