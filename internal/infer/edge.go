package infer

import (
	"fortio.org/safecast"

	"ripple/internal/source"
	"ripple/internal/types"
)

// NodeID indexes the pass's node table in creation order.
type NodeID uint32

// EdgeOp enumerates the derivations an edge can perform. Every edge is
// interpreted by evalEdge; there is no per-edge behavior hidden anywhere
// else, which keeps the solver inspectable and the dispatch exhaustive.
type EdgeOp uint8

const (
	// OpConvey copies the single source's resolved type to the target.
	OpConvey EdgeOp = iota
	// OpConst contributes a fixed type unconditionally; it has no sources.
	OpConst
	// OpWidthSum resolves the target to an integer whose width is the sum
	// of the source widths. Fires only when every source has a defined width.
	OpWidthSum
	// OpPortWrap resolves the target to port<source>.
	OpPortWrap
	// OpPortUnwrap resolves the target to the element of the source port.
	OpPortUnwrap
	// OpRegWrap resolves the target to reg<source>.
	OpRegWrap
	// OpRegUnwrap resolves the target to the element of the source register.
	OpRegUnwrap
	// OpBypassWrap resolves the target to bypass<source>.
	OpBypassWrap
	// OpBypassUnwrap resolves the target to the element of the source bypass.
	OpBypassUnwrap
	// OpArrayElem resolves the target to the element of the source array.
	OpArrayElem
	// OpFieldOf resolves the target to the declared type of the named field
	// of the source aggregate.
	OpFieldOf
)

func (op EdgeOp) String() string {
	switch op {
	case OpConvey:
		return "convey"
	case OpConst:
		return "const"
	case OpWidthSum:
		return "width-sum"
	case OpPortWrap:
		return "port-wrap"
	case OpPortUnwrap:
		return "port-unwrap"
	case OpRegWrap:
		return "reg-wrap"
	case OpRegUnwrap:
		return "reg-unwrap"
	case OpBypassWrap:
		return "bypass-wrap"
	case OpBypassUnwrap:
		return "bypass-unwrap"
	case OpArrayElem:
		return "array-elem"
	case OpFieldOf:
		return "field-of"
	default:
		return "op?"
	}
}

// Edge derives a contribution to its owning node from the current values of
// its source nodes. An edge never fires while any source is still unknown.
type Edge struct {
	Op      EdgeOp
	Sources []NodeID
	Const   types.TypeID    // OpConst
	Field   source.StringID // OpFieldOf
}

// evalEdge computes the edge's contribution. The second result is false when
// the edge has nothing to say yet; a conflicted source always propagates.
// Unwrap edges whose source resolved to the wrong shape contribute nothing
// and leave the complaint to the shape validator on that source.
func (p *Pass) evalEdge(e *Edge) (Value, bool) {
	if e.Op == OpConst {
		return Resolved(e.Const), true
	}

	vals := make([]Value, len(e.Sources))
	for i, src := range e.Sources {
		v := p.nodes[src].value
		switch v.State {
		case StateConflict:
			return Conflicted(), true
		case StateUnknown:
			return Unknown(), false
		}
		vals[i] = v
	}

	switch e.Op {
	case OpConvey:
		return vals[0], true

	case OpWidthSum:
		var sum uint64
		for _, v := range vals {
			w, ok := p.interner.Width(v.Type)
			if !ok {
				return Unknown(), false
			}
			sum += uint64(w)
		}
		total, err := safecast.Conv[uint32](sum)
		if err != nil {
			return Conflicted(), true
		}
		return Resolved(p.interner.Intern(types.MakeInt(total))), true

	case OpPortWrap:
		return Resolved(p.interner.Intern(types.MakePort(vals[0].Type))), true

	case OpRegWrap:
		return Resolved(p.interner.Intern(types.MakeReg(vals[0].Type))), true

	case OpBypassWrap:
		return Resolved(p.interner.Intern(types.MakeBypass(vals[0].Type))), true

	case OpPortUnwrap:
		return p.unwrap(vals[0].Type, types.KindPort)

	case OpRegUnwrap:
		return p.unwrap(vals[0].Type, types.KindReg)

	case OpBypassUnwrap:
		return p.unwrap(vals[0].Type, types.KindBypass)

	case OpArrayElem:
		return p.unwrap(vals[0].Type, types.KindArray)

	case OpFieldOf:
		desc, ok := p.interner.Lookup(vals[0].Type)
		if !ok || desc.Kind != types.KindAgg {
			return Unknown(), false
		}
		field, ok := p.interner.AggField(desc.Agg, e.Field)
		if !ok {
			return Unknown(), false
		}
		return Resolved(field.Type), true
	}
	return Unknown(), false
}

func (p *Pass) unwrap(id types.TypeID, kind types.Kind) (Value, bool) {
	desc, ok := p.interner.Lookup(id)
	if !ok || desc.Kind != kind {
		return Unknown(), false
	}
	return Resolved(desc.Elem), true
}
