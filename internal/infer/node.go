package infer

import (
	"ripple/internal/diag"
	"ripple/internal/source"
	"ripple/internal/types"
)

// Node is one equivalence class of type slots. All slots listed on a node
// receive the same resolved type; edges derive the node's value from other
// nodes, validators check the final value's shape.
type Node struct {
	span       source.Span
	slots      []SlotRef
	edges      []Edge
	validators []Validator
	value      Value

	// deflt is joined in after the first fixed point if the node is still
	// unknown. Unsuffixed integer literals default this way so an
	// annotation elsewhere in the class can still pick their width.
	deflt types.TypeID

	// bypassWrites counts publish sites for bypass region nodes; -1 for
	// every other node. Checked after solving.
	bypassWrites int
}

// update folds the seeded slot types and every edge contribution into the
// node's value. It reports whether the value moved up the lattice; values
// never move down, which is what guarantees termination.
func (p *Pass) update(id NodeID) bool {
	n := &p.nodes[id]
	next := n.value
	for i := range n.slots {
		if t, ok := n.slots[i].read(p.builder); ok {
			next = Join(next, Resolved(t))
		}
	}
	for i := range n.edges {
		if contrib, ok := p.evalEdge(&n.edges[i]); ok {
			next = Join(next, contrib)
		}
	}
	if next == n.value {
		return false
	}
	n.value = next
	return true
}

// validate reports on the node's final value. Conflict and unknown
// short-circuit with their own diagnostic; resolved nodes run every
// validator and accumulate failures rather than stopping at the first.
func (p *Pass) validate(id NodeID) bool {
	n := &p.nodes[id]
	switch n.value.State {
	case StateConflict:
		p.report(diag.InferTypeConflict, n.span, "conflicting types for expression")
		return false
	case StateUnknown:
		if n.bypassWrites == 0 {
			p.report(diag.InferBypassNoWriter, n.span, "bypass region is never written")
			return false
		}
		p.report(diag.InferUnresolvedType, n.span, "cannot infer type")
		return false
	}

	ok := true
	for i := range n.validators {
		if !p.runValidator(&n.validators[i], n.value.Type) {
			ok = false
		}
	}
	if n.bypassWrites == 0 {
		p.report(diag.InferBypassNoWriter, n.span, "bypass region is never written")
		ok = false
	}
	return ok
}
