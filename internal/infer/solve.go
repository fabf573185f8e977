package infer

import (
	"ripple/internal/diag"
	"ripple/internal/types"
)

// solve relaxes the graph to a fixed point, applies literal defaults to
// nodes nothing else determined, relaxes once more, then validates every
// node and writes resolved types back into the AST slots. Values only climb
// the lattice, so both relaxation rounds terminate. The round cap is a
// backstop against a wiring bug, not something a well-formed graph reaches.
func (p *Pass) solve() bool {
	p.result.Nodes = len(p.nodes)

	if !p.relax() {
		return false
	}
	if p.applyDefaults() && !p.relax() {
		return false
	}

	ok := true
	for id := range p.nodes {
		if !p.validate(NodeID(id)) {
			ok = false
		}
	}

	for i := range p.nodes {
		n := &p.nodes[i]
		if !n.value.IsResolved() {
			continue
		}
		for _, slot := range n.slots {
			slot.write(p.builder, n.value.Type)
			switch slot.Kind {
			case SlotExpr:
				p.result.ExprTypes[slot.Expr] = n.value.Type
			case SlotLet:
				p.result.LetTypes[slot.Let] = n.value.Type
			}
		}
	}
	return ok
}

func (p *Pass) relax() bool {
	limit := 2 * len(p.nodes)
	if limit < 2 {
		limit = 2
	}
	rounds := 0
	for {
		changed := false
		for id := range p.nodes {
			if p.update(NodeID(id)) {
				changed = true
			}
		}
		rounds++
		if !changed {
			break
		}
		if rounds > limit {
			p.report(diag.InternalNoConverge, p.fileSpan,
				"type inference did not converge after %d rounds", rounds)
			return false
		}
	}
	p.result.Rounds += rounds
	return true
}

// applyDefaults resolves still-unknown defaultable nodes and reports whether
// anything moved. Defaults never override a type the graph produced.
func (p *Pass) applyDefaults() bool {
	applied := false
	for i := range p.nodes {
		n := &p.nodes[i]
		if n.deflt != types.NoTypeID && n.value.State == StateUnknown {
			n.value = Resolved(n.deflt)
			applied = true
		}
	}
	return applied
}
