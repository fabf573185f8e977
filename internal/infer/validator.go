package infer

import (
	"fmt"

	"ripple/internal/diag"
	"ripple/internal/source"
	"ripple/internal/types"
)

// ValidatorKind enumerates the post-solve shape checks a node can carry.
type ValidatorKind uint8

const (
	// ValidSimple requires an int, bool or aggregate type.
	ValidSimple ValidatorKind = iota
	// ValidSimpleInt requires an integer type.
	ValidSimpleInt
	// ValidBool requires the boolean type.
	ValidBool
	// ValidPort requires a port type.
	ValidPort
	// ValidArray requires an array type.
	ValidArray
	// ValidReg requires a register type.
	ValidReg
	// ValidBypass requires a bypass type.
	ValidBypass
	// ValidConcatOperand requires a type with a defined bit width.
	ValidConcatOperand
	// ValidHasField requires an aggregate type declaring the named field.
	ValidHasField
	// ValidCast requires the node's type to be castable to Target.
	ValidCast
)

// Validator is one deferred check. It runs only after the solver reached its
// fixed point and only on nodes that resolved; unknown and conflicted nodes
// already produce their own diagnostic.
type Validator struct {
	Kind   ValidatorKind
	Span   source.Span
	Target types.TypeID    // ValidCast
	Field  source.StringID // ValidHasField
}

func (p *Pass) runValidator(v *Validator, t types.TypeID) bool {
	desc, ok := p.interner.Lookup(t)
	if !ok {
		return false
	}

	switch v.Kind {
	case ValidSimple:
		if p.interner.IsSimple(t) {
			return true
		}
		p.report(diag.InferNotSimple, v.Span,
			"expected a simple value type, found %s", p.typeName(t))

	case ValidSimpleInt:
		if desc.Kind == types.KindInt {
			return true
		}
		p.report(diag.InferBadIndex, v.Span,
			"array index must be an integer, found %s", p.typeName(t))

	case ValidBool:
		if desc.Kind == types.KindBool {
			return true
		}
		p.report(diag.InferNotBool, v.Span,
			"condition must be bool, found %s", p.typeName(t))

	case ValidPort:
		if desc.Kind == types.KindPort {
			return true
		}
		p.report(diag.InferNotPort, v.Span,
			"expected a port, found %s", p.typeName(t))

	case ValidArray:
		if desc.Kind == types.KindArray {
			return true
		}
		p.report(diag.InferNotArray, v.Span,
			"expected an array, found %s", p.typeName(t))

	case ValidReg:
		if desc.Kind == types.KindReg {
			return true
		}
		p.report(diag.InferNotReg, v.Span,
			"expected a register, found %s", p.typeName(t))

	case ValidBypass:
		if desc.Kind == types.KindBypass {
			return true
		}
		p.report(diag.InferNotBypass, v.Span,
			"expected a bypass region, found %s", p.typeName(t))

	case ValidConcatOperand:
		if _, widthOK := p.interner.Width(t); widthOK {
			return true
		}
		p.report(diag.InferConcatOperand, v.Span,
			"concatenation operand must have a known bit width, found %s", p.typeName(t))

	case ValidHasField:
		if desc.Kind != types.KindAgg {
			p.report(diag.InferUnknownField, v.Span,
				"field access on non-aggregate type %s", p.typeName(t))
			return false
		}
		if _, ok := p.interner.AggField(desc.Agg, v.Field); ok {
			return true
		}
		p.report(diag.InferUnknownField, v.Span,
			"type %s has no field %q", p.typeName(t), p.stringOf(v.Field))

	case ValidCast:
		if p.castAllowed(t, v.Target) {
			return true
		}
		p.report(diag.InferCastError, v.Span,
			"cannot cast %s to %s", p.typeName(t), p.typeName(v.Target))
	}
	return false
}

// castAllowed decides explicit-cast compatibility: integer widths may be
// freely truncated or extended, anything else requires the exact bit width
// to line up so the cast is a pure reinterpretation.
func (p *Pass) castAllowed(from, to types.TypeID) bool {
	if from == to {
		return true
	}
	if !p.interner.IsSimple(from) || !p.interner.IsSimple(to) {
		return false
	}
	fromDesc := p.interner.MustLookup(from)
	toDesc := p.interner.MustLookup(to)
	if fromDesc.Kind == types.KindInt && toDesc.Kind == types.KindInt {
		return true
	}
	fw, ok1 := p.interner.Width(from)
	tw, ok2 := p.interner.Width(to)
	return ok1 && ok2 && fw == tw
}

func (p *Pass) typeName(t types.TypeID) string {
	return p.interner.String(t, p.builder.Strings)
}

func (p *Pass) stringOf(id source.StringID) string {
	s, _ := p.builder.Strings.Lookup(id)
	return s
}

func (p *Pass) report(code diag.Code, sp source.Span, format string, args ...any) {
	diag.ReportError(p.reporter, code, sp, fmt.Sprintf(format, args...)).Emit()
}
