// Package aggtypes resolves named aggregate types to their ordered field
// lists and turns syntactic annotations into interned type descriptors. It
// must run before type inference: the inference graph derives field types
// from the descriptors registered here.
package aggtypes

import (
	"fmt"
	"strconv"
	"strings"

	"ripple/internal/ast"
	"ripple/internal/diag"
	"ripple/internal/source"
	"ripple/internal/types"
)

// Resolver maps aggregate names to field lists inside one unit.
type Resolver struct {
	builder  *ast.Builder
	interner *types.Interner
	reporter diag.Reporter

	defs       map[types.AggID]ast.ItemID
	inProgress map[types.AggID]struct{}
	outcome    map[types.AggID]bool // set once per aggregate, never retried
}

// NewResolver constructs a resolver bound to one unit's AST and interner.
func NewResolver(builder *ast.Builder, interner *types.Interner, reporter diag.Reporter) *Resolver {
	return &Resolver{
		builder:    builder,
		interner:   interner,
		reporter:   reporter,
		defs:       make(map[types.AggID]ast.ItemID),
		inProgress: make(map[types.AggID]struct{}),
		outcome:    make(map[types.AggID]bool),
	}
}

// Run resolves every aggregate definition in the file. It first registers
// all names so definitions may reference each other in any order, then
// resolves field lists, rejecting duplicates and recursive shapes. Returns
// false when any error was reported.
func (r *Resolver) Run(file ast.FileID) bool {
	root := r.builder.Files.Get(file)
	if root == nil {
		return true
	}

	ok := true
	var declared []types.AggID

	for _, itemID := range root.Items {
		def, isAgg := r.builder.Items.AggDef(itemID)
		if !isAgg {
			continue
		}
		item := r.builder.Items.Get(itemID)
		aggID, fresh := r.interner.DeclareAgg(def.Name)
		if !fresh {
			name := r.builder.Strings.MustLookup(def.Name)
			diag.ReportError(r.reporter, diag.AggDuplicateType, item.Span,
				fmt.Sprintf("aggregate type %q is defined more than once", name)).Emit()
			ok = false
			continue
		}
		r.defs[aggID] = itemID
		declared = append(declared, aggID)
	}

	for _, aggID := range declared {
		if !r.resolveAgg(aggID) {
			ok = false
		}
	}
	return ok
}

// resolveAgg fills in one aggregate's field list, forcing the aggregates its
// fields name to resolve first. A cycle through the in-progress set means an
// infinite-width type.
func (r *Resolver) resolveAgg(aggID types.AggID) bool {
	if res, tried := r.outcome[aggID]; tried {
		return res
	}
	itemID, known := r.defs[aggID]
	if !known {
		return false
	}
	def, _ := r.builder.Items.AggDef(itemID)
	item := r.builder.Items.Get(itemID)

	if _, cyclic := r.inProgress[aggID]; cyclic {
		name := r.builder.Strings.MustLookup(def.Name)
		diag.ReportError(r.reporter, diag.AggRecursiveType, item.Span,
			fmt.Sprintf("aggregate type %q contains itself and would have infinite width", name)).Emit()
		return false
	}
	r.inProgress[aggID] = struct{}{}
	defer delete(r.inProgress, aggID)

	ok := true
	if len(def.Fields) == 0 {
		name := r.builder.Strings.MustLookup(def.Name)
		diag.ReportError(r.reporter, diag.AggEmptyType, item.Span,
			fmt.Sprintf("aggregate type %q has no fields", name)).Emit()
		ok = false
	}

	seen := make(map[source.StringID]struct{}, len(def.Fields))
	fields := make([]types.AggField, 0, len(def.Fields))
	for _, f := range def.Fields {
		if _, dup := seen[f.Name]; dup {
			fieldName := r.builder.Strings.MustLookup(f.Name)
			diag.ReportError(r.reporter, diag.AggDuplicateField, f.Span,
				fmt.Sprintf("duplicate field %q", fieldName)).Emit()
			ok = false
			continue
		}
		seen[f.Name] = struct{}{}

		fieldType, resolved := r.ResolveAnnotation(f.Ann)
		if !resolved {
			ok = false
			continue
		}
		fields = append(fields, types.AggField{Name: f.Name, Type: fieldType})
	}

	if ok {
		r.interner.SetAggFields(aggID, fields)
	}
	r.outcome[aggID] = ok
	return ok
}

// ResolveAnnotation turns a syntactic annotation into an interned TypeID.
// Named annotations cover the builtins (bool, intN) and aggregate names;
// modifier annotations wrap their element recursively. Errors are reported
// through the resolver's sink.
func (r *Resolver) ResolveAnnotation(id ast.TypeSynID) (types.TypeID, bool) {
	syn := r.builder.TypeSyns.Get(id)
	if syn == nil {
		return types.NoTypeID, false
	}
	switch syn.Kind {
	case ast.TypeSynNamed:
		named, _ := r.builder.TypeSyns.NamedData(id)
		return r.resolveNamed(named.Name, syn.Span)
	case ast.TypeSynPort:
		elemData, _ := r.builder.TypeSyns.ElemData(id)
		elem, ok := r.ResolveAnnotation(elemData.Elem)
		if !ok {
			return types.NoTypeID, false
		}
		return r.interner.Intern(types.MakePort(elem)), true
	case ast.TypeSynReg:
		elemData, _ := r.builder.TypeSyns.ElemData(id)
		elem, ok := r.ResolveAnnotation(elemData.Elem)
		if !ok {
			return types.NoTypeID, false
		}
		return r.interner.Intern(types.MakeReg(elem)), true
	case ast.TypeSynBypass:
		elemData, _ := r.builder.TypeSyns.ElemData(id)
		elem, ok := r.ResolveAnnotation(elemData.Elem)
		if !ok {
			return types.NoTypeID, false
		}
		return r.interner.Intern(types.MakeBypass(elem)), true
	case ast.TypeSynArray:
		arr, _ := r.builder.TypeSyns.ArrayData(id)
		elem, ok := r.ResolveAnnotation(arr.Elem)
		if !ok {
			return types.NoTypeID, false
		}
		count := arr.Count
		if count == 0 {
			count = types.ArrayDynamicLength
		}
		return r.interner.Intern(types.MakeArray(elem, count)), true
	}
	return types.NoTypeID, false
}

func (r *Resolver) resolveNamed(name source.StringID, sp source.Span) (types.TypeID, bool) {
	spelling := r.builder.Strings.MustLookup(name)

	if spelling == "bool" {
		return r.interner.Builtins().Bool, true
	}
	if width, isInt := parseIntName(spelling); isInt {
		if width == 0 {
			diag.ReportError(r.reporter, diag.AggBadAnnotation, sp,
				fmt.Sprintf("integer type %q must have a positive width", spelling)).Emit()
			return types.NoTypeID, false
		}
		return r.interner.Intern(types.MakeInt(width)), true
	}

	aggID, known := r.interner.AggByName(name)
	if !known {
		diag.ReportError(r.reporter, diag.AggUnknownType, sp,
			fmt.Sprintf("unknown type %q", spelling)).Emit()
		return types.NoTypeID, false
	}
	// Aggregates used from annotations must themselves resolve, so forward
	// references inside other aggregates work regardless of order.
	if _, pending := r.defs[aggID]; pending {
		if !r.resolveAgg(aggID) {
			return types.NoTypeID, false
		}
	}
	return r.interner.Intern(types.MakeAgg(aggID)), true
}

// parseIntName recognizes the intN builtin family.
func parseIntName(s string) (uint32, bool) {
	rest, ok := strings.CutPrefix(s, "int")
	if !ok || rest == "" {
		return 0, false
	}
	width, err := strconv.ParseUint(rest, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(width), true
}
