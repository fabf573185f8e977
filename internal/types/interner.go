package types

import (
	"fmt"

	"fortio.org/safecast"

	"ripple/internal/source"
)

// AggField is one typed field of an aggregate.
type AggField struct {
	Name source.StringID
	Type TypeID
}

// AggInfo stores the resolved shape of a named aggregate: its name and the
// ordered field list. Fields stay nil until the aggregate resolver runs.
type AggInfo struct {
	Name     source.StringID
	Fields   []AggField
	Resolved bool
}

// Builtins stores TypeIDs for types every unit needs.
type Builtins struct {
	Invalid TypeID
	Bool    TypeID
	Int32   TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors, so
// TypeID equality is descriptor equality.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins
	aggs     []AggInfo
	aggIndex map[source.StringID]AggID
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:    make(map[Type]TypeID, 64),
		aggIndex: make(map[source.StringID]AggID),
	}
	in.aggs = append(in.aggs, AggInfo{}) // reserve 0 as invalid sentinel
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Bool = in.Intern(MakeBool())
	in.builtins.Int32 = in.Intern(MakeInt(32))
	return in
}

// Builtins returns TypeIDs for the seeded primitives.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup returns the descriptor and panics on an invalid ID.
func (in *Interner) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("invalid TypeID %d", id))
	}
	return t
}

// Len returns the number of interned descriptors including the sentinel.
func (in *Interner) Len() int {
	return len(in.types)
}

// Aggregates -----------------------------------------------------------------

// DeclareAgg registers an aggregate name and returns its AggID. Declaring an
// already known name returns the existing ID with ok=false.
func (in *Interner) DeclareAgg(name source.StringID) (AggID, bool) {
	if id, exists := in.aggIndex[name]; exists {
		return id, false
	}
	lenAggs, err := safecast.Conv[uint32](len(in.aggs))
	if err != nil {
		panic(fmt.Errorf("len(aggs) overflow: %w", err))
	}
	id := AggID(lenAggs)
	in.aggs = append(in.aggs, AggInfo{Name: name})
	in.aggIndex[name] = id
	return id, true
}

// SetAggFields installs the resolved field list for an aggregate.
func (in *Interner) SetAggFields(id AggID, fields []AggField) {
	if id == NoAggID || int(id) >= len(in.aggs) {
		return
	}
	in.aggs[id].Fields = fields
	in.aggs[id].Resolved = true
}

// Agg returns the aggregate info for an AggID.
func (in *Interner) Agg(id AggID) (*AggInfo, bool) {
	if id == NoAggID || int(id) >= len(in.aggs) {
		return nil, false
	}
	return &in.aggs[id], true
}

// AggByName looks an aggregate up by its interned name.
func (in *Interner) AggByName(name source.StringID) (AggID, bool) {
	id, ok := in.aggIndex[name]
	return id, ok
}

// AggField finds a named field inside an aggregate.
func (in *Interner) AggField(id AggID, name source.StringID) (AggField, bool) {
	info, ok := in.Agg(id)
	if !ok {
		return AggField{}, false
	}
	for _, f := range info.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return AggField{}, false
}

// Queries --------------------------------------------------------------------

// IsSimple reports whether the type is a bare base: integer, boolean or
// aggregate. Aggregates count as simple because arithmetic treats them as
// wide concatenated integers.
func (in *Interner) IsSimple(id TypeID) bool {
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case KindInt, KindBool, KindAgg:
		return true
	}
	return false
}

// Width returns the bit width of a type. It is defined for integers,
// booleans and resolved aggregates (sum of field widths) and undefined for
// modifier kinds.
func (in *Interner) Width(id TypeID) (uint32, bool) {
	t, ok := in.Lookup(id)
	if !ok {
		return 0, false
	}
	switch t.Kind {
	case KindInt:
		return t.Width, true
	case KindBool:
		return 1, true
	case KindAgg:
		info, ok := in.Agg(t.Agg)
		if !ok || !info.Resolved {
			return 0, false
		}
		var sum uint64
		for _, f := range info.Fields {
			w, ok := in.Width(f.Type)
			if !ok {
				return 0, false
			}
			sum += uint64(w)
		}
		total, err := safecast.Conv[uint32](sum)
		if err != nil {
			return 0, false
		}
		return total, true
	}
	return 0, false
}

// String renders a type for diagnostics, resolving names via strings.
func (in *Interner) String(id TypeID, strings *source.Interner) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "<unresolved>"
	}
	switch t.Kind {
	case KindInt:
		return fmt.Sprintf("int%d", t.Width)
	case KindBool:
		return "bool"
	case KindAgg:
		info, ok := in.Agg(t.Agg)
		if ok && strings != nil {
			if name, found := strings.Lookup(info.Name); found && name != "" {
				return name
			}
		}
		return fmt.Sprintf("aggregate#%d", t.Agg)
	case KindPort:
		return "port<" + in.String(t.Elem, strings) + ">"
	case KindArray:
		if t.Count == ArrayDynamicLength {
			return in.String(t.Elem, strings) + "[]"
		}
		return fmt.Sprintf("%s[%d]", in.String(t.Elem, strings), t.Count)
	case KindReg:
		return "reg<" + in.String(t.Elem, strings) + ">"
	case KindBypass:
		return "bypass<" + in.String(t.Elem, strings) + ">"
	}
	return "<invalid>"
}

// Snapshot returns the interned descriptors and aggregates for serialization.
func (in *Interner) Snapshot() ([]Type, []AggInfo) {
	typesCopy := make([]Type, len(in.types))
	copy(typesCopy, in.types)
	aggsCopy := make([]AggInfo, len(in.aggs))
	copy(aggsCopy, in.aggs)
	return typesCopy, aggsCopy
}

// RestoreInterner rebuilds an interner from snapshot data. Builtins occupy
// the low IDs in every snapshot, so only the tail is replayed.
func RestoreInterner(typeList []Type, aggs []AggInfo) *Interner {
	in := NewInterner()
	seeded := in.Len()
	for i, t := range typeList {
		if i < seeded {
			continue
		}
		in.internRaw(t)
	}
	seededAggs := len(in.aggs)
	for i, a := range aggs {
		if i < seededAggs {
			continue
		}
		in.aggs = append(in.aggs, a)
		in.aggIndex[a.Name] = AggID(i)
	}
	return in
}
