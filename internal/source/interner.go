package source

import (
	"slices"

	"golang.org/x/text/unicode/norm"
)

// StringID identifies an interned identifier or name.
type StringID uint32

// NoStringID marks the absence of a name.
const NoStringID StringID = 0

// Interner deduplicates identifier spellings. Identifiers are normalized to
// NFC on intern so that visually identical names unify to the same ID.
type Interner struct {
	byID  []string
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""}, // NoStringID -> empty string
		index: map[string]StringID{"": 0},
	}
}

// Intern stores the string and returns its stable ID. Interning the same
// spelling twice returns the same ID.
func (in *Interner) Intern(s string) StringID {
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	if id, ok := in.index[s]; ok {
		return id
	}

	// Own copy so we do not pin the caller's buffer.
	cpy := string([]byte(s))
	id := StringID(len(in.byID))
	in.byID = append(in.byID, cpy)
	in.index[cpy] = id
	return id
}

// InternBytes interns the byte slice as a string.
func (in *Interner) InternBytes(b []byte) StringID {
	return in.Intern(string(b))
}

// Lookup returns the spelling for an ID.
func (in *Interner) Lookup(id StringID) (string, bool) {
	if !in.Has(id) {
		return "", false
	}
	return in.byID[id], true
}

// MustLookup returns the spelling for an ID and panics on an invalid ID.
func (in *Interner) MustLookup(id StringID) string {
	s, ok := in.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

// Has reports whether the ID is valid for this interner.
func (in *Interner) Has(id StringID) bool {
	return int(id) < len(in.byID)
}

// Len returns the number of interned strings, including the NoStringID slot.
func (in *Interner) Len() int {
	return len(in.byID)
}

// Snapshot returns a copy of all interned strings in ID order.
func (in *Interner) Snapshot() []string {
	return slices.Clone(in.byID)
}

// Restore rebuilds an interner from a snapshot produced by Snapshot.
func Restore(strings []string) *Interner {
	in := NewInterner()
	for i, s := range strings {
		if i == 0 {
			continue
		}
		in.byID = append(in.byID, s)
		in.index[s] = StringID(i)
	}
	return in
}
