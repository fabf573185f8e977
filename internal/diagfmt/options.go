// Package diagfmt renders diagnostic bags for terminals and tools.
package diagfmt

// PrettyOpts configures the human-readable renderer.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
	// Width truncates context lines; 0 leaves them untouched.
	Width int
}

// JSONOpts configures the machine-readable renderer.
type JSONOpts struct {
	IncludePositions bool
	IncludeNotes     bool
	// Max truncates the emitted list, not the bag itself; 0 emits everything.
	Max int
}
