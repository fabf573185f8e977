package diag

// Severity ranks a diagnostic. Ordering matters: Bag.HasErrors treats
// anything at SevError or above as fatal to the run.
type Severity uint8

const (
	// SevInfo annotates without implying a problem, used for notes.
	SevInfo Severity = iota
	// SevWarning flags suspicious but solvable programs.
	SevWarning
	// SevError marks a program the solver rejects.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
