package shelf

// State is the hydration state of a Store.
type State int

const (
	Uninitialized State = iota
	Hydrating
	Ready
)

func (s State) String() string {
	switch s {
	case Hydrating:
		return "hydrating"
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Outcome reports what a mutation did. None of them are errors: a full shelf
// or a missing id leaves the shelf unchanged and says so.
type Outcome int

const (
	Added Outcome = iota
	Duplicate
	Full
	Removed
	Missing
	Updated
	Unchanged
	Cleared
	Deferred
	Invalid
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Duplicate:
		return "duplicate"
	case Full:
		return "full"
	case Removed:
		return "removed"
	case Missing:
		return "missing"
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	case Cleared:
		return "cleared"
	case Deferred:
		return "deferred"
	default:
		return "invalid"
	}
}

// Changed reports whether the outcome modified the shelf contents.
func (o Outcome) Changed() bool {
	switch o {
	case Added, Removed, Updated, Cleared:
		return true
	default:
		return false
	}
}
