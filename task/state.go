package task

// State is the scheduling state of one task.
//
// Pending -> Running -> {Completed | Cancelling -> Cancelled | Panicked}
//
// Pending -> Cancelled covers cancel-before-dispatch: a task whose token was
// set while it sat in the admission queue never runs its body.
type State int32

const (
	Pending State = iota
	Running
	Cancelling
	Cancelled
	Completed
	Panicked
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Cancelling:
		return "cancelling"
	case Cancelled:
		return "cancelled"
	case Completed:
		return "completed"
	case Panicked:
		return "panicked"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == Cancelled || s == Completed || s == Panicked
}

// ValidTransition reports whether from -> to is a legal state change.
func ValidTransition(from, to State) bool {
	switch from {
	case Pending:
		return to == Running || to == Cancelled
	case Running:
		return to == Cancelling || to == Completed || to == Panicked
	case Cancelling:
		return to == Cancelled
	default:
		return false
	}
}
