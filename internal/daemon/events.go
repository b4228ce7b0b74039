// Package daemon implements the outer coordination state machine: the
// Profile Manager's ranked variant queue and the Daemon State Machine
// that drives variant lifecycle and change-triggered restarts.
package daemon

// EventKind is the protocol-agnostic event stream the Backend emits onto
// the bounded event queue.
type EventKind int

const (
	// EventAtomicChangeDone corresponds to the manager's Done{serial}
	// event: an atomic snapshot is complete.
	EventAtomicChangeDone EventKind = iota
	// EventSucceeded corresponds to a configuration Succeeded event.
	EventSucceeded
	// EventFailed corresponds to a configuration Failed event.
	EventFailed
	// EventCancelled corresponds to a configuration Cancelled event: the
	// serial was superseded by another change.
	EventCancelled
	// EventNeededResourceFinished corresponds to the manager's Finished
	// event: the output-management global is gone, recovery is
	// impossible.
	EventNeededResourceFinished
)

func (e EventKind) String() string {
	switch e {
	case EventAtomicChangeDone:
		return "AtomicChangeDone"
	case EventSucceeded:
		return "Succeeded"
	case EventFailed:
		return "Failed"
	case EventCancelled:
		return "Cancelled"
	case EventNeededResourceFinished:
		return "NeededResourceFinished"
	default:
		return "Unknown"
	}
}

// Event is one entry in a processed batch.
type Event struct {
	Kind EventKind
}
