package bridge

// State is the lifecycle position of a task.
type State uint32

const (
	StateCreated State = iota
	StateScheduled
	StateRunning
	StateSucceeded
	StateFailed
	StateDelivered
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateScheduled:
		return "scheduled"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// canMoveTo reports whether from -> to is an edge of the lifecycle:
//
//	Created -> Scheduled -> Running -> Succeeded|Failed -> Delivered
//	Created -> Failed (configuration rejected)
func (s State) canMoveTo(to State) bool {
	switch s {
	case StateCreated:
		return to == StateScheduled || to == StateFailed
	case StateScheduled:
		return to == StateRunning
	case StateRunning:
		return to == StateSucceeded || to == StateFailed
	case StateSucceeded, StateFailed:
		return to == StateDelivered
	default:
		return false
	}
}

// Terminal reports whether the outcome has been handed to the waiter.
func (s State) Terminal() bool {
	return s == StateDelivered
}

// Status folds a state into the coarse progress used by sinks.
func (s State) Status() Status {
	switch s {
	case StateCreated, StateScheduled:
		return StatusQueued
	case StateRunning:
		return StatusWorking
	case StateFailed:
		return StatusError
	default:
		return StatusDone
	}
}
