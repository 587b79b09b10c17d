package trace

import "time"

// Kind tells what an Event marks.
type Kind uint8

const (
	KindBegin     Kind = iota + 1 // a task or phase starts
	KindEnd                       // it ends; Elapsed holds its duration
	KindState                     // a task entered the lifecycle state Name
	KindNote                      // something worth recording inside a task
	KindHeartbeat                 // periodic bridge load sample
)

func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	case KindState:
		return "state"
	case KindNote:
		return "note"
	case KindHeartbeat:
		return "heartbeat"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event. Lower values are coarser.
type Scope uint8

const (
	// ScopeBridge covers bridge-wide events such as heartbeats.
	ScopeBridge Scope = iota + 1
	// ScopeTask covers one parse task and its state transitions.
	ScopeTask
	// ScopePhase covers the phases inside a task.
	ScopePhase
)

func (s Scope) String() string {
	switch s {
	case ScopeBridge:
		return "bridge"
	case ScopeTask:
		return "task"
	case ScopePhase:
		return "phase"
	default:
		return "unknown"
	}
}

// Load is a sample of the bridge's task counts.
type Load struct {
	Queued    int64 `json:"queued"`
	Running   int64 `json:"running"`
	Delivered int64 `json:"delivered"`
}

// Event is one trace record. Task and Source identify the bridge task an
// event belongs to and are zero for bridge-wide events.
type Event struct {
	Time    time.Time
	Seq     uint64 // stamped by the sink, increasing across sinks
	Kind    Kind
	Scope   Scope
	Span    uint64 // task or phase span; 0 for notes and heartbeats
	Parent  uint64 // enclosing task span of a phase
	Task    uint64
	Source  string
	Name    string // "task", a phase name, a state name or a note name
	Detail  string
	Elapsed time.Duration
	Load    *Load // heartbeats only
}
