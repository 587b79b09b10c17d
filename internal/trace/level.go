package trace

import (
	"fmt"
	"strings"
)

// Level selects the deepest Scope a tracer records.
type Level uint8

const (
	LevelOff   Level = iota // nothing
	LevelTask               // bridge events, task lifecycles and heartbeats
	LevelPhase              // also the phases inside each task
)

func (l Level) String() string {
	switch l {
	case LevelOff:
		return "off"
	case LevelTask:
		return "task"
	case LevelPhase:
		return "phase"
	default:
		return "unknown"
	}
}

// ParseLevel accepts the names printed by Level.String, in any case.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "off", "":
		return LevelOff, nil
	case "task":
		return LevelTask, nil
	case "phase":
		return LevelPhase, nil
	default:
		return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|task|phase)", s)
	}
}

// Records reports whether events of scope pass at this level.
func (l Level) Records(scope Scope) bool {
	switch l {
	case LevelTask:
		return scope <= ScopeTask
	case LevelPhase:
		return scope <= ScopePhase
	}
	return false
}
