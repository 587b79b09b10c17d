package bridge

import "time"

// Status captures coarse task progress.
type Status string

const (
	// StatusQueued indicates the task is waiting for a worker slot.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently parsing.
	StatusWorking Status = "working"
	// StatusDone indicates the task produced a tree.
	StatusDone Status = "done"
	// StatusError indicates the task failed.
	StatusError Status = "error"
)

// Event reports one state transition of a task.
type Event struct {
	Task    uint64
	Source  string
	State   State
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes task events. OnEvent is called from the submitting
// goroutine and from workers; it must be safe for concurrent use and should
// not block for long.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) {
	f(evt)
}
