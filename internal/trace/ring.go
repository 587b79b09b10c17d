package trace

import (
	"io"
	"sync"
)

const defaultRingSize = 4096

// Ring keeps the most recent events in memory. When built by New it writes
// them to its output on Close, so a trace of a long batch stays bounded.
type Ring struct {
	mu     sync.Mutex
	buf    []Event
	next   int
	full   bool
	level  Level
	out    io.Writer
	closer io.Closer
	format Format
}

// NewRing returns a ring holding up to size events; size <= 0 selects 4096.
func NewRing(size int, level Level) *Ring {
	if size <= 0 {
		size = defaultRingSize
	}
	return &Ring{buf: make([]Event, size), level: level}
}

func (r *Ring) Emit(ev Event) {
	if !r.level.Records(ev.Scope) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ev.Seq = nextSeq()
	r.buf[r.next] = ev
	r.next++
	if r.next == len(r.buf) {
		r.next, r.full = 0, true
	}
}

// Events returns the retained events, oldest first.
func (r *Ring) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.full {
		return append([]Event(nil), r.buf[:r.next]...)
	}
	out := make([]Event, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}

// Dump writes the retained events to w.
func (r *Ring) Dump(w io.Writer, format Format) error {
	events := r.Events()
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Ring) Level() Level { return r.level }

// Close dumps the ring to the output given to New, if any.
func (r *Ring) Close() error {
	if r.out == nil {
		return nil
	}
	err := r.Dump(r.out, r.format)
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	r.out = nil
	return err
}
