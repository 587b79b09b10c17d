package trace

import (
	"io"
	"sync"
)

// Stream writes each event as it arrives. Write errors are ignored: a
// failing trace output never fails a parse task.
type Stream struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	level  Level
	format Format
}

// NewStream returns a stream tracer writing to w, which it never closes.
func NewStream(w io.Writer, level Level, format Format) *Stream {
	return &Stream{w: w, level: level, format: format}
}

func (s *Stream) Emit(ev Event) {
	if !s.level.Records(ev.Scope) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ev.Seq = nextSeq()
	_, _ = s.w.Write(FormatEvent(&ev, s.format))
}

func (s *Stream) Level() Level { return s.level }

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return err
		}
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
