package trace

import (
	"sync/atomic"
	"time"
)

var (
	seq   atomic.Uint64
	spans atomic.Uint64
)

func nextSeq() uint64 { return seq.Add(1) }

// Task traces one bridge task. All methods accept a nil *Task, which is what
// StartTask returns when the tracer drops task events.
type Task struct {
	tracer  Tracer
	id      uint64
	source  string
	span    uint64
	started time.Time
}

// StartTask emits the begin event of task id submitted for source.
func StartTask(t Tracer, id uint64, source string) *Task {
	if t == nil || !t.Level().Records(ScopeTask) {
		return nil
	}
	tt := &Task{
		tracer:  t,
		id:      id,
		source:  source,
		span:    spans.Add(1),
		started: time.Now(),
	}
	tt.emit(Event{Kind: KindBegin, Scope: ScopeTask, Span: tt.span, Name: "task"})
	return tt
}

// ID returns the bridge task id, 0 for nil.
func (tt *Task) ID() uint64 {
	if tt == nil {
		return 0
	}
	return tt.id
}

// State records that the task entered state. Elapsed is the task's age.
func (tt *Task) State(state string) {
	if tt == nil {
		return
	}
	tt.emit(Event{Kind: KindState, Scope: ScopeTask, Name: state, Elapsed: time.Since(tt.started)})
}

// Note records a named detail, e.g. the decoded options or a cache failure.
func (tt *Task) Note(name, detail string) {
	if tt == nil {
		return
	}
	tt.emit(Event{Kind: KindNote, Scope: ScopeTask, Name: name, Detail: detail})
}

// End emits the task's end event; detail is its outcome.
func (tt *Task) End(detail string) time.Duration {
	if tt == nil {
		return 0
	}
	d := time.Since(tt.started)
	tt.emit(Event{Kind: KindEnd, Scope: ScopeTask, Span: tt.span, Name: "task", Detail: detail, Elapsed: d})
	return d
}

// Phase starts a phase span inside the task. It returns nil when the tracer
// drops phase events.
func (tt *Task) Phase(name string) *Phase {
	if tt == nil || !tt.tracer.Level().Records(ScopePhase) {
		return nil
	}
	p := &Phase{task: tt, span: spans.Add(1), name: name, started: time.Now()}
	tt.emit(Event{Kind: KindBegin, Scope: ScopePhase, Span: p.span, Parent: tt.span, Name: name})
	return p
}

func (tt *Task) emit(ev Event) {
	ev.Time = time.Now()
	ev.Task = tt.id
	ev.Source = tt.source
	tt.tracer.Emit(ev)
}

// Phase is a span nested in a Task.
type Phase struct {
	task    *Task
	span    uint64
	name    string
	started time.Time
}

// End closes the phase; detail summarizes what it produced.
func (p *Phase) End(detail string) time.Duration {
	if p == nil {
		return 0
	}
	d := time.Since(p.started)
	p.task.emit(Event{
		Kind:    KindEnd,
		Scope:   ScopePhase,
		Span:    p.span,
		Parent:  p.task.span,
		Name:    p.name,
		Detail:  detail,
		Elapsed: d,
	})
	return d
}
