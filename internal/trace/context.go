package trace

import "context"

type ctxKey uint8

const (
	tracerKey ctxKey = iota
	taskKey
)

// NewContext returns a copy of ctx carrying t.
func NewContext(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey, t)
}

// FromContext returns the tracer stored by NewContext, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithTask returns a copy of ctx carrying the trace of the running task.
func WithTask(ctx context.Context, tt *Task) context.Context {
	return context.WithValue(ctx, taskKey, tt)
}

// TaskFrom returns the task stored by WithTask. A nil result is safe to use.
func TaskFrom(ctx context.Context) *Task {
	if ctx == nil {
		return nil
	}
	tt, _ := ctx.Value(taskKey).(*Task)
	return tt
}
