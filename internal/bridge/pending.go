package bridge

import (
	"context"
	"sync"
	"sync/atomic"

	"jsparse/internal/observ"
	"jsparse/internal/source"
)

// Outcome is a delivered result: a JSON tree or a *TaskError.
type Outcome struct {
	Value string
	Err   error
}

// Pending is the caller's handle on a submitted task. Its outcome is
// published exactly once.
type Pending struct {
	id       uint64
	identity source.Identity
	state    atomic.Uint32

	once    sync.Once
	done    chan struct{}
	outcome Outcome
	timings observ.Report
}

func newPending(id uint64, identity source.Identity) *Pending {
	return &Pending{id: id, identity: identity, done: make(chan struct{})}
}

// ID returns the task number, unique within its bridge.
func (p *Pending) ID() uint64 {
	return p.id
}

func (p *Pending) Identity() source.Identity {
	return p.identity
}

// State returns the current lifecycle state.
func (p *Pending) State() State {
	return State(p.state.Load())
}

// Done is closed once the outcome is available.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the outcome is delivered or ctx ends. Ending ctx stops
// the wait only; the task keeps running.
func (p *Pending) Wait(ctx context.Context) (string, error) {
	select {
	case <-p.done:
		return p.outcome.Value, p.outcome.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Await is Wait for callers that must not lose an outcome delivered while
// ctx was ending: a delivered outcome always wins, and the error is ctx's
// only when the task was still undelivered.
func (p *Pending) Await(ctx context.Context) (Outcome, error) {
	_, err := p.Wait(ctx)
	if out, ok := p.Result(); ok {
		return out, nil
	}
	return Outcome{}, err
}

// Result returns the outcome without blocking; ok is false until delivery.
func (p *Pending) Result() (Outcome, bool) {
	select {
	case <-p.done:
		return p.outcome, true
	default:
		return Outcome{}, false
	}
}

// Timings returns the phase report of a delivered task.
func (p *Pending) Timings() observ.Report {
	select {
	case <-p.done:
		return p.timings
	default:
		return observ.Report{}
	}
}

// publish stores the outcome and wakes waiters. Only the first call counts.
func (p *Pending) publish(out Outcome, timings observ.Report) bool {
	published := false
	p.once.Do(func() {
		p.outcome = out
		p.timings = timings
		close(p.done)
		published = true
	})
	return published
}
