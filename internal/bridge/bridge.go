// Package bridge turns parse requests into background tasks. Submit returns
// at once with a Pending; a worker registers the source, parses it inside a
// fresh diagnostic scope and delivers either the JSON tree or a *TaskError,
// exactly once.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"jsparse/internal/cache"
	"jsparse/internal/diag"
	"jsparse/internal/diagfmt"
	"jsparse/internal/driver"
	"jsparse/internal/grammar"
	"jsparse/internal/observ"
	"jsparse/internal/options"
	"jsparse/internal/source"
	"jsparse/internal/trace"
)

// Options configures a Bridge. Zero values select the defaults.
type Options struct {
	// Concurrency bounds the number of running tasks; GOMAXPROCS when <= 0.
	Concurrency int
	// Registry receives every submitted source; source.Default() when nil.
	Registry *source.Registry
	// Engine parses sources; grammar.NewTreeSitter() when nil.
	Engine grammar.Engine
	// MaxDiagnostics bounds the diagnostics of one attempt.
	MaxDiagnostics int
	Tracer         trace.Tracer
	Progress       ProgressSink
	// Cache stores successful trees; nil disables caching.
	Cache *cache.Cache
	// RetainSources keeps the registered text after delivery so callers can
	// render source snippets of the returned diagnostics.
	RetainSources bool
}

// Bridge schedules parse tasks on a bounded pool of goroutines.
type Bridge struct {
	registry       *source.Registry
	engine         grammar.Engine
	engineName     string
	maxDiagnostics int
	tracer         trace.Tracer
	progress       ProgressSink
	cache          *cache.Cache
	retain         bool

	sem *semaphore.Weighted
	wg  sync.WaitGroup
	ids atomic.Uint64

	queued    atomic.Int64
	running   atomic.Int64
	delivered atomic.Int64
}

// task is the worker-side state of one submission.
type task struct {
	pending *Pending
	text    string
	opts    options.ParseOptions
	created time.Time
	timer   *observ.Timer
	trace   *trace.Task

	file       source.FileID
	registered bool
}

func New(opts Options) *Bridge {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}
	if opts.Registry == nil {
		opts.Registry = source.Default()
	}
	if opts.Engine == nil {
		opts.Engine = grammar.NewTreeSitter()
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	return &Bridge{
		registry:       opts.Registry,
		engine:         opts.Engine,
		engineName:     grammar.NameOf(opts.Engine),
		maxDiagnostics: opts.MaxDiagnostics,
		tracer:         opts.Tracer,
		progress:       opts.Progress,
		cache:          opts.Cache,
		retain:         opts.RetainSources,
		sem:            semaphore.NewWeighted(int64(opts.Concurrency)),
	}
}

// Registry returns the registry sources are registered in.
func (b *Bridge) Registry() *source.Registry {
	return b.registry
}

// Submit creates a task for src. raw is decoded before Submit returns and is
// not retained; a rejected buffer is delivered as a KindConfigDecode error
// without involving a worker. filename nil means an anonymous source.
func (b *Bridge) Submit(src string, raw []byte, filename *string) *Pending {
	t := &task{
		pending: newPending(b.ids.Add(1), source.IdentityFor(filename)),
		text:    src,
		created: time.Now(),
		timer:   observ.NewTimer(),
	}
	t.trace = trace.StartTask(b.tracer, t.pending.id, t.pending.identity.String())
	t.trace.State(StateCreated.String())
	b.emit(t, StateCreated, nil)

	idx := t.timer.Begin("decode")
	opts, err := options.Decode(raw)
	t.timer.End(idx, "")
	if err != nil {
		b.finish(t, StateCreated, "", &TaskError{Kind: KindConfigDecode, Message: err.Error(), Err: err})
		return t.pending
	}
	t.opts = opts
	t.trace.Note("options", opts.String())

	b.transition(t, StateCreated, StateScheduled, nil)
	b.wg.Add(1)
	go b.run(t)
	return t.pending
}

// Load samples the number of tasks waiting for a worker, running and
// delivered so far.
func (b *Bridge) Load() trace.Load {
	return trace.Load{
		Queued:    b.queued.Load(),
		Running:   b.running.Load(),
		Delivered: b.delivered.Load(),
	}
}

// Wait blocks until every submitted task has been delivered.
func (b *Bridge) Wait() {
	b.wg.Wait()
}

func (b *Bridge) run(t *task) {
	defer b.wg.Done()

	queued := time.Now()
	// Acquire only fails when its context ends; scheduled tasks are never
	// cancelled.
	_ = b.sem.Acquire(context.Background(), 1)
	defer b.sem.Release(1)
	t.timer.Record("queue", queued, time.Since(queued))

	b.transition(t, StateScheduled, StateRunning, nil)
	defer func() {
		if r := recover(); r != nil {
			if t.pending.State() != StateRunning {
				panic(r)
			}
			msg := fmt.Sprintf("internal error: %v", r)
			b.finish(t, StateRunning, "", &TaskError{Kind: KindInternal, Message: msg, Err: errors.New(msg)})
		}
	}()

	tree, terr := b.execute(t)
	b.finish(t, StateRunning, tree, terr)
}

func (b *Bridge) execute(t *task) (string, *TaskError) {
	ctx := trace.WithTask(context.Background(), t.trace)

	idx := t.timer.Begin("register")
	h := b.registry.Register(t.pending.identity, t.text)
	t.text = ""
	t.file, t.registered = h.ID, true
	t.timer.End(idx, "")
	file := b.registry.Get(h.ID)

	cacheable := b.cache != nil && b.engineName != ""
	var key cache.Key
	if cacheable {
		key = cache.KeyFor(file.Hash, t.opts.CacheKey(), b.engineName)
		idx = t.timer.Begin("cache")
		tree, ok, err := b.cache.Get(key, b.engineName)
		switch {
		case err != nil:
			t.timer.End(idx, "error")
			t.trace.Note("cache-error", err.Error())
		case ok:
			t.timer.End(idx, "hit")
			return tree, nil
		default:
			t.timer.End(idx, "miss")
		}
	}

	idx = t.timer.Begin("parse")
	prog, err := driver.Execute(ctx, b.engine, file, t.opts, b.maxDiagnostics)
	t.timer.End(idx, "")
	if err != nil {
		return "", b.parseFailure(err)
	}

	idx = t.timer.Begin("encode")
	tree, err := diagfmt.EncodeProgram(prog)
	t.timer.End(idx, "")
	if err != nil {
		return "", &TaskError{Kind: KindEncode, Message: err.Error(), Err: err}
	}

	if cacheable {
		if err := b.cache.Put(key, b.engineName, tree); err != nil {
			t.trace.Note("cache-error", err.Error())
		}
	}
	return tree, nil
}

// parseFailure renders the diagnostics while the source text is still
// registered.
func (b *Bridge) parseFailure(err error) *TaskError {
	var setErr *diag.SetError
	if !errors.As(err, &setErr) {
		return &TaskError{Kind: KindInternal, Message: err.Error(), Err: err}
	}
	kind := KindParseDiagnostic
	for _, d := range setErr.Diagnostics() {
		if d.Code == diag.InternalError {
			kind = KindInternal
			break
		}
	}
	return &TaskError{Kind: kind, Message: diagfmt.Summary(setErr.Bag, b.registry), Err: err}
}

// finish records the outcome and delivers it.
func (b *Bridge) finish(t *task, from State, tree string, terr *TaskError) {
	to := StateSucceeded
	if terr != nil {
		to = StateFailed
	}
	b.transition(t, from, to, terr)

	if t.registered && !b.retain {
		b.registry.Release(t.file)
	}
	out := Outcome{Value: tree}
	detail := "ok"
	if terr != nil {
		out.Err = terr
		detail = terr.Kind.String()
	}
	t.trace.End(detail)

	b.transition(t, to, StateDelivered, terr)
	t.pending.publish(out, t.timer.Report())
}

// transition moves t along one lifecycle edge. Anything else is a bug in the
// bridge and panics.
func (b *Bridge) transition(t *task, from, to State, terr *TaskError) {
	if !from.canMoveTo(to) || !t.pending.state.CompareAndSwap(uint32(from), uint32(to)) {
		panic(fmt.Sprintf("bridge: illegal transition %s -> %s for task %d (state %s)",
			from, to, t.pending.id, t.pending.State()))
	}
	switch to {
	case StateScheduled:
		b.queued.Add(1)
	case StateRunning:
		b.queued.Add(-1)
		b.running.Add(1)
	case StateDelivered:
		b.delivered.Add(1)
	default:
		if from == StateRunning {
			b.running.Add(-1)
		}
	}
	t.trace.State(to.String())
	b.emit(t, to, terr)
}

func (b *Bridge) emit(t *task, state State, terr *TaskError) {
	if b.progress == nil {
		return
	}
	evt := Event{
		Task:    t.pending.id,
		Source:  t.pending.identity.String(),
		State:   state,
		Status:  state.Status(),
		Elapsed: time.Since(t.created),
	}
	if terr != nil {
		evt.Err = terr
		evt.Status = StatusError
	}
	b.progress.OnEvent(evt)
}
