package trace

import (
	"sync"
	"time"
)

// Heartbeat samples the bridge load at a fixed interval. Heartbeats that keep
// coming while no task ends point at a stuck worker.
type Heartbeat struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// StartHeartbeat emits a KindHeartbeat event carrying load() every interval.
// It returns nil, which Stop accepts, when there is nothing to record.
func StartHeartbeat(t Tracer, interval time.Duration, load func() Load) *Heartbeat {
	if t == nil || !t.Level().Records(ScopeBridge) || interval <= 0 || load == nil {
		return nil
	}
	h := &Heartbeat{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(h.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l := load()
				t.Emit(Event{Time: time.Now(), Kind: KindHeartbeat, Scope: ScopeBridge, Name: "heartbeat", Load: &l})
			case <-h.stop:
				return
			}
		}
	}()
	return h
}

// Stop ends the heartbeat and waits for its goroutine.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
