package ui

import (
	"errors"
	"strings"
	"testing"

	"jsparse/internal/bridge"
)

func send(m *progressModel, source string, state bridge.State, failed bool) {
	ev := bridge.Event{Source: source, State: state, Status: state.Status()}
	if failed {
		ev.Status = bridge.StatusError
		ev.Err = errors.New("boom")
	}
	m.Update(eventMsg(ev))
}

func TestProgressTracksTaskStates(t *testing.T) {
	events := make(chan bridge.Event)
	m := NewProgressModel("parsing", []string{"a.js", "b.ts"}, events).(*progressModel)

	send(m, "a.js", bridge.StateScheduled, false)
	send(m, "a.js", bridge.StateRunning, false)
	if got := m.items[0].label(); got != "parsing" {
		t.Fatalf("a.js label = %q", got)
	}

	send(m, "a.js", bridge.StateSucceeded, false)
	send(m, "a.js", bridge.StateDelivered, false)
	send(m, "b.ts", bridge.StateFailed, true)
	send(m, "b.ts", bridge.StateDelivered, true)
	send(m, "unknown.js", bridge.StateDelivered, false)

	if got := m.items[0].label(); got != "done" {
		t.Errorf("a.js label = %q", got)
	}
	if got := m.items[1].label(); got != "error" {
		t.Errorf("b.ts label = %q", got)
	}
	if m.failed != 1 {
		t.Errorf("failed = %d, want 1", m.failed)
	}
	if m.delivered() != 2 {
		t.Errorf("delivered = %d, want 2", m.delivered())
	}

	view := m.View()
	for _, want := range []string{"parsing (2/2, 1 failed)", "a.js", "b.ts", "error"} {
		if !strings.Contains(view, want) {
			t.Errorf("view misses %q:\n%s", want, view)
		}
	}
}

func TestProgressQuitsWhenEventsClose(t *testing.T) {
	events := make(chan bridge.Event)
	close(events)
	m := NewProgressModel("parsing", []string{"a.js"}, events).(*progressModel)

	msg := m.listenForEvent()()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("msg = %T, want doneMsg", msg)
	}
	_, cmd := m.Update(msg)
	if !m.done || cmd == nil {
		t.Fatalf("model did not quit: done=%v", m.done)
	}
	if !strings.HasPrefix(stripANSI(m.View()), "done: parsing") {
		t.Errorf("view = %q", m.View())
	}
}

func TestTruncate(t *testing.T) {
	got := truncate("src/components/very/long/path.tsx", 12)
	if !strings.HasPrefix(got, "src/") || !strings.HasSuffix(got, "...") || len(got) > 12 {
		t.Errorf("truncate = %q", got)
	}
	if got = truncate("a.js", 12); got != "a.js" {
		t.Errorf("truncate = %q", got)
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
