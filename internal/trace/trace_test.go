package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestLevelRecords(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeBridge, false},
		{LevelTask, ScopeBridge, true},
		{LevelTask, ScopeTask, true},
		{LevelTask, ScopePhase, false},
		{LevelPhase, ScopePhase, true},
	}
	for _, tc := range cases {
		if got := tc.level.Records(tc.scope); got != tc.want {
			t.Errorf("%s.Records(%s) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestTaskEventsCarryTaskIdentity(t *testing.T) {
	ring := NewRing(16, LevelPhase)
	tt := StartTask(ring, 7, "src/a.js")
	tt.State("running")
	p := tt.Phase("execute")
	p.End("nodes=3")
	tt.Note("cache-error", "disk full")
	tt.End("ok")

	events := ring.Events()
	if len(events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(events))
	}
	for i, ev := range events {
		if ev.Task != 7 || ev.Source != "src/a.js" {
			t.Errorf("event %d lost its task: %+v", i, ev)
		}
		if i > 0 && ev.Seq <= events[i-1].Seq {
			t.Errorf("sequence not increasing at %d", i)
		}
	}
	if events[1].Kind != KindState || events[1].Name != "running" {
		t.Errorf("state event = %+v", events[1])
	}
	if events[2].Parent != events[0].Span || events[3].Span != events[2].Span {
		t.Errorf("phase not nested in task: %+v / %+v", events[2], events[3])
	}
	if events[3].Detail != "nodes=3" || events[5].Detail != "ok" || events[5].Kind != KindEnd {
		t.Errorf("unexpected end events %+v %+v", events[3], events[5])
	}
}

func TestTaskLevelDropsPhases(t *testing.T) {
	ring := NewRing(8, LevelTask)
	tt := StartTask(ring, 1, "a.js")
	if p := tt.Phase("execute"); p != nil {
		t.Fatal("phase started at LevelTask")
	}
	tt.End("ok")
	if n := len(ring.Events()); n != 2 {
		t.Fatalf("expected begin and end only, got %d", n)
	}
}

func TestNilTaskIsInert(t *testing.T) {
	tt := StartTask(Nop, 1, "a.js")
	if tt != nil {
		t.Fatal("Nop must not start tasks")
	}
	tt.State("running")
	tt.Note("options", "")
	tt.Phase("execute").End("")
	if d := tt.End("ok"); d != 0 || tt.ID() != 0 {
		t.Fatal("nil task reported data")
	}
}

func TestRingKeepsNewest(t *testing.T) {
	ring := NewRing(3, LevelTask)
	tt := StartTask(ring, 1, "a.js")
	for _, s := range []string{"scheduled", "running", "succeeded", "delivered"} {
		tt.State(s)
	}
	events := ring.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 retained events, got %d", len(events))
	}
	if events[0].Name != "running" || events[2].Name != "delivered" {
		t.Fatalf("wrong window: %s..%s", events[0].Name, events[2].Name)
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	st := NewStream(&buf, LevelTask, FormatNDJSON)
	StartTask(st, 4, "b.ts").End("parse-diagnostic")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if ev["kind"] != "end" || ev["detail"] != "parse-diagnostic" || ev["task"] != float64(4) || ev["source"] != "b.ts" {
		t.Fatalf("unexpected event %v", ev)
	}
}

func TestNewRingWritesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.ndjson")
	tr, err := New(Config{Level: LevelTask, Mode: ModeRing, Path: path, RingSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	tt := StartTask(tr, 1, "a.js")
	tt.State("running")
	tt.State("delivered")
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], `"delivered"`) {
		t.Fatalf("unexpected dump:\n%s", data)
	}
}

func TestHeartbeatSamplesLoad(t *testing.T) {
	ring := NewRing(64, LevelTask)
	var calls atomic.Int64
	hb := StartHeartbeat(ring, time.Millisecond, func() Load {
		n := calls.Add(1)
		return Load{Queued: 2, Running: 1, Delivered: n}
	})
	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	hb.Stop()
	hb.Stop()

	events := ring.Events()
	if len(events) == 0 {
		t.Fatal("no heartbeat recorded")
	}
	ev := events[0]
	if ev.Kind != KindHeartbeat || ev.Load == nil || ev.Load.Queued != 2 || ev.Load.Running != 1 {
		t.Fatalf("unexpected heartbeat %+v", ev)
	}
	if line := string(FormatEvent(&ev, FormatText)); !strings.Contains(line, "queued=2 running=1") {
		t.Errorf("text heartbeat = %q", line)
	}
}

func TestHeartbeatDisabled(t *testing.T) {
	load := func() Load { return Load{} }
	if StartHeartbeat(Nop, time.Millisecond, load) != nil {
		t.Error("heartbeat started on Nop")
	}
	if StartHeartbeat(NewRing(1, LevelTask), 0, load) != nil {
		t.Error("heartbeat started with zero interval")
	}
	var hb *Heartbeat
	hb.Stop()
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatal("missing tracer must fall back to Nop")
	}
	if TaskFrom(context.Background()) != nil {
		t.Fatal("missing task must be nil")
	}
	ring := NewRing(4, LevelTask)
	ctx := NewContext(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatal("tracer not propagated")
	}
	tt := StartTask(ring, 9, "c.js")
	if TaskFrom(WithTask(ctx, tt)).ID() != 9 {
		t.Fatal("task not propagated")
	}
}

func TestParseHelpers(t *testing.T) {
	if l, err := ParseLevel("PHASE"); err != nil || l != LevelPhase {
		t.Errorf("ParseLevel = %v, %v", l, err)
	}
	if _, err := ParseLevel("debug"); err == nil {
		t.Error("expected error")
	}
	if m, err := ParseMode("ring"); err != nil || m != ModeRing {
		t.Errorf("ParseMode = %v, %v", m, err)
	}
	if _, err := ParseMode("both"); err == nil {
		t.Error("expected error")
	}
}
