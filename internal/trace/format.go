package trace

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format is the encoding of written events.
type Format uint8

const (
	FormatText   Format = iota + 1 // one aligned line per event
	FormatNDJSON                   // one JSON object per line
)

// processStart anchors the relative timestamps of text output.
var processStart = time.Now()

// FormatEvent encodes ev as one newline-terminated line.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonEvent struct {
	Time      string `json:"time"`
	Seq       uint64 `json:"seq"`
	Kind      string `json:"kind"`
	Scope     string `json:"scope"`
	Span      uint64 `json:"span,omitempty"`
	Parent    uint64 `json:"parent,omitempty"`
	Task      uint64 `json:"task,omitempty"`
	Source    string `json:"source,omitempty"`
	Name      string `json:"name"`
	Detail    string `json:"detail,omitempty"`
	ElapsedUS int64  `json:"elapsed_us,omitempty"`
	Load      *Load  `json:"load,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	data, err := json.Marshal(jsonEvent{
		Time:      ev.Time.Format(time.RFC3339Nano),
		Seq:       ev.Seq,
		Kind:      ev.Kind.String(),
		Scope:     ev.Scope.String(),
		Span:      ev.Span,
		Parent:    ev.Parent,
		Task:      ev.Task,
		Source:    ev.Source,
		Name:      ev.Name,
		Detail:    ev.Detail,
		ElapsedUS: ev.Elapsed.Microseconds(),
		Load:      ev.Load,
	})
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

// formatText renders
//
//	[   1.250ms] #3 src/a.js      → parse
//	[   1.900ms] #3 src/a.js        ← parse (nodes=12) 650µs
//	[   2.000ms] heartbeat queued=4 running=8 delivered=20
func formatText(ev *Event) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%9.3fms] ", float64(ev.Time.Sub(processStart).Microseconds())/1000)

	if ev.Kind == KindHeartbeat {
		sb.WriteString("heartbeat")
		if ev.Load != nil {
			fmt.Fprintf(&sb, " queued=%d running=%d delivered=%d", ev.Load.Queued, ev.Load.Running, ev.Load.Delivered)
		}
		sb.WriteByte('\n')
		return []byte(sb.String())
	}

	if ev.Task != 0 {
		fmt.Fprintf(&sb, "#%d %-14s ", ev.Task, ev.Source)
	}
	if ev.Scope == ScopePhase {
		sb.WriteString("  ")
	}
	switch ev.Kind {
	case KindBegin:
		sb.WriteString("→ ")
	case KindEnd:
		sb.WriteString("← ")
	case KindState:
		sb.WriteString("• ")
	case KindNote:
		sb.WriteString("! ")
	}
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(ev.Detail)
		sb.WriteByte(')')
	}
	if ev.Kind == KindEnd {
		sb.WriteByte(' ')
		sb.WriteString(ev.Elapsed.String())
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
