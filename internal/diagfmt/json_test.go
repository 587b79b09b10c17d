package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"jsparse/internal/diag"
	"jsparse/internal/source"
)

func TestJSONBasic(t *testing.T) {
	reg := source.NewRegistry()
	h := reg.Register(source.Named("/work/src/test.js"), "function f() {\n  let x = \"unterminated\n}")

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SynUnexpectedToken, source.Span{File: h.ID, Start: 25, End: 37}, "unexpected string").
		WithNote(source.Span{File: h.ID, Start: 0, End: 8}, "in this function"))

	var buf bytes.Buffer
	err := JSON(&buf, bag, reg, JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
	})
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got %+v", output)
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "SYN2001" {
		t.Errorf("unexpected severity/code %s %s", d.Severity, d.Code)
	}
	if d.Location.File != "test.js" {
		t.Errorf("Expected file=test.js, got %s", d.Location.File)
	}
	if d.Location.StartByte != 25 || d.Location.EndByte != 37 {
		t.Errorf("unexpected byte range %d-%d", d.Location.StartByte, d.Location.EndByte)
	}
	if d.Location.StartLine != 2 || d.Location.StartCol != 11 {
		t.Errorf("unexpected position %d:%d", d.Location.StartLine, d.Location.StartCol)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "in this function" {
		t.Errorf("unexpected notes %+v", d.Notes)
	}
}

func TestJSONMaxAndPathModes(t *testing.T) {
	reg := source.NewRegistry()
	h := reg.Register(source.Named("/work/src/a.js"), "abc")
	bag := diag.NewBag(10)
	for i := range 3 {
		bag.Add(diag.NewError(diag.SynEarlyError, source.Span{File: h.ID, Start: uint32(i), End: uint32(i + 1)}, "x"))
	}

	out := BuildDiagnosticsOutput(bag, reg, JSONOpts{Max: 2})
	if out.Count != 2 {
		t.Fatalf("Max not applied: %d", out.Count)
	}
	if out.Diagnostics[0].Location.File != "/work/src/a.js" {
		t.Errorf("auto path = %s", out.Diagnostics[0].Location.File)
	}
	if out.Diagnostics[0].Location.StartLine != 0 {
		t.Error("positions must be omitted unless requested")
	}

	rel := BuildDiagnosticsOutput(bag, reg, JSONOpts{PathMode: PathModeRelative, BaseDir: "/work"})
	if got := rel.Diagnostics[0].Location.File; got != "src/a.js" {
		t.Errorf("relative path = %s", got)
	}
}
