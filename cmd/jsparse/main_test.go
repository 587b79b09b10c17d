package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	stopProfiling()
	closeTracing()
	return stdout.String(), stderr.String(), err
}

func writeSource(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestParseSingleFileJSON(t *testing.T) {
	path := writeSource(t, t.TempDir(), "ok.js", "const x = 1;")

	stdout, stderr, err := runCLI(t, "", "parse", "--ui", "off", "--color", "off", path)
	if err != nil {
		t.Fatalf("parse failed: %v\n%s", err, stderr)
	}
	if !strings.HasPrefix(stdout, `{"type":"Module","span":{"start":0,"end":12}`) {
		t.Fatalf("unexpected tree: %s", stdout)
	}
	if !json.Valid([]byte(stdout)) {
		t.Fatalf("output is not JSON: %s", stdout)
	}
}

func TestParseSyntaxErrorReportsDiagnostics(t *testing.T) {
	path := writeSource(t, t.TempDir(), "bad.js", "const = ;")

	stdout, stderr, err := runCLI(t, "", "parse", "--ui", "off", "--color", "off", "--format", "pretty", path)
	if err == nil {
		t.Fatal("expected failure")
	}
	if err.Error() != "1 of 1 files failed" {
		t.Errorf("err = %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if !strings.Contains(stderr, "bad.js:1:") || !strings.Contains(stderr, "error[") {
		t.Errorf("stderr misses the diagnostic:\n%s", stderr)
	}
}

func TestParseDirectoryJSONMap(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "a.js", "let a = 1;")
	bad := writeSource(t, dir, "b.ts", "let = ;")
	writeSource(t, dir, "notes.txt", "ignored")

	stdout, _, err := runCLI(t, "", "parse", "--ui", "off", "--color", "off", "--jobs", "2", dir)
	if err == nil || err.Error() != "1 of 2 files failed" {
		t.Fatalf("err = %v", err)
	}
	var trees map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stdout), &trees); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}
	if len(trees) != 2 {
		t.Fatalf("got %d entries, want 2", len(trees))
	}
	if string(trees[bad]) != "null" {
		t.Errorf("failed file = %s, want null", trees[bad])
	}
	if !bytes.HasPrefix(trees[good], []byte(`{"type":"Module"`)) {
		t.Errorf("good file = %s", trees[good])
	}
}

func TestParseStdin(t *testing.T) {
	stdout, stderr, err := runCLI(t, "let a;", "parse", "--script", "-")
	if err != nil {
		t.Fatalf("parse failed: %v\n%s", err, stderr)
	}
	if !strings.HasPrefix(stdout, `{"type":"Script"`) {
		t.Fatalf("unexpected tree: %s", stdout)
	}
}

func TestParseRawConfig(t *testing.T) {
	stdout, stderr, err := runCLI(t, "let a: number = 1;", "parse", "--config-json", `{"syntax":"typescript"}`, "-")
	if err != nil {
		t.Fatalf("parse failed: %v\n%s", err, stderr)
	}
	if !strings.HasPrefix(stdout, `{"type":"Module"`) {
		t.Fatalf("unexpected tree: %s", stdout)
	}

	_, stderr, err = runCLI(t, "let a;", "parse", "--config-json", `{"target":"es1999"}`, "-")
	if err == nil {
		t.Fatal("expected a decode failure")
	}
	if !strings.Contains(stderr, "invalid parse configuration") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestParseTreeAndSummary(t *testing.T) {
	path := writeSource(t, t.TempDir(), "ok.js", "const x = 1;")

	stdout, stderr, err := runCLI(t, "", "parse", "--ui", "off", "--format", "tree", path)
	if err != nil {
		t.Fatalf("tree failed: %v\n%s", err, stderr)
	}
	if !strings.HasPrefix(stdout, "Module (") {
		t.Errorf("tree output = %q", stdout)
	}

	stdout, stderr, err = runCLI(t, "", "parse", "--ui", "off", "--format", "summary", path)
	if err != nil {
		t.Fatalf("summary failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "ok   "+path+" (Module, ") || !strings.Contains(stdout, "1 parsed, 0 failed") {
		t.Errorf("summary output = %q", stdout)
	}
}

func TestParseTimings(t *testing.T) {
	path := writeSource(t, t.TempDir(), "ok.js", "const x = 1;")

	_, stderr, err := runCLI(t, "", "parse", "--ui", "off", "--timings", path)
	if err != nil {
		t.Fatalf("parse failed: %v\n%s", err, stderr)
	}
	for _, want := range []string{"timings ", "parse", "total"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("timings miss %q:\n%s", want, stderr)
		}
	}
}

func TestParseWithCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	path := writeSource(t, t.TempDir(), "ok.js", "const x = 1;")

	first, _, err := runCLI(t, "", "parse", "--ui", "off", "--cache", path)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, stderr, err := runCLI(t, "", "parse", "--ui", "off", "--cache", "--timings", path)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first != second {
		t.Errorf("cached tree differs:\n%s\n%s", first, second)
	}
	if !strings.Contains(stderr, "(hit)") {
		t.Errorf("second run did not hit the cache:\n%s", stderr)
	}

	stdout, _, err := runCLI(t, "", "cache", "clean")
	if err != nil {
		t.Fatalf("cache clean: %v", err)
	}
	if !strings.HasPrefix(stdout, "removed ") {
		t.Errorf("cache clean output = %q", stdout)
	}
}

func TestParseRejectsBadFlags(t *testing.T) {
	path := writeSource(t, t.TempDir(), "ok.js", "1;")

	if _, _, err := runCLI(t, "", "parse", "--format", "xml", path); err == nil {
		t.Error("expected an invalid format error")
	}
	if _, _, err := runCLI(t, "", "parse", "--ui", "off", "--target", "es1999", path); err == nil {
		t.Error("expected an invalid target error")
	}
	if _, _, err := runCLI(t, "", "parse", "--trace-level", "loud", path); err == nil {
		t.Error("expected an invalid trace level error")
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := runCLI(t, "", "version", "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Tool != "jsparse" || payload.Version == "" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "ON": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Errorf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("maybe"); err == nil {
		t.Error("expected an error")
	}
	if shouldUseTUI(uiModeOff, 10) || !shouldUseTUI(uiModeOn, 1) {
		t.Error("explicit modes ignored")
	}
}

func TestTraceAndProfileFlags(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "ok.js", "const x = 1;")
	traceOut := filepath.Join(dir, "trace.ndjson")
	cpuOut := filepath.Join(dir, "cpu.pprof")

	_, stderr, err := runCLI(t, "", "parse", "--ui", "off", "--trace", traceOut, "--cpu-profile", cpuOut, path)
	if err != nil {
		t.Fatalf("parse failed: %v\n%s", err, stderr)
	}
	data, err := os.ReadFile(traceOut)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	for _, want := range []string{`"task"`, `"delivered"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("trace misses %s:\n%s", want, data)
		}
	}
	if info, err := os.Stat(cpuOut); err != nil || info.Size() == 0 {
		t.Errorf("cpu profile not written: %v", err)
	}
}

func TestTraceRingMode(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "ok.js", "let y = 2;")
	traceOut := filepath.Join(dir, "ring.ndjson")

	_, stderr, err := runCLI(t, "", "parse", "--ui", "off", "--trace", traceOut,
		"--trace-mode", "ring", "--trace-level", "phase", "--trace-heartbeat", "1h", path)
	if err != nil {
		t.Fatalf("parse failed: %v\n%s", err, stderr)
	}
	data, err := os.ReadFile(traceOut)
	if err != nil {
		t.Fatalf("read trace: %v", err)
	}
	for _, want := range []string{`"execute"`, `ok.js"`, `"delivered"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("trace misses %s:\n%s", want, data)
		}
	}

	_, _, err = runCLI(t, "", "parse", "--ui", "off", "--trace", traceOut, "--trace-mode", "both", path)
	if err == nil {
		t.Error("unknown trace mode accepted")
	}
}
