package diag

import (
	"errors"
	"strings"
	"testing"

	"jsparse/internal/source"
)

func TestTryWithHandlerSuccessDropsWarnings(t *testing.T) {
	v, err := TryWithHandler(HandlerOpts{}, func(h *Handler) (int, error) {
		ReportWarning(h, SynEarlyError, source.Span{Start: 0, End: 1}, "slow path").Emit()
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Fatalf("value = %d, want 42", v)
	}
}

func TestTryWithHandlerErrorDiagnostic(t *testing.T) {
	v, err := TryWithHandler(HandlerOpts{File: 3}, func(h *Handler) (string, error) {
		ReportError(h, SynUnexpectedToken, source.Span{File: 3, Start: 6, End: 7}, "unexpected '='").Emit()
		ReportError(h, SynExpectToken, source.Span{File: 3, Start: 0, End: 5}, "expected identifier").Emit()
		ReportError(h, SynUnexpectedToken, source.Span{File: 3, Start: 6, End: 7}, "unexpected '='").Emit()
		return "tree", nil
	})
	if v != "" {
		t.Errorf("value must be zero on failure, got %q", v)
	}
	var setErr *SetError
	if !errors.As(err, &setErr) {
		t.Fatalf("expected *SetError, got %T", err)
	}
	items := setErr.Diagnostics()
	if len(items) != 2 {
		t.Fatalf("expected 2 diagnostics after dedup, got %d", len(items))
	}
	if items[0].Code != SynExpectToken || items[1].Code != SynUnexpectedToken {
		t.Errorf("diagnostics not sorted by position: %+v", items)
	}
	if !strings.Contains(err.Error(), "SYN2002") || !strings.Contains(err.Error(), "and 1 more") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestTryWithHandlerRecoversPanic(t *testing.T) {
	_, err := TryWithHandler(HandlerOpts{MaxDiagnostics: 1, File: 1}, func(h *Handler) (int, error) {
		ReportError(h, SynUnexpectedToken, source.Span{File: 1, Start: 2, End: 3}, "first").Emit()
		panic("engine exploded")
	})
	var setErr *SetError
	if !errors.As(err, &setErr) {
		t.Fatalf("expected *SetError, got %T", err)
	}
	found := false
	for _, d := range setErr.Diagnostics() {
		if d.Code == InternalError && strings.Contains(d.Message, "engine exploded") {
			found = true
		}
	}
	if !found {
		t.Fatalf("internal error diagnostic missing: %+v", setErr.Diagnostics())
	}
}

func TestTryWithHandlerPlainError(t *testing.T) {
	_, err := TryWithHandler(HandlerOpts{}, func(h *Handler) (int, error) {
		return 0, errors.New("engine unavailable")
	})
	var setErr *SetError
	if !errors.As(err, &setErr) {
		t.Fatalf("expected *SetError, got %T", err)
	}
	items := setErr.Diagnostics()
	if len(items) != 1 || items[0].Code != InternalError || items[0].Message != "engine unavailable" {
		t.Fatalf("unexpected diagnostics: %+v", items)
	}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	for i := range 3 {
		ok := b.Add(NewError(SynUnexpectedToken, source.Span{Start: uint32(i)}, "x"))
		if want := i < 2; ok != want {
			t.Errorf("Add #%d = %v, want %v", i, ok, want)
		}
	}
	if b.Len() != 2 {
		t.Fatalf("Len = %d", b.Len())
	}
	if NewBag(0).Cap() != DefaultMaxDiagnostics {
		t.Errorf("default cap = %d", NewBag(0).Cap())
	}
	if NewBag(1 << 20).Cap() != 65535 {
		t.Error("oversized limit must clamp")
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		SynUnexpectedToken: "SYN2001",
		SynEarlyError:      "SYN2006",
		InternalError:      "INT9001",
		UnknownCode:        "E0000",
	}
	for c, want := range cases {
		if got := c.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", c, got, want)
		}
	}
	if Code(4242).Title() != "Unknown error" {
		t.Error("unknown codes must fall back to the unknown title")
	}
}

func TestTryWithHandlerKeepsErrorPastFullBag(t *testing.T) {
	v, err := TryWithHandler(HandlerOpts{MaxDiagnostics: 2, File: 1}, func(h *Handler) (string, error) {
		ReportWarning(h, SynEarlyError, source.Span{File: 1, Start: 0, End: 1}, "first warning").Emit()
		ReportWarning(h, SynEarlyError, source.Span{File: 1, Start: 1, End: 2}, "second warning").Emit()
		if h.HasErrors() {
			t.Error("warnings must not count as errors")
		}
		ReportError(h, SynUnexpectedToken, source.Span{File: 1, Start: 4, End: 5}, "unexpected ';'").Emit()
		ReportError(h, SynUnexpectedToken, source.Span{File: 1, Start: 6, End: 7}, "unexpected ')'").Emit()
		if !h.HasErrors() {
			t.Error("error reported into a full bag was lost")
		}
		return "tree", nil
	})
	if v != "" {
		t.Errorf("value must be zero on failure, got %q", v)
	}
	var setErr *SetError
	if !errors.As(err, &setErr) {
		t.Fatalf("expected *SetError, got %T (%v)", err, err)
	}
	items := setErr.Diagnostics()
	if len(items) != 3 {
		t.Fatalf("expected the two warnings plus the first error, got %d: %+v", len(items), items)
	}
	if items[2].Message != "unexpected ';'" {
		t.Errorf("kept the wrong error: %+v", items[2])
	}
}
