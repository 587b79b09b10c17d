package diag

import (
	"fmt"
	"strings"

	"jsparse/internal/source"
)

// HandlerOpts configures one handler scope.
type HandlerOpts struct {
	// MaxDiagnostics bounds the bag; see NewBag.
	MaxDiagnostics int
	// File is used for diagnostics that have no better location.
	File source.FileID
}

// Handler collects the diagnostics of exactly one attempt. It is a Reporter
// and is not safe for concurrent use.
type Handler struct {
	bag   *Bag
	file  source.FileID
	// fatal is set by the first error, whether or not the bag had room.
	fatal bool
}

// Report records a diagnostic. Once the bag is full further diagnostics are
// dropped, except that the attempt's first error is always kept.
func (h *Handler) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	d := Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Primary: primary, Notes: notes,
	}
	if h.bag.Add(d) {
		h.fatal = h.fatal || sev >= SevError
		return
	}
	if sev >= SevError && !h.fatal {
		h.bag.force(d)
		h.fatal = true
	}
}

// HasErrors reports whether an error-severity diagnostic was reported so far.
func (h *Handler) HasErrors() bool {
	return h.fatal
}

// Len returns the number of diagnostics recorded so far.
func (h *Handler) Len() int {
	return h.bag.Len()
}

// SetError is the failure of a handler scope: the attempt's diagnostics,
// sorted and de-duplicated.
type SetError struct {
	Bag *Bag
}

func (e *SetError) Error() string {
	if e == nil || e.Bag == nil || e.Bag.Len() == 0 {
		return "diagnostics reported"
	}
	items := e.Bag.Items()
	first := items[0]
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s: %s", strings.ToLower(first.Severity.String()), first.Code.ID(), first.Message)
	if n := len(items) - 1; n > 0 {
		fmt.Fprintf(&sb, " (and %d more)", n)
	}
	return sb.String()
}

// Diagnostics returns the collected diagnostics.
func (e *SetError) Diagnostics() []Diagnostic {
	if e == nil || e.Bag == nil {
		return nil
	}
	return e.Bag.Items()
}

// TryWithHandler runs fn with a fresh Handler. A panic inside fn is turned
// into an InternalError diagnostic. When fn succeeds and no error was
// reported the collected diagnostics (warnings included) are dropped and the
// value is returned; otherwise the result is a *SetError.
func TryWithHandler[T any](opts HandlerOpts, fn func(*Handler) (T, error)) (result T, err error) {
	h := &Handler{bag: NewBag(opts.MaxDiagnostics), file: opts.File}

	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			h.bag.force(NewError(InternalError, source.Span{File: h.file}, fmt.Sprintf("internal error: %v", r)))
			h.fatal = true
			err = h.fail()
		}
	}()

	v, fnErr := fn(h)
	if fnErr == nil && !h.fatal {
		return v, nil
	}
	if fnErr != nil && !h.fatal {
		h.bag.force(NewError(InternalError, source.Span{File: h.file}, fnErr.Error()))
		h.fatal = true
	}
	var zero T
	return zero, h.fail()
}

func (h *Handler) fail() *SetError {
	h.bag.Sort()
	h.bag.Dedup()
	return &SetError{Bag: h.bag}
}
