// Package diag defines the diagnostic model shared by the parse phases.
//
// Diagnostic is the central record: Severity, Code (compact numeric
// identifier with a stable string form, see codes.go), Message, a Primary
// source.Span and optional Notes.
//
// Producers emit through a Reporter. The grammar engine receives the
// Handler of its attempt; TryWithHandler scopes that handler to a single
// call so diagnostics never leak between tasks. A failed scope yields a
// *SetError whose Bag is sorted and de-duplicated.
//
// Package diag does not perform formatting or IO; rendering lives in
// internal/diagfmt.
package diag
