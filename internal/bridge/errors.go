package bridge

// Kind classifies a task failure.
type Kind uint8

const (
	// KindConfigDecode: the configuration buffer was rejected before any
	// worker was involved.
	KindConfigDecode Kind = iota + 1
	// KindParseDiagnostic: the source has syntax errors.
	KindParseDiagnostic
	// KindEncode: the tree could not be serialized.
	KindEncode
	// KindInternal: the engine or the bridge failed unexpectedly.
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindConfigDecode:
		return "config-decode"
	case KindParseDiagnostic:
		return "parse-diagnostic"
	case KindEncode:
		return "encode"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// TaskError is the single error shape a waiter receives. Message is ready
// for display: the decoder message or the rendered diagnostic summary.
type TaskError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *TaskError) Error() string {
	return e.Message
}

// Unwrap exposes *options.DecodeError, *diag.SetError or *diagfmt.EncodeError.
func (e *TaskError) Unwrap() error {
	return e.Err
}
