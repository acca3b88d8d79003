// ABOUTME: Result is the tri-field envelope (success/output/error) returned by
// ABOUTME: every tool invocation, plus the failure-kind classification.

package tool

import "fmt"

// Kind classifies a failure (or partial success) for callers that need to
// branch on the condition rather than parse message text. It never appears
// in the serialized envelope.
type Kind int

const (
	KindNone Kind = iota
	KindInvalidAction
	KindMissingParameter
	KindNotOpen
	KindSessionClosed
	KindTimedOut
	KindNotFound
	KindEncodingFailure
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInvalidAction:
		return "invalid_action"
	case KindMissingParameter:
		return "missing_parameter"
	case KindNotOpen:
		return "not_open"
	case KindSessionClosed:
		return "session_closed"
	case KindTimedOut:
		return "timed_out"
	case KindNotFound:
		return "not_found"
	case KindEncodingFailure:
		return "encoding_failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of a single tool invocation. Exactly one of
// Output/Error carries the primary payload depending on Success. The JSON
// shape is the host framework's integration contract: these three fields,
// nothing else.
type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error"`

	kind Kind
}

// Ok returns a successful Result carrying output verbatim.
func Ok(output string) Result {
	return Result{Success: true, Output: output}
}

// Okf returns a successful Result with formatted output.
func Okf(format string, args ...any) Result {
	return Result{Success: true, Output: fmt.Sprintf(format, args...)}
}

// Fail returns a failed Result carrying the message verbatim.
func Fail(message string) Result {
	return Result{Success: false, Error: message}
}

// Failf returns a failed Result with a formatted message.
func Failf(format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...)}
}

// FailWith returns a failed Result classified under kind.
func FailWith(kind Kind, format string, args ...any) Result {
	return Result{Success: false, Error: fmt.Sprintf(format, args...), kind: kind}
}

// WithKind returns a copy of r classified under kind. Used for partial
// successes, e.g. a screenshot whose file was written but whose base64
// encoding failed is Success=true with KindEncodingFailure.
func (r Result) WithKind(kind Kind) Result {
	r.kind = kind
	return r
}

// Kind reports the failure classification, KindNone for plain successes.
func (r Result) Kind() Kind {
	return r.kind
}

// String renders the envelope the way hosts consume it: the output on
// success, "Error: {error}" on failure.
func (r Result) String() string {
	if r.Success {
		return r.Output
	}
	return "Error: " + r.Error
}
