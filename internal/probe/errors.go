package probe

import "errors"

// Kind classifies why a measurement failed.
type Kind string

const (
	KindTimeout           Kind = "timeout"
	KindExternalToolError Kind = "external_tool_error"
	KindUnparsableOutput  Kind = "unparsable_output"
	KindHTTPError         Kind = "http_error"
	KindNetworkError      Kind = "network_error"
	KindResolveError      Kind = "resolve_error"
)

// Error is a failed measurement. Message is meant for direct display.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// KindOf reports the failure kind of err, or "" when err is not a probe failure.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
