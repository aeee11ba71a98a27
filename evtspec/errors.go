package evtspec

import (
	"errors"
	"fmt"
)

// ErrorKind classifies the errors the logging runtime returns, per the error
// handling design: local recovery happens at config/attach time, so the
// emission hot path itself has no recoverable errors.
type ErrorKind int

const (
	// InvalidArgument covers null/empty strings where forbidden, empty
	// GUIDs, zero-valued durations, out-of-range enumerations, duplicate
	// filters.
	InvalidArgument ErrorKind = iota
	// InvalidConfiguration covers kind/property mismatches, duplicate log
	// names, declarative schema violations, memory sinks in a Config.
	InvalidConfiguration
	// NotFound covers a missing file path or a named-sink lookup miss.
	NotFound
	// ConflictingState covers writes to a frozen config, destroying a sink
	// the Manager does not own, or destroying the Console sink.
	ConflictingState
	// Capability covers a binary-trace request the host denies (normally
	// handled by silent demotion rather than surfaced as an error).
	Capability
	// Cancelled covers reader stop, reclaim-disabled duplicate session,
	// and a file reader invoked with no files.
	Cancelled
	// ResourceExhausted covers a sink's internal buffer overflowing on
	// the emission hot path (§5): the event is dropped and a counter
	// incremented rather than blocking the caller on I/O.
	ResourceExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case InvalidConfiguration:
		return "InvalidConfiguration"
	case NotFound:
		return "NotFound"
	case ConflictingState:
		return "ConflictingState"
	case Capability:
		return "Capability"
	case Cancelled:
		return "Cancelled"
	case ResourceExhausted:
		return "ResourceExhausted"
	default:
		return "Unknown"
	}
}

// Error is the error type returned by evtrace's validation and lifecycle
// operations. It wraps an underlying cause (may be nil) with an ErrorKind so
// callers can branch with errors.As.
type Error struct {
	Kind ErrorKind
	Op   string // short operation name, e.g. "LogConfig.Validate"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an *Error. Pass a nil cause when there is no underlying
// error to wrap.
func NewError(kind ErrorKind, op, msg string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: cause}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
