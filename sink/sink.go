// Package sink implements the five sink kinds (text, trace, memory,
// console, network) the manager can instantiate from a LogConfig. Each
// kind satisfies the base Sink interface; kind-specific behavior beyond
// that (rotation, tailing, flushing) is expressed as an optional
// capability interface a caller type-asserts for, rather than a single
// interface bloated with methods most kinds don't support.
package sink

import (
	"github.com/matgreaves/evtrace/evtspec"
	"github.com/matgreaves/evtrace/sink/retention"
)

// Sink receives admitted events and is responsible for getting them to
// their final destination (a file, a ring buffer, a socket, stdout).
// Emit must be safe for concurrent use: the manager fans out to every
// matching sink without synchronizing between them.
type Sink interface {
	ID() string
	Kind() evtspec.Kind
	Emit(ev evtspec.Event) error
	Close() error
}

// Rotatable is implemented by file-backed sinks (text, trace) that can be
// asked to roll over to a new file on demand, independent of their
// internal rotation clock.
type Rotatable interface {
	Rotate() error
}

// Tailer is implemented by sinks that retain events in memory and can
// return the most recent ones without reading them back from a transport.
// Currently only the memory sink implements it.
type Tailer interface {
	Tail(n int) []evtspec.Event
}

// Flusher is implemented by sinks that buffer writes and can be asked to
// push everything out immediately, e.g. before Close or a manual flush
// request.
type Flusher interface {
	Flush() error
}

// Archivable is implemented by file-backed sinks (text, trace) whose
// retention sweep can upload a file to cold storage before deleting it.
// A LogConfig opts in with Archive=true; the Manager installs an
// archiver only when one is wired for the process.
type Archivable interface {
	SetArchiver(retention.Archiver)
}
