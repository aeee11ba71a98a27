package evtspec

import (
	"time"

	"github.com/matgreaves/evtrace/evtid"
)

// Event is an immutable record produced by an in-process event provider.
// Every field is set at construction time; sinks and the routing engine
// only ever read an Event, never mutate it. Multiple sinks hold a
// reference to the exact same Event value for a single emission.
type Event struct {
	Timestamp time.Time // UTC instant; serialization truncates to millisecond precision

	ProviderID   evtid.GUID
	ProviderName string

	ID        uint16
	EventName string // may encode a "Task/Opcode" composition
	Version   uint8

	Level    Level
	Opcode   uint8
	Keywords Keywords

	ActivityID evtid.GUID // all-zero means "none"

	ProcessID uint32
	ThreadID  uint32

	Parameters *Params
}

// TimestampMillis returns the timestamp truncated to millisecond precision,
// the form every serialized representation (text line, trace record,
// network frame) uses.
func (e Event) TimestampMillis() time.Time {
	return e.Timestamp.Truncate(time.Millisecond)
}
