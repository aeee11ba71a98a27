package reader

import "github.com/matgreaves/evtrace/evtspec"

// ProcessEventType is a bitmask selecting which record categories a
// processor delivers, per §4.6.
type ProcessEventType uint8

const (
	ProcessUser ProcessEventType = 1 << iota
	ProcessKernel
	ProcessManifest

	ProcessAll = ProcessUser | ProcessKernel | ProcessManifest
)

// Callback receives one decoded Event. Both processor variants deliver
// through the same callback shape so callers can share correlation logic
// (an ExpiringCompositeCollection, typically) between file and realtime
// sources.
type Callback func(evtspec.Event)

// RecordDecoder decodes one binary trace record at a time from a byte
// stream. The concrete wire format is out of scope for this runtime (§1),
// symmetric with sink.TraceEncoder on the write side: callers supply a
// decoder matching whatever encoder originally wrote the file.
type RecordDecoder interface {
	// Decode consumes exactly one record from the front of buf and
	// returns the decoded event, its category, and the number of bytes
	// consumed.
	Decode(buf []byte) (ev evtspec.Event, category ProcessEventType, consumed int, err error)
}
