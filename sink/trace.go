package sink

import (
	"time"

	"github.com/matgreaves/evtrace/evtspec"
	"github.com/matgreaves/evtrace/sink/retention"
)

// TraceEncoder serializes an Event into the host platform's binary trace
// record format. The concrete encoder is out of scope for this runtime
// (§1), callers supply one appropriate to their platform;
// lengthPrefixEncoder in trace_test.go stands in for tests.
type TraceEncoder interface {
	Encode(ev evtspec.Event) ([]byte, error)
}

// Trace is the binary-trace sink: file-backed and rotatable like Text,
// but with no text formatting or regex filter capability (§4.2's
// capability matrix).
type Trace struct {
	id      string
	fb      *fileBacked
	encoder TraceEncoder

	disabled bool
}

// NewTrace constructs a Trace sink from lc using encoder to serialize
// each admitted event.
func NewTrace(lc *evtspec.LogConfig, encoder TraceEncoder, now time.Time) (*Trace, error) {
	fb, err := newFileBacked(lc, ".etl", now)
	if err != nil {
		return nil, err
	}
	return &Trace{id: lc.Name, fb: fb, encoder: encoder}, nil
}

func (t *Trace) ID() string         { return t.id }
func (t *Trace) Kind() evtspec.Kind { return evtspec.KindTrace }

func (t *Trace) SetDisabled(disabled bool) { t.disabled = disabled }

func (t *Trace) Emit(ev evtspec.Event) error {
	if t.disabled {
		return nil
	}
	record, err := t.encoder.Encode(ev)
	if err != nil {
		return evtspec.NewError(evtspec.InvalidArgument, "Trace.Emit", "encode event", err)
	}
	return t.fb.writeBytes(record)
}

func (t *Trace) Flush() error { return t.fb.flush() }
func (t *Trace) Close() error { return t.fb.close() }

func (t *Trace) Rotate() error { return t.fb.rotate(time.Now()) }

func (t *Trace) CheckedRotate(now time.Time) (bool, error) { return t.fb.checkedRotate(now) }

// SetArchiver installs the cold-storage destination a retention sweep
// uploads a rotated file to before deleting it.
func (t *Trace) SetArchiver(arch retention.Archiver) { t.fb.SetArchiver(arch) }

// DemoteConfigToText returns a copy of the Trace LogConfig lc as a Text
// LogConfig with the same name, subscriptions, and directory. The
// behavior §4.4's binary-logging gate requires when AllowBinaryLogging is
// Disabled. The manager is responsible for destroying the Trace sink and
// installing the returned config in its place.
func DemoteConfigToText(lc *evtspec.LogConfig) *evtspec.LogConfig {
	text := lc.Clone()
	text.Kind = evtspec.KindText
	return text
}
