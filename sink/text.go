package sink

import (
	"time"

	"github.com/matgreaves/evtrace/evtid"
	"github.com/matgreaves/evtrace/evtspec"
	"github.com/matgreaves/evtrace/sink/retention"
)

// Text writes formatted lines to a rotating file, per §4.2/§4.3. It
// supports the regex filter chain and an optional activity-ID filter.
type Text struct {
	id        string
	fb        *fileBacked
	opts      FormatOptions
	chain     *FilterChain
	actFilter evtid.GUID

	disabled bool
}

// NewText constructs a Text sink from lc. now is the construction time,
// used to seed the rotation clock and the first file's start timestamp.
func NewText(lc *evtspec.LogConfig, filters *FilterChain, now time.Time) (*Text, error) {
	fb, err := newFileBacked(lc, ".log", now)
	if err != nil {
		return nil, err
	}
	return &Text{
		id:    lc.Name,
		fb:    fb,
		opts:  DefaultFormatOptions,
		chain: filters,
	}, nil
}

func (t *Text) ID() string         { return t.id }
func (t *Text) Kind() evtspec.Kind { return evtspec.KindText }

// SetFormatOptions overrides the default rendering bitmask.
func (t *Text) SetFormatOptions(opts FormatOptions) { t.opts = opts }

// SetDisabled toggles the dynamic disabled flag. Disabled sinks drop
// events silently without being destroyed, per §4.2.
func (t *Text) SetDisabled(disabled bool) { t.disabled = disabled }

// SetActivityFilter restricts emission to events whose ActivityID matches
// filter exactly; the zero GUID clears the filter (admit everything).
func (t *Text) SetActivityFilter(filter evtid.GUID) { t.actFilter = filter }

func (t *Text) Emit(ev evtspec.Event) error {
	if t.disabled {
		return nil
	}
	if !t.actFilter.IsZero() && ev.ActivityID != t.actFilter {
		return nil
	}
	line := FormatLine(ev, t.opts, t.fb.rotationStart)
	if !t.chain.MatchLine(line) {
		return nil
	}
	return t.fb.writeLine(line)
}

func (t *Text) Flush() error { return t.fb.flush() }
func (t *Text) Close() error { return t.fb.close() }

// Rotate forces an unconditional rotation, independent of the clock.
func (t *Text) Rotate() error { return t.fb.rotate(time.Now()) }

// CheckedRotate rotates iff now has passed the scheduled rotation time.
// Returns whether a rotation actually happened.
func (t *Text) CheckedRotate(now time.Time) (bool, error) { return t.fb.checkedRotate(now) }

// SetArchiver installs the cold-storage destination a retention sweep
// uploads a rotated file to before deleting it.
func (t *Text) SetArchiver(arch retention.Archiver) { t.fb.SetArchiver(arch) }
