package sink

import (
	"strconv"
	"strings"
	"time"

	"github.com/matgreaves/evtrace/evtspec"
)

// FormatOptions is the combinable bitmask controlling which sections a
// text-formatted line includes, per §4.2.
type FormatOptions uint8

const (
	FormatTimestamp FormatOptions = 1 << iota
	FormatTimeOffset
	FormatShowActivityID
	FormatProcessAndThreadData
)

// DefaultFormatOptions is Timestamp | ShowActivityID | ProcessAndThreadData.
const DefaultFormatOptions = FormatTimestamp | FormatShowActivityID | FormatProcessAndThreadData

// FormatLine renders ev as a single text line:
//
//	<time-or-offset>? (activity-guid-hex-no-dashes)? [pid/tid/level-letter:ProviderName EventName] name=value name=value …
//
// sinceStart is used for TimeOffset rendering; it is ignored unless opts
// includes FormatTimeOffset instead of FormatTimestamp.
func FormatLine(ev evtspec.Event, opts FormatOptions, sinceStart time.Time) string {
	var b strings.Builder

	wrote := false
	writeSep := func() {
		if wrote {
			b.WriteByte(' ')
		}
		wrote = true
	}

	if opts&FormatTimeOffset != 0 {
		writeSep()
		b.WriteString(strconv.FormatFloat(ev.TimestampMillis().Sub(sinceStart).Seconds(), 'f', 3, 64))
	} else if opts&FormatTimestamp != 0 {
		writeSep()
		b.WriteString(ev.TimestampMillis().Format(time.RFC3339Nano))
	}

	if opts&FormatShowActivityID != 0 && !ev.ActivityID.IsZero() {
		writeSep()
		b.WriteByte('(')
		b.WriteString(ev.ActivityID.HexNoDash())
		b.WriteByte(')')
	}

	writeSep()
	b.WriteByte('[')
	if opts&FormatProcessAndThreadData != 0 {
		b.WriteString(strconv.FormatUint(uint64(ev.ProcessID), 10))
		b.WriteByte('/')
		b.WriteString(strconv.FormatUint(uint64(ev.ThreadID), 10))
		b.WriteByte('/')
	}
	b.WriteByte(ev.Level.Letter())
	b.WriteByte(':')
	b.WriteString(ev.ProviderName)
	b.WriteByte(' ')
	b.WriteString(ev.EventName)
	b.WriteByte(']')

	if ev.Parameters != nil {
		for i := 0; i < ev.Parameters.Len(); i++ {
			p := ev.Parameters.At(i)
			b.WriteByte(' ')
			b.WriteString(p.Name)
			b.WriteByte('=')
			writeParamValue(&b, p)
		}
	}

	return b.String()
}

func writeParamValue(b *strings.Builder, p evtspec.Param) {
	switch p.Kind {
	case evtspec.ParamBool:
		if p.Bool {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case evtspec.ParamInt64:
		b.WriteString(strconv.FormatInt(p.Int64, 10))
	case evtspec.ParamUint64:
		b.WriteString(strconv.FormatUint(p.Uint64, 10))
	case evtspec.ParamFloat64:
		b.WriteString(strconv.FormatFloat(p.Float64, 'g', -1, 64))
	case evtspec.ParamGUID:
		b.WriteByte('(')
		b.WriteString(p.GUID.HexNoDash())
		b.WriteByte(')')
	case evtspec.ParamString:
		b.WriteByte('"')
		b.WriteString(escapeString(p.Str))
		b.WriteByte('"')
	}
}

// escapeString escapes \n \r \t \" \\ per §4.2's value-formatting rule.
func escapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
