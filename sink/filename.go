package sink

import (
	"strconv"
	"strings"
	"time"

	"github.com/matgreaves/evtrace/evtspec"
)

// ExpandFilename renders a filename template per §4.3: positional
// placeholders {0} (logical log name), {1} (rotation-start timestamp),
// {2} (rotation-end timestamp). Indices ≥3 are invalid. The extension is
// appended separately by the caller based on sink kind.
func ExpandFilename(template, name string, start, end time.Time, local bool) (string, error) {
	var b strings.Builder
	i := 0
	for i < len(template) {
		if template[i] != '{' {
			b.WriteByte(template[i])
			i++
			continue
		}
		j := strings.IndexByte(template[i:], '}')
		if j < 0 {
			return "", evtspec.NewError(evtspec.InvalidArgument, "ExpandFilename", "unterminated placeholder in template", nil)
		}
		idxStr := template[i+1 : i+j]
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 || idx > 2 {
			return "", evtspec.NewError(evtspec.InvalidArgument, "ExpandFilename", "invalid placeholder index "+idxStr, nil)
		}
		switch idx {
		case 0:
			b.WriteString(name)
		case 1:
			b.WriteString(formatFilenameTimestamp(start, local))
		case 2:
			b.WriteString(formatFilenameTimestamp(end, local))
		}
		i += j + 1
	}
	return b.String(), nil
}

// formatFilenameTimestamp renders a timestamp for use in a filename: UTC
// when local is false, local time with an appended zone offset otherwise.
// The local form is always strictly longer than the UTC form, per §4.3.
func formatFilenameTimestamp(t time.Time, local bool) string {
	if !local {
		return t.UTC().Format("20060102T150405Z")
	}
	lt := t.Local()
	return lt.Format("20060102T150405") + lt.Format("-0700")
}
