package evtspec

// BinaryLogging controls whether trace-kind (binary) sinks may be
// instantiated at all for a process, independent of whether any are
// currently configured.
type BinaryLogging int

const (
	BinaryLoggingUnspecified BinaryLogging = iota
	BinaryLoggingEnabled
	BinaryLoggingDisabled
)

// Config is the full, process-wide set of sinks the Manager should have
// running. A Config is a value: installing one never mutates another, and
// the Manager always diffs an old Config against a new one rather than
// mutating sinks in place.
type Config struct {
	Logs               []LogConfig   `json:"logs"`
	AllowBinaryLogging BinaryLogging `json:"allow_binary_logging,omitempty"`
}

// Validate checks every LogConfig individually, then the cross-log
// invariants: log names are globally unique regardless of kind, at most
// one Console sink, Memory sinks may not be declared here (they are
// created only through the direct API, per §6). Trace logs are accepted
// whatever AllowBinaryLogging says; the Manager's binary-logging gate
// rewrites them as Text logs when it is Disabled.
func (c Config) Validate() error {
	const op = "Config.Validate"

	seen := make(map[string]bool, len(c.Logs))
	sawConsole := false
	for i := range c.Logs {
		lc := &c.Logs[i]
		if lc.Kind == KindMemory {
			return NewError(InvalidConfiguration, op, "memory sinks cannot appear in a declarative Config", nil)
		}
		if err := lc.Validate(); err != nil {
			return err
		}
		if lc.Kind == KindConsole {
			if sawConsole {
				return NewError(InvalidConfiguration, op, "at most one console sink is allowed", nil)
			}
			sawConsole = true
		}
		if seen[lc.Name] {
			return NewError(InvalidConfiguration, op, "duplicate log name: "+lc.Name, nil)
		}
		seen[lc.Name] = true
	}
	return nil
}

// Diff computes which logs must be started and which must be stopped to
// move the Manager from prev to c. A log is unchanged (neither started nor
// stopped) when its Name is present in both and its resolved content is
// equal; otherwise the old one stops and the new one starts, even if they
// share a name. Content changes always go through a stop/start cycle
// rather than in-place mutation of a running sink.
func (c Config) Diff(prev Config) (toStart, toStop []LogConfig) {
	prevByKey := make(map[string]*LogConfig, len(prev.Logs))
	for i := range prev.Logs {
		lc := &prev.Logs[i]
		prevByKey[lc.Name] = lc
	}
	newByKey := make(map[string]*LogConfig, len(c.Logs))
	for i := range c.Logs {
		lc := &c.Logs[i]
		key := lc.Name
		newByKey[key] = lc
		old, existed := prevByKey[key]
		if !existed || !logConfigEqual(*old, *lc) {
			toStart = append(toStart, *lc)
		}
	}
	for key, old := range prevByKey {
		if _, stillPresent := newByKey[key]; !stillPresent {
			toStop = append(toStop, *old)
			continue
		}
		if !logConfigEqual(*old, *newByKey[key]) {
			toStop = append(toStop, *old)
		}
	}
	return toStart, toStop
}

// logConfigEqual compares the user-visible fields of two LogConfigs field
// by field, with the slice fields compared element-wise.
func logConfigEqual(a, b LogConfig) bool {
	if a.Name != b.Name || a.Kind != b.Kind || a.BufferSizeMB != b.BufferSizeMB {
		return false
	}
	if a.Directory != b.Directory || a.FilenameTemplate != b.FilenameTemplate ||
		a.TimestampLocal != b.TimestampLocal || a.RotationInterval != b.RotationInterval {
		return false
	}
	if a.Hostname != b.Hostname || a.Port != b.Port || a.Transport != b.Transport {
		return false
	}
	if a.Archive != b.Archive {
		return false
	}
	if (a.MaximumAge == nil) != (b.MaximumAge == nil) {
		return false
	}
	if a.MaximumAge != nil && *a.MaximumAge != *b.MaximumAge {
		return false
	}
	if (a.MaximumSize == nil) != (b.MaximumSize == nil) {
		return false
	}
	if a.MaximumSize != nil && *a.MaximumSize != *b.MaximumSize {
		return false
	}
	if len(a.Subscriptions) != len(b.Subscriptions) {
		return false
	}
	for i := range a.Subscriptions {
		if a.Subscriptions[i] != b.Subscriptions[i] {
			return false
		}
	}
	if len(a.Filters) != len(b.Filters) {
		return false
	}
	for i := range a.Filters {
		if a.Filters[i] != b.Filters[i] {
			return false
		}
	}
	return true
}
