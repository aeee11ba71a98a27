package manager

import (
	"github.com/matgreaves/evtrace/evtspec"
	"github.com/matgreaves/evtrace/sink"
)

// applyBinaryLoggingGate implements §4.4's binary-logging gate: when
// allow is Disabled, it returns a copy of cfg in which every Trace entry
// is rewritten as a Text sink with the same name, subscriptions, and
// directory; cfg itself is left unchanged. When allow is None or Enabled,
// cfg is returned as is. None's "admitted based on host capability" check
// is not made by the gate: Manager.buildSink fails a Trace entry when no
// encoder is configured for this process.
func applyBinaryLoggingGate(cfg *evtspec.Config, allow evtspec.BinaryLogging) *evtspec.Config {
	if allow != evtspec.BinaryLoggingDisabled {
		return cfg
	}
	gated := &evtspec.Config{AllowBinaryLogging: cfg.AllowBinaryLogging}
	gated.Logs = make([]evtspec.LogConfig, len(cfg.Logs))
	for i, lc := range cfg.Logs {
		if lc.Kind == evtspec.KindTrace {
			gated.Logs[i] = *sink.DemoteConfigToText(&lc)
		} else {
			gated.Logs[i] = lc
		}
	}
	return gated
}

// mergeBinaryLogging implements §4.4's merge rule for allow_binary_logging:
// the right-hand (incoming) value wins outright.
func mergeBinaryLogging(current, incoming evtspec.BinaryLogging) evtspec.BinaryLogging {
	return incoming
}
