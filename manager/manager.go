// Package manager implements the central logging manager (§4.4): a
// process singleton that owns sink lifecycle, the installed
// configuration, and mediates every reconfiguration so sinks never
// observe a half-applied routing table.
package manager

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/matgreaves/evtrace/connect"
	"github.com/matgreaves/evtrace/evtspec"
	"github.com/matgreaves/evtrace/routing"
	"github.com/matgreaves/evtrace/sink"
	"github.com/matgreaves/evtrace/sink/retention"
)

// Manager is the process singleton described in §4.4. The zero value is
// not usable; construct one with New.
type Manager struct {
	registry *evtspec.ProviderRegistry

	mu          sync.Mutex
	started     bool
	directory   string
	sinks       map[identity]sink.Sink
	instantiated map[identity]bool
	installed   evtspec.Config
	allowBinary evtspec.BinaryLogging

	traceEncoder sink.TraceEncoder
	console      io.Writer
	archiver     retention.Archiver

	rotation rotationThrottle
	watcher  *configWatcher

	lost      *lostEventCounter
	diag      *DiagnosticLog
	telemetry *Telemetry
}

// Option configures optional Manager dependencies at construction time.
type Option func(*Manager)

// WithTraceEncoder supplies the binary trace encoder a Trace sink needs.
// The concrete encoder is an external collaborator (§1); without one,
// attempting to instantiate a Trace sink fails with a Capability error.
func WithTraceEncoder(enc sink.TraceEncoder) Option {
	return func(m *Manager) { m.traceEncoder = enc }
}

// WithConsoleWriter overrides the writer a Console sink writes to.
// Defaults to os.Stdout.
func WithConsoleWriter(w io.Writer) Option {
	return func(m *Manager) { m.console = w }
}

// WithArchiver supplies the cold-storage destination a file-backed sink
// with Archive=true uploads a rotated file to before its retention sweep
// deletes the local copy. Without one, Archive=true on a LogConfig is
// accepted but has no effect.
func WithArchiver(arch retention.Archiver) Option {
	return func(m *Manager) { m.archiver = arch }
}

// New constructs a Manager bound to registry, which resolves subscription
// provider names/handles to GUIDs for routing. Call Start before
// installing any configuration.
func New(registry *evtspec.ProviderRegistry, opts ...Option) *Manager {
	m := &Manager{
		registry: registry,
		console:  os.Stdout,
		lost:     newLostEventCounter(),
		diag:     NewDiagnosticLog(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start initializes the default directory, resets process state, and
// installs an empty configuration. Start is idempotent: a second call on
// an already-started Manager is a no-op.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return nil
	}
	dir := ResolveDefaultDirectory()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return evtspec.NewError(evtspec.InvalidConfiguration, "Manager.Start", "create default directory", err)
	}
	m.directory = dir
	m.sinks = make(map[identity]sink.Sink)
	m.instantiated = make(map[identity]bool)
	m.installed = evtspec.Config{}
	m.allowBinary = evtspec.BinaryLoggingUnspecified
	routing.Install(nil)
	m.started = true
	return nil
}

// Shutdown flushes and destroys every sink, stops the config-file
// watcher, and resets allow_binary_logging to Unspecified. Shutdown on a
// Manager that was never started is a no-op.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return nil
	}
	if m.watcher != nil {
		m.watcher.stop()
		m.watcher = nil
	}
	var firstErr error
	for id, s := range m.sinks {
		if err := destroySink(s); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.sinks, id)
	}
	m.instantiated = make(map[identity]bool)
	m.allowBinary = evtspec.BinaryLoggingUnspecified
	routing.Install(nil)
	m.started = false
	return firstErr
}

// SetConfiguration installs next, computing a diff against the currently
// installed configuration. Sinks present only in the old config are
// destroyed; sinks present only in the new one are created; sinks whose
// content changed go through a destroy-then-create cycle. The routing
// table is rebuilt and atomically swapped so concurrent emissions never
// observe a partially applied configuration (§4.4, §5).
func (m *Manager) SetConfiguration(next evtspec.Config) error {
	_, span := m.startSetConfigurationSpan(context.Background())
	defer span.End()

	if err := next.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return evtspec.NewError(evtspec.ConflictingState, "Manager.SetConfiguration", "manager is not started", nil)
	}

	merged := next
	merged.AllowBinaryLogging = mergeBinaryLogging(m.allowBinary, next.AllowBinaryLogging)
	gated := applyBinaryLoggingGate(&merged, merged.AllowBinaryLogging)

	toStart, toStop := gated.Diff(m.installed)

	for _, lc := range toStop {
		id := identityOf(lc)
		if s, ok := m.sinks[id]; ok {
			destroySink(s)
			delete(m.sinks, id)
		}
		delete(m.instantiated, id)
	}

	for _, lc := range toStart {
		id := identityOf(lc)
		s, err := m.buildSink(&lc, time.Now())
		if err != nil {
			return err
		}
		m.sinks[id] = s
		m.instantiated[id] = true
	}

	m.installed = *gated
	m.allowBinary = merged.AllowBinaryLogging
	m.installRoutingLocked()
	return nil
}

// installRoutingLocked rebuilds the routing table from the currently
// installed sinks' subscriptions and atomically installs it. Caller must
// hold m.mu.
func (m *Manager) installRoutingLocked() {
	subs := make(map[string][]evtspec.Subscription, len(m.installed.Logs))
	for _, lc := range m.installed.Logs {
		subs[identityOf(lc).sinkID()] = lc.Subscriptions
	}
	routing.Install(routing.Build(subs, m.registry))
}

// CreateMemorySink registers a Memory sink directly, bypassing
// SetConfiguration's diff: declarative configs may never name a Memory
// sink (evtspec.Config.Validate rejects it), so this is its only
// construction path, per §6.
func (m *Manager) CreateMemorySink(lc evtspec.LogConfig, capacity int) (*sink.Memory, error) {
	lc.Kind = evtspec.KindMemory
	if err := lc.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := identityOf(lc)
	if m.instantiated[id] {
		return nil, evtspec.NewError(evtspec.ConflictingState, "Manager.CreateMemorySink", "sink "+lc.Name+" already instantiated", nil)
	}
	chain, err := sink.CompileFilterChain(lc.Filters)
	if err != nil {
		return nil, err
	}
	mem := sink.NewMemory(&lc, chain, capacity)
	m.sinks[id] = mem
	m.instantiated[id] = true
	m.installed.Logs = append(m.installed.Logs, lc)
	m.installRoutingLocked()
	return mem, nil
}

// RotateFiles forces rotation on every file-backed sink (Text and Trace),
// throttled by MinDemandRotationDelta: a call before the throttle expires
// performs no I/O and returns false.
func (m *Manager) RotateFiles() bool {
	if !m.rotation.allow(time.Now()) {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sinks {
		if r, ok := s.(sink.Rotatable); ok {
			if err := r.Rotate(); err != nil {
				m.diag.Publish("rotation_error", "sink "+s.ID()+" failed to rotate", err)
			}
		}
	}
	m.recordRotation(context.Background())
	return true
}

// Emit routes ev through the installed routing table and fans it out to
// every admitting sink. A sink whose Emit returns an error increments the
// manager's lost-events counter rather than propagating the error.
// Per §5, the emission hot path must not block or fail on a single sink's
// I/O trouble.
func (m *Manager) Emit(ev evtspec.Event) {
	ids := routing.Route(ev)
	if len(ids) == 0 {
		return
	}
	m.mu.Lock()
	targets := make([]sink.Sink, 0, len(ids))
	for _, id := range ids {
		for key, s := range m.sinks {
			if key.sinkID() == id {
				targets = append(targets, s)
			}
		}
	}
	m.mu.Unlock()

	for _, s := range targets {
		if err := s.Emit(ev); err != nil {
			m.lost.increment()
			m.diag.Publish("dropped_event", "sink "+s.ID()+" rejected an event", err)
			m.recordLostEvent(context.Background())
		}
	}
}

// Diagnostics returns the manager's self-observation log (§9): dropped
// events, rotation failures, and reload errors, kept separate from the
// manager's own sinks so it cannot recursively log about itself.
func (m *Manager) Diagnostics() *DiagnosticLog { return m.diag }

// buildSink constructs the sink.Sink a LogConfig describes. File-backed
// and network sinks are wrapped in a buffered queue (sink.NewBufferedFile
// / sink.NewBuffered) so Emit never blocks the caller on I/O, per §5:
// Console writes to the process's own stdout and Memory is an in-process
// ring, neither is a suspension point, so neither is wrapped.
func (m *Manager) buildSink(lc *evtspec.LogConfig, now time.Time) (sink.Sink, error) {
	const op = "Manager.buildSink"
	switch lc.Kind {
	case evtspec.KindText:
		chain, err := sink.CompileFilterChain(lc.Filters)
		if err != nil {
			return nil, err
		}
		s, err := sink.NewText(lc, chain, now)
		if err != nil {
			return nil, err
		}
		m.installArchiver(lc, s)
		return sink.NewBufferedFile(s, lc.BufferSizeMB), nil
	case evtspec.KindTrace:
		if m.traceEncoder == nil {
			return nil, evtspec.NewError(evtspec.Capability, op, "no trace encoder configured for this process", nil)
		}
		s, err := sink.NewTrace(lc, m.traceEncoder, now)
		if err != nil {
			return nil, err
		}
		m.installArchiver(lc, s)
		return sink.NewBufferedFile(s, lc.BufferSizeMB), nil
	case evtspec.KindConsole:
		chain, err := sink.CompileFilterChain(lc.Filters)
		if err != nil {
			return nil, err
		}
		return sink.NewConsole(m.console, chain)
	case evtspec.KindNetwork:
		chain, err := sink.CompileFilterChain(lc.Filters)
		if err != nil {
			return nil, err
		}
		transport, err := buildTransport(lc)
		if err != nil {
			return nil, err
		}
		return sink.NewBuffered(sink.NewNetwork(lc, transport, chain), lc.BufferSizeMB), nil
	default:
		return nil, evtspec.NewError(evtspec.InvalidConfiguration, op, "unsupported sink kind "+string(lc.Kind), nil)
	}
}

// installArchiver wires m.archiver into s when lc opted into archival and
// the process has one configured; a bare sink.Sink with no Archivable
// implementation (shouldn't happen for file-backed kinds) is left alone.
func (m *Manager) installArchiver(lc *evtspec.LogConfig, s sink.Sink) {
	if !lc.Archive || m.archiver == nil {
		return
	}
	if a, ok := s.(sink.Archivable); ok {
		a.SetArchiver(m.archiver)
	}
}

// buildTransport resolves the sink.Transport a Network sink sends
// through, selected by LogConfig.Transport (§6's capability matrix: a
// Network sink picks one of http, grpc, or redis; http is the default
// when Transport is unset).
func buildTransport(lc *evtspec.LogConfig) (sink.Transport, error) {
	const op = "Manager.buildSink"
	switch lc.Transport {
	case "", evtspec.TransportHTTP:
		return sink.NewHTTPTransport(networkEndpoint(lc, connect.HTTP), ""), nil
	case evtspec.TransportGRPC:
		return sink.NewGRPCTransport(fmt.Sprintf("%s:%d", lc.Hostname, lc.Port), "")
	case evtspec.TransportRedis:
		return sink.NewRedisTransport(networkEndpoint(lc, connect.TCP), "evtrace:"+lc.Name)
	default:
		return nil, evtspec.NewError(evtspec.InvalidConfiguration, op, "unknown transport "+lc.Transport, nil)
	}
}

// networkEndpoint builds the connect.Endpoint a Network sink's transport
// dials, from the hostname/port a LogConfig names.
func networkEndpoint(lc *evtspec.LogConfig, proto connect.Protocol) connect.Endpoint {
	return connect.Endpoint{Host: lc.Hostname, Port: lc.Port, Protocol: proto}
}

func destroySink(s sink.Sink) error {
	if f, ok := s.(sink.Flusher); ok {
		f.Flush()
	}
	return s.Close()
}
