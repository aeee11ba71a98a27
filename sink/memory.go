package sink

import (
	"sync"

	"github.com/matgreaves/evtrace/evtspec"
)

// Memory is an in-process ring buffer sink: format and filter capable, but
// never file-backed and never rotated (§4.2's capability matrix). It
// implements Tailer so a reader can pull the most recent N events without
// touching disk or a transport.
type Memory struct {
	id    string
	opts  FormatOptions
	chain *FilterChain

	mu       sync.Mutex
	events   []evtspec.Event
	capacity int
	next     int
	count    int

	disabled bool
}

// NewMemory constructs a Memory sink retaining up to capacity events.
// lc.BufferSizeMB does not translate directly to a count of events, so
// capacity is given explicitly.
func NewMemory(lc *evtspec.LogConfig, filters *FilterChain, capacity int) *Memory {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Memory{
		id:       lc.Name,
		opts:     DefaultFormatOptions,
		chain:    filters,
		events:   make([]evtspec.Event, capacity),
		capacity: capacity,
	}
}

func (m *Memory) ID() string         { return m.id }
func (m *Memory) Kind() evtspec.Kind { return evtspec.KindMemory }

func (m *Memory) SetFormatOptions(opts FormatOptions) { m.opts = opts }
func (m *Memory) SetDisabled(disabled bool)           { m.disabled = disabled }

func (m *Memory) Emit(ev evtspec.Event) error {
	if m.disabled {
		return nil
	}
	line := FormatLine(ev, m.opts, ev.Timestamp)
	if !m.chain.MatchLine(line) {
		return nil
	}
	m.mu.Lock()
	m.events[m.next] = ev
	m.next = (m.next + 1) % m.capacity
	if m.count < m.capacity {
		m.count++
	}
	m.mu.Unlock()
	return nil
}

// Tail returns the n most recent events, oldest first. n <= 0 or n greater
// than the number held returns everything currently buffered.
func (m *Memory) Tail(n int) []evtspec.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n <= 0 || n > m.count {
		n = m.count
	}
	out := make([]evtspec.Event, n)
	start := (m.next - n + m.capacity) % m.capacity
	for i := 0; i < n; i++ {
		out[i] = m.events[(start+i)%m.capacity]
	}
	return out
}

// TailLines renders the n most recent events through FormatLine, for
// callers that want text output rather than raw events.
func (m *Memory) TailLines(n int) []string {
	events := m.Tail(n)
	lines := make([]string, len(events))
	for i, ev := range events {
		lines[i] = FormatLine(ev, m.opts, ev.Timestamp)
	}
	return lines
}

func (m *Memory) Flush() error { return nil }
func (m *Memory) Close() error { return nil }
