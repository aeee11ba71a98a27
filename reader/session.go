package reader

import (
	"sync"

	"github.com/matgreaves/evtrace/evtspec"
)

// session is a named, in-process stand-in for a live OS trace session:
// attaching to a live session by handle is platform-specific and out of
// scope for this runtime (§1), so "a named session exists" is modeled as
// a registered event feed a RealtimeProcessor can drain.
type session struct {
	mu       sync.Mutex
	name     string
	events   chan evtspec.Event
	attached bool
}

// sessionRegistry tracks currently-open named sessions, the in-process
// analogue of the OS trace-session namespace §4.6 describes.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session
}

var defaultRegistry = newSessionRegistry()

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*session)}
}

// openOrReclaim returns the named session, creating it if absent. If it
// already exists and is currently attached, reclaim controls whether the
// caller may take it over (reclaim=true) or must fail (reclaim=false),
// per §4.6's "named session already exists" rule.
func (r *sessionRegistry) openOrReclaim(name string, reclaim bool) (*session, error) {
	const op = "RealtimeProcessor.Attach"
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[name]
	if !ok {
		s = &session{name: name, events: make(chan evtspec.Event, 256)}
		r.sessions[name] = s
		return s, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attached && !reclaim {
		return nil, evtspec.NewError(evtspec.Cancelled, op, "session "+name+" already attached", nil)
	}
	return s, nil
}

// Publish delivers ev to every session currently registered under name.
// A production caller (a realtime trace shim) uses this to feed a
// RealtimeProcessor attached to that session; tests call it directly.
func Publish(name string, ev evtspec.Event) {
	defaultRegistry.mu.Lock()
	s, ok := defaultRegistry.sessions[name]
	defaultRegistry.mu.Unlock()
	if !ok {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

// CloseSession removes name from the registry and closes its feed,
// unblocking any processor still draining it.
func CloseSession(name string) {
	defaultRegistry.mu.Lock()
	s, ok := defaultRegistry.sessions[name]
	if ok {
		delete(defaultRegistry.sessions, name)
	}
	defaultRegistry.mu.Unlock()
	if ok {
		s.mu.Lock()
		close(s.events)
		s.mu.Unlock()
	}
}
