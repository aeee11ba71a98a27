package evtspec

import (
	"sync"

	"github.com/matgreaves/evtrace/evtid"
)

// ProviderRegistry resolves a provider's symbolic name (and, in the
// declarative schema, a source handle) to its GUID. Provider registration
// itself is the event-provider codegen's responsibility, out of scope per
// spec.md §1, so this registry is intentionally the thinnest possible
// binding between "a name the config mentions" and "a GUID the routing
// engine keys on". The Manager owns one instance for the process.
type ProviderRegistry struct {
	mu       sync.RWMutex
	byName   map[string]evtid.GUID
	byHandle map[string]evtid.GUID
}

// NewProviderRegistry returns an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		byName:   make(map[string]evtid.GUID),
		byHandle: make(map[string]evtid.GUID),
	}
}

// Register associates a provider's symbolic name with its GUID. Providers
// call this once at startup (typically from generated init code).
func (r *ProviderRegistry) Register(name string, id evtid.GUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = id
}

// RegisterHandle associates an opaque source handle (used by in-process
// callers that hold a provider reference rather than a name) with a GUID.
func (r *ProviderRegistry) RegisterHandle(handle string, id evtid.GUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byHandle[handle] = id
}

// ResolveName looks up a provider GUID by name.
func (r *ProviderRegistry) ResolveName(name string) (evtid.GUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

// ResolveHandle looks up a provider GUID by source handle.
func (r *ProviderRegistry) ResolveHandle(handle string) (evtid.GUID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byHandle[handle]
	return id, ok
}
