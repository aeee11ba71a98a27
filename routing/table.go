// Package routing implements the subscription/admission engine that sits
// between an event's emission call and the sinks that should receive it.
// The hot path (Route) never takes a lock: the installed table is an
// atomic pointer swapped wholesale on each reconfiguration.
package routing

import (
	"sync/atomic"

	"github.com/matgreaves/evtrace/evtid"
	"github.com/matgreaves/evtrace/evtspec"
)

// Route is one sink's resolved admission rule for a single provider.
type Route struct {
	SinkID   string
	MinLevel evtspec.Level
	Keywords evtspec.Keywords
}

// admits reports whether ev (already known to come from the provider this
// route is indexed under) passes this route's level and keyword filter.
func (r Route) admits(ev evtspec.Event) bool {
	if ev.Level > r.MinLevel {
		return false
	}
	return r.Keywords.Admits(ev.Keywords)
}

// Table is the installed, read-only routing state: for every provider GUID
// any subscription names, the list of sinks subscribed to it.
type Table struct {
	byProvider map[evtid.GUID][]Route
}

var empty = &Table{}

// holder is the process-wide installed table, swapped by Install.
var holder atomic.Pointer[Table]

func init() {
	holder.Store(empty)
}

// Build resolves every (sinkID, Subscription) pair against registry and
// returns the Table those subscriptions describe. Subscriptions that fail
// to resolve (unknown provider name/handle) are skipped silently; no
// caller checks providers against the registry beforehand.
func Build(subs map[string][]evtspec.Subscription, registry *evtspec.ProviderRegistry) *Table {
	t := &Table{byProvider: make(map[evtid.GUID][]Route)}
	for sinkID, subscriptions := range subs {
		for _, s := range subscriptions {
			id, err := s.Resolve(registry)
			if err != nil {
				continue
			}
			t.byProvider[id] = append(t.byProvider[id], Route{
				SinkID:   sinkID,
				MinLevel: s.MinLevel,
				Keywords: s.Keywords,
			})
		}
	}
	return t
}

// Install atomically swaps the process-wide table. The previous table
// remains valid for any Route call already in flight against it. Readers
// never observe a partially-built table.
func Install(t *Table) {
	if t == nil {
		t = empty
	}
	holder.Store(t)
}

// Current returns the currently installed table.
func Current() *Table {
	return holder.Load()
}

// Route returns the sink IDs that should receive ev, per the currently
// installed table. Allocates only when at least one sink matches.
func Route(ev evtspec.Event) []string {
	return Current().Route(ev)
}

// Route returns the sink IDs in t that should receive ev.
func (t *Table) Route(ev evtspec.Event) []string {
	routes, ok := t.byProvider[ev.ProviderID]
	if !ok {
		return nil
	}
	var out []string
	for _, r := range routes {
		if r.admits(ev) {
			out = append(out, r.SinkID)
		}
	}
	return out
}

// HasSubscribers reports whether any sink currently subscribes to
// providerID at all, regardless of level/keyword filtering. Used by
// provider-side "is anybody listening" fast-reject checks before an event
// is even constructed.
func (t *Table) HasSubscribers(providerID evtid.GUID) bool {
	routes, ok := t.byProvider[providerID]
	return ok && len(routes) > 0
}
