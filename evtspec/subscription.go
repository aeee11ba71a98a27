package evtspec

import "github.com/matgreaves/evtrace/evtid"

// Subscription is a declarative filter: a provider identity plus a minimum
// level and a keyword mask. At least one of ProviderName, ProviderID, or
// SourceHandle must identify the provider.
type Subscription struct {
	ProviderName string     `json:"provider_name,omitempty"`
	ProviderID   evtid.GUID `json:"provider_id,omitempty"`
	SourceHandle string     `json:"source_handle,omitempty"`
	MinLevel     Level      `json:"min_level"`
	Keywords     Keywords   `json:"keywords,omitempty"`
}

// Validate checks the structural invariants from §3: at least one provider
// identifier present, and (if set directly) ProviderID must not be the
// all-zero GUID.
func (s Subscription) Validate() error {
	if s.ProviderName == "" && s.SourceHandle == "" && s.ProviderID.IsZero() {
		return NewError(InvalidArgument, "Subscription.Validate", "at least one of provider name, provider id, or source handle must be set", nil)
	}
	if !s.MinLevel.Valid() {
		return NewError(InvalidArgument, "Subscription.Validate", "min_level out of range", nil)
	}
	return nil
}

// Resolve returns the concrete provider GUID this subscription admits
// events for, resolving by name or source handle through registry when
// ProviderID itself is not set. Equality between two resolved
// subscriptions is defined by (resolved provider id, MinLevel, Keywords)
// per §3.
func (s Subscription) Resolve(registry *ProviderRegistry) (evtid.GUID, error) {
	if !s.ProviderID.IsZero() {
		return s.ProviderID, nil
	}
	if s.ProviderName != "" {
		if id, ok := registry.ResolveName(s.ProviderName); ok {
			return id, nil
		}
		return evtid.Nil, NewError(NotFound, "Subscription.Resolve", "unknown provider name "+s.ProviderName, nil)
	}
	if s.SourceHandle != "" {
		if id, ok := registry.ResolveHandle(s.SourceHandle); ok {
			return id, nil
		}
		return evtid.Nil, NewError(NotFound, "Subscription.Resolve", "unknown source handle "+s.SourceHandle, nil)
	}
	return evtid.Nil, NewError(InvalidArgument, "Subscription.Resolve", "subscription identifies no provider", nil)
}

// Admits reports whether this subscription (already resolved to
// providerID) admits ev: same provider, event level at least as severe as
// MinLevel, and overlapping (or unset) keywords.
func (s Subscription) Admits(providerID evtid.GUID, ev Event) bool {
	if ev.ProviderID != providerID {
		return false
	}
	if ev.Level > s.MinLevel {
		return false
	}
	return s.Keywords.Admits(ev.Keywords)
}

// ResolvedEqual reports whether two subscriptions are equal once resolved
// to the same provider GUID. Equality is by (provider id, min level,
// keywords), per §3, not by which of name/id/handle was used to spell it.
func ResolvedEqual(aID evtid.GUID, a Subscription, bID evtid.GUID, b Subscription) bool {
	return aID == bID && a.MinLevel == b.MinLevel && a.Keywords == b.Keywords
}
