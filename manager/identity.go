package manager

import "github.com/matgreaves/evtrace/evtspec"

// identity is a sink's registry key: (kind, name). Console's name is
// always empty, which is fine since at most one Console sink may exist
// (evtspec.Config.Validate enforces that at config time).
type identity struct {
	kind evtspec.Kind
	name string
}

func identityOf(lc evtspec.LogConfig) identity {
	return identity{kind: lc.Kind, name: lc.Name}
}

// sinkID renders an identity as the opaque string key the routing table
// indexes sinks by. Kind is part of the key so that the key stays
// distinct per kind even though Config.Validate already rejects any
// duplicate name, whatever the kinds (and the unnamed Console sink gets
// the key "console:").
func (id identity) sinkID() string {
	return string(id.kind) + ":" + id.name
}
