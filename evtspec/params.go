package evtspec

import (
	"fmt"

	"github.com/matgreaves/evtrace/evtid"
)

// ParamKind identifies which scalar field of a Param is populated.
// Enumeration values from provider code are stored as their underlying
// integer (Int64 or Uint64, per the provider's declared signedness), never
// as a distinct "enum" kind; see (Params).Int/Uint for the coercion rules
// this implies.
type ParamKind uint8

const (
	ParamBool ParamKind = iota
	ParamInt64
	ParamUint64
	ParamFloat64
	ParamString
	ParamGUID
)

// Param is one named, typed value in an event's parameter list.
type Param struct {
	Name    string
	Kind    ParamKind
	Bool    bool
	Int64   int64
	Uint64  uint64
	Float64 float64
	Str     string
	GUID    evtid.GUID
}

// Params is an ordered, insertion-order-preserving list of Param. Unlike a
// Go map, iterating Params always yields parameters in the order the
// provider declared them, matching spec.md's "ordered mapping" data model.
type Params struct {
	entries []Param
	index   map[string]int
}

// NewParams returns an empty, ready-to-use Params.
func NewParams() *Params {
	return &Params{index: make(map[string]int)}
}

// Len returns the number of parameters.
func (p *Params) Len() int { return len(p.entries) }

// At returns the i'th parameter in declaration order.
func (p *Params) At(i int) Param { return p.entries[i] }

// Get returns the parameter named name, or false if absent.
func (p *Params) Get(name string) (Param, bool) {
	i, ok := p.index[name]
	if !ok {
		return Param{}, false
	}
	return p.entries[i], true
}

// set appends or overwrites (in place, preserving its original position)
// the named parameter.
func (p *Params) set(param Param) {
	if p.index == nil {
		p.index = make(map[string]int)
	}
	if i, ok := p.index[param.Name]; ok {
		p.entries[i] = param
		return
	}
	p.index[param.Name] = len(p.entries)
	p.entries = append(p.entries, param)
}

func (p *Params) SetBool(name string, v bool) {
	p.set(Param{Name: name, Kind: ParamBool, Bool: v})
}

func (p *Params) SetInt64(name string, v int64) {
	p.set(Param{Name: name, Kind: ParamInt64, Int64: v})
}

func (p *Params) SetUint64(name string, v uint64) {
	p.set(Param{Name: name, Kind: ParamUint64, Uint64: v})
}

func (p *Params) SetFloat64(name string, v float64) {
	p.set(Param{Name: name, Kind: ParamFloat64, Float64: v})
}

func (p *Params) SetString(name string, v string) {
	p.set(Param{Name: name, Kind: ParamString, Str: v})
}

func (p *Params) SetGUID(name string, v evtid.GUID) {
	p.set(Param{Name: name, Kind: ParamGUID, GUID: v})
}

// Int reads the named parameter as a signed integer of the given bit width
// (8, 16, 32, or 64), sign-extending or zero-extending as needed from
// whichever underlying representation the provider stored. Fails with
// InvalidArgument if the value would overflow the requested width, or if
// name is absent or not numeric.
//
// This is the mechanism spec.md's "Enumeration reads" design note
// describes: provider code declares named enumerations, but the runtime
// only ever stores (and this reads back) the underlying integer.
func (p *Params) Int(name string, bits int) (int64, error) {
	param, ok := p.Get(name)
	if !ok {
		return 0, NewError(InvalidArgument, "Params.Int", fmt.Sprintf("parameter %q not found", name), nil)
	}
	var v int64
	switch param.Kind {
	case ParamInt64:
		v = param.Int64
	case ParamUint64:
		if param.Uint64 > 1<<63-1 {
			return 0, NewError(InvalidArgument, "Params.Int", fmt.Sprintf("parameter %q overflows int64", name), nil)
		}
		v = int64(param.Uint64)
	default:
		return 0, NewError(InvalidArgument, "Params.Int", fmt.Sprintf("parameter %q is not an integer", name), nil)
	}
	if !fitsSignedBits(v, bits) {
		return 0, NewError(InvalidArgument, "Params.Int", fmt.Sprintf("parameter %q overflows int%d", name, bits), nil)
	}
	return v, nil
}

// Uint reads the named parameter as an unsigned integer of the given bit
// width, with the same overflow rules as Int.
func (p *Params) Uint(name string, bits int) (uint64, error) {
	param, ok := p.Get(name)
	if !ok {
		return 0, NewError(InvalidArgument, "Params.Uint", fmt.Sprintf("parameter %q not found", name), nil)
	}
	var v uint64
	switch param.Kind {
	case ParamUint64:
		v = param.Uint64
	case ParamInt64:
		if param.Int64 < 0 {
			return 0, NewError(InvalidArgument, "Params.Uint", fmt.Sprintf("parameter %q is negative", name), nil)
		}
		v = uint64(param.Int64)
	default:
		return 0, NewError(InvalidArgument, "Params.Uint", fmt.Sprintf("parameter %q is not an integer", name), nil)
	}
	if !fitsUnsignedBits(v, bits) {
		return 0, NewError(InvalidArgument, "Params.Uint", fmt.Sprintf("parameter %q overflows uint%d", name, bits), nil)
	}
	return v, nil
}

func fitsSignedBits(v int64, bits int) bool {
	if bits >= 64 {
		return true
	}
	max := int64(1) << (bits - 1)
	return v >= -max && v < max
}

func fitsUnsignedBits(v uint64, bits int) bool {
	if bits >= 64 {
		return true
	}
	return v < uint64(1)<<bits
}
