// Package evtid provides the 128-bit identifier type used throughout
// evtrace for provider identities and activity correlation.
package evtid

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GUID is a 128-bit identifier. The zero value means "none"; used for
// both an unset activity ID and (where forbidden) an invalid provider ID.
type GUID [16]byte

// Nil is the all-zero GUID.
var Nil GUID

// New returns a new random GUID (UUIDv4), following the same
// github.com/google/uuid generator the rest of the pack uses for span and
// trace identifiers.
func New() GUID {
	var g GUID
	copy(g[:], uuid.New()[:])
	return g
}

// IsZero reports whether g is the all-zero GUID.
func (g GUID) IsZero() bool {
	return g == Nil
}

// String renders the canonical dashed hex form, e.g.
// "4f9c2b3a-1d2e-4a5b-8c6d-7e8f90a1b2c3".
func (g GUID) String() string {
	return uuid.UUID(g).String()
}

// HexNoDash renders the 32-character lowercase hex form with no dashes or
// braces, the form spec.md requires for activity IDs embedded in a text
// sink's rendered line.
func (g GUID) HexNoDash() string {
	return hex.EncodeToString(g[:])
}

// Parse accepts the canonical dashed form, a bare 32-hex form, or a
// curly-brace form ("{4f9c2b3a-...}") as produced by the declarative XML
// schema's providerID attribute.
func Parse(s string) (GUID, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("evtid: invalid guid %q: %w", s, err)
	}
	var g GUID
	copy(g[:], u[:])
	return g, nil
}

// MarshalText implements encoding.TextMarshaler so GUID round-trips through
// JSON as a plain string, matching the canonical form produced by String.
func (g GUID) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GUID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}
