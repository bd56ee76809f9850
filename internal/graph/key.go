package graph

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// CoordKind discriminates the concrete type carried by a Coord.
type CoordKind int8

const (
	CoordString CoordKind = iota
	CoordInt
)

// Coord is one positional coordinate of a tuple Key. Coordinates carry an
// explicit kind so that equality is type-identity-aware, matching spec
// requirement that tuple-key equality is element-wise with type-equal
// elements.
type Coord struct {
	Kind CoordKind
	Str  string
	Int  int
}

// StrCoord builds a string coordinate.
func StrCoord(s string) Coord { return Coord{Kind: CoordString, Str: s} }

// IntCoord builds an int coordinate.
func IntCoord(i int) Coord { return Coord{Kind: CoordInt, Int: i} }

func (c Coord) String() string {
	switch c.Kind {
	case CoordInt:
		return strconv.Itoa(c.Int)
	default:
		return c.Str
	}
}

// Key is a hashable identifier of a graph node. It is either a plain string
// key or a tuple key whose first element is a string base name followed by
// zero or more positional coordinates.
//
// Key is deliberately not used directly as a Go map key (a tuple key's
// coordinate slice would make the containing struct incomparable); instead
// every Key carries a memoized canonical string (CanonicalString) which is
// what graph.Graph and the dependency maps actually index by.
type Key struct {
	base   string
	coords []Coord
	tuple  bool
	ser    string
}

// NewKey builds a plain string key.
func NewKey(base string) Key {
	k := Key{base: base}
	k.ser = "s\x1f" + base
	return k
}

// NewTupleKey builds a tuple key with the given base name and coordinates.
func NewTupleKey(base string, coords ...Coord) Key {
	k := Key{base: base, coords: append([]Coord(nil), coords...), tuple: true}
	k.ser = k.serialize()
	return k
}

func (k Key) serialize() string {
	var b strings.Builder
	b.WriteString("t\x1f")
	b.WriteString(k.base)
	for _, c := range k.coords {
		b.WriteByte('\x1f')
		switch c.Kind {
		case CoordInt:
			b.WriteString("i:")
			b.WriteString(strconv.Itoa(c.Int))
		default:
			b.WriteString("s:")
			b.WriteString(c.Str)
		}
	}
	return b.String()
}

// IsTuple reports whether this is a tuple key.
func (k Key) IsTuple() bool { return k.tuple }

// BaseName returns the key's base name: the key itself for a string key, or
// the tuple's first element for a tuple key.
func (k Key) BaseName() string { return k.base }

// Coords returns a copy of the tuple's positional coordinates (nil for a
// string key).
func (k Key) Coords() []Coord {
	if len(k.coords) == 0 {
		return nil
	}
	out := make([]Coord, len(k.coords))
	copy(out, k.coords)
	return out
}

// Equal reports whether two keys are identical: same kind (string vs
// tuple), same base name, and element-wise equal coordinates.
func (k Key) Equal(other Key) bool { return k.ser == other.ser }

// Hash returns a stable, process-independent hash of the key.
func (k Key) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(k.ser))
	return h.Sum64()
}

// CanonicalString returns the memoized canonical encoding used as the
// backing string for graph maps and sets. It is not meant for display.
func (k Key) CanonicalString() string { return k.ser }

// String returns a human-readable rendering of the key.
func (k Key) String() string {
	if !k.tuple {
		return k.base
	}
	parts := make([]string, 0, len(k.coords))
	for _, c := range k.coords {
		parts = append(parts, c.String())
	}
	if len(parts) == 0 {
		return fmt.Sprintf("(%s)", k.base)
	}
	return fmt.Sprintf("(%s, %s)", k.base, strings.Join(parts, ", "))
}

// Zero reports whether k is the zero Key value (useful as a "no key" marker).
func (k Key) Zero() bool { return k.ser == "" }
