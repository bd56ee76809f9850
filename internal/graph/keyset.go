package graph

import "sort"

// KeySet is an unordered collection of distinct keys, keyed internally by
// canonical string for the same reason Graph is.
type KeySet map[string]Key

// NewKeySet builds a KeySet from the given keys.
func NewKeySet(keys ...Key) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k.CanonicalString()] = k
	}
	return s
}

// Add inserts k into the set.
func (s KeySet) Add(k Key) { s[k.CanonicalString()] = k }

// Remove deletes k from the set.
func (s KeySet) Remove(k Key) { delete(s, k.CanonicalString()) }

// Contains reports whether k is a member.
func (s KeySet) Contains(k Key) bool {
	_, ok := s[k.CanonicalString()]
	return ok
}

// Len returns the number of members.
func (s KeySet) Len() int { return len(s) }

// Clone returns an independent copy.
func (s KeySet) Clone() KeySet {
	out := make(KeySet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Union returns a new set containing members of both s and other.
func (s KeySet) Union(other KeySet) KeySet {
	out := s.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Intersect returns a new set containing members present in both s and other.
func (s KeySet) Intersect(other KeySet) KeySet {
	out := make(KeySet)
	for k, v := range s {
		if _, ok := other[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Diff returns a new set containing members of s not present in other.
func (s KeySet) Diff(other KeySet) KeySet {
	out := make(KeySet)
	for k, v := range s {
		if _, ok := other[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// Slice returns the members in unspecified order.
func (s KeySet) Slice() []Key {
	out := make([]Key, 0, len(s))
	for _, v := range s {
		out = append(out, v)
	}
	return out
}

// SortedSlice returns the members sorted by their String() rendering, for
// deterministic output (e.g. the key renamer).
func (s KeySet) SortedSlice() []Key {
	out := s.Slice()
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Pop removes and returns an arbitrary member (Go map iteration order is
// randomized, which is fine: spec.md §9 notes traversals that iterate over
// set contents must not be tie-break sensitive).
func (s KeySet) Pop() (Key, bool) {
	for k, v := range s {
		delete(s, k)
		return v, true
	}
	return Key{}, false
}
