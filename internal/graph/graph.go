package graph

// Graph is an immutable-from-the-caller's-perspective mapping from Key to
// Value. Internally it is backed by a map keyed on each Key's canonical
// string so that tuple keys (whose coordinate slice would otherwise make
// them unusable as a native Go map key) work uniformly with string keys.
type Graph struct {
	entries map[string]entry
}

type entry struct {
	key   Key
	value Value
}

// New returns an empty graph.
func New() Graph {
	return Graph{entries: make(map[string]entry)}
}

// NewWithCapacity returns an empty graph pre-sized for n entries.
func NewWithCapacity(n int) Graph {
	return Graph{entries: make(map[string]entry, n)}
}

// Set binds key to value, overwriting any prior binding.
func (g Graph) Set(key Key, value Value) {
	g.entries[key.CanonicalString()] = entry{key: key, value: value}
}

// Get returns the value bound to key, if any.
func (g Graph) Get(key Key) (Value, bool) {
	e, ok := g.entries[key.CanonicalString()]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Has reports whether key is bound in the graph.
func (g Graph) Has(key Key) bool {
	_, ok := g.entries[key.CanonicalString()]
	return ok
}

// Delete removes key from the graph.
func (g Graph) Delete(key Key) {
	delete(g.entries, key.CanonicalString())
}

// Len returns the number of bound keys.
func (g Graph) Len() int { return len(g.entries) }

// Keys returns all bound keys, in unspecified order.
func (g Graph) Keys() []Key {
	out := make([]Key, 0, len(g.entries))
	for _, e := range g.entries {
		out = append(out, e.key)
	}
	return out
}

// Clone returns a shallow copy: a new top-level map with the same Key/Value
// entries. Value trees themselves are never mutated in place by this
// module (every rewrite builds new Value trees via Subs), so a shallow
// copy is sufficient to guarantee the caller's graph is never aliased into
// a result.
func (g Graph) Clone() Graph {
	out := make(map[string]entry, len(g.entries))
	for k, v := range g.entries {
		out[k] = v
	}
	return Graph{entries: out}
}

// Each calls fn for every (key, value) pair, in unspecified order.
func (g Graph) Each(fn func(Key, Value)) {
	for _, e := range g.entries {
		fn(e.key, e.value)
	}
}
