package graph

// DependencyList collects, in encounter order and preserving multiplicity,
// the keys referenced transitively inside v's immediate structure. A
// candidate key reference is included iff it is present in g (spec's
// "hashable and a member of the graph"); a reference to a key outside the
// graph (an undefined external input) is silently dropped, matching the
// source's `if w in dsk`.
//
// Multiplicity matters: fuse_linear and fuse both use the *count* of
// dependency occurrences (not just distinct dependencies) to decide
// fusibility, so this must not deduplicate.
func DependencyList(g Graph, v Value) []Key {
	var out []Key
	var walk func(Value)
	walk = func(v Value) {
		switch t := v.(type) {
		case KeyRef:
			if g.Has(t.K) {
				out = append(out, t.K)
			}
		case List:
			for _, it := range t.Items {
				walk(it)
			}
		case Task:
			for _, a := range t.Args {
				walk(a)
			}
		}
	}
	walk(v)
	return out
}

// DependencyListOfKey is DependencyList applied to the value currently
// bound to key.
func DependencyListOfKey(g Graph, key Key) ([]Key, error) {
	v, ok := g.Get(key)
	if !ok {
		return nil, MissingKeyf("key not in graph: %s", key)
	}
	return DependencyList(g, v), nil
}

// DependencySet is DependencyList deduplicated into a KeySet.
func DependencySet(g Graph, v Value) KeySet {
	return NewKeySet(DependencyList(g, v)...)
}

// DependencySetOfKey is DependencySet applied to the value currently bound
// to key.
func DependencySetOfKey(g Graph, key Key) (KeySet, error) {
	v, ok := g.Get(key)
	if !ok {
		return nil, MissingKeyf("key not in graph: %s", key)
	}
	return DependencySet(g, v), nil
}

// DepList is a collection mapping each owner key to its dependency list
// (multiplicity preserved), the list-form dependency map of spec.md §3.
// Owners are not ordered: Keys returns them in unspecified order.
type DepList struct {
	owners map[string]Key
	lists  map[string][]Key
}

// NewDepList returns an empty DepList.
func NewDepList() *DepList {
	return &DepList{owners: map[string]Key{}, lists: map[string][]Key{}}
}

// AllDependencyLists computes the list-form dependency map for every key in g.
func AllDependencyLists(g Graph) *DepList {
	d := NewDepList()
	for _, k := range g.Keys() {
		v, _ := g.Get(k)
		d.Set(k, DependencyList(g, v))
	}
	return d
}

func (d *DepList) Set(owner Key, deps []Key) {
	d.owners[owner.CanonicalString()] = owner
	d.lists[owner.CanonicalString()] = deps
}

func (d *DepList) Get(owner Key) ([]Key, bool) {
	v, ok := d.lists[owner.CanonicalString()]
	return v, ok
}

func (d *DepList) Delete(owner Key) {
	cs := owner.CanonicalString()
	delete(d.owners, cs)
	delete(d.lists, cs)
}

func (d *DepList) Len() int { return len(d.lists) }

func (d *DepList) Keys() []Key {
	out := make([]Key, 0, len(d.owners))
	for _, k := range d.owners {
		out = append(out, k)
	}
	return out
}

// ToSet converts the list-form map into a set-form DepSet, deduplicating
// each owner's dependency list.
func (d *DepList) ToSet() *DepSet {
	out := NewDepSet()
	for cs, owner := range d.owners {
		out.Set(owner, NewKeySet(d.lists[cs]...))
	}
	return out
}

// DepSet is a collection mapping each owner key to its dependency set, the
// set-form dependency map of spec.md §3. Owners are not ordered: Keys
// returns them in unspecified order.
type DepSet struct {
	owners map[string]Key
	sets   map[string]KeySet
}

// NewDepSet returns an empty DepSet.
func NewDepSet() *DepSet {
	return &DepSet{owners: map[string]Key{}, sets: map[string]KeySet{}}
}

// AllDependencySets computes the set-form dependency map for every key in g.
func AllDependencySets(g Graph) *DepSet {
	d := NewDepSet()
	for _, k := range g.Keys() {
		v, _ := g.Get(k)
		d.Set(k, DependencySet(g, v))
	}
	return d
}

func (d *DepSet) Set(owner Key, deps KeySet) {
	d.owners[owner.CanonicalString()] = owner
	d.sets[owner.CanonicalString()] = deps
}

func (d *DepSet) Get(owner Key) (KeySet, bool) {
	v, ok := d.sets[owner.CanonicalString()]
	return v, ok
}

func (d *DepSet) Delete(owner Key) {
	cs := owner.CanonicalString()
	delete(d.owners, cs)
	delete(d.sets, cs)
}

func (d *DepSet) Len() int { return len(d.sets) }

func (d *DepSet) Keys() []Key {
	out := make([]Key, 0, len(d.owners))
	for _, k := range d.owners {
		out = append(out, k)
	}
	return out
}

// Clone returns an independent deep-enough copy (owner sets are cloned;
// Key/Value payloads are never mutated in place so need no deeper copy).
func (d *DepSet) Clone() *DepSet {
	out := NewDepSet()
	for cs, owner := range d.owners {
		out.owners[cs] = owner
		out.sets[cs] = d.sets[cs].Clone()
	}
	return out
}

// ReverseDict produces {v: {k | v ∈ deps[k]}}, guaranteeing every key
// appearing anywhere as a dependency value is present in the result (with
// an empty set if it has no dependents), per spec.md §4.2.
func ReverseDict(d *DepSet) *DepSet {
	out := NewDepSet()
	for _, owner := range d.Keys() {
		if _, ok := out.Get(owner); !ok {
			out.Set(owner, KeySet{})
		}
	}
	for _, owner := range d.Keys() {
		deps, _ := d.Get(owner)
		for _, dep := range deps.Slice() {
			cur, ok := out.Get(dep)
			if !ok {
				cur = KeySet{}
			}
			cur.Add(owner)
			out.Set(dep, cur)
		}
	}
	return out
}
