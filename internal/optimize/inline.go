package optimize

import (
	"taskopt/internal/graph"
	"taskopt/internal/topo"
)

// Inline substitutes every occurrence of each key in keys with its defining
// value. When inlineConstants is set, the key set is automatically expanded
// to include aliases (a key bound to a bare KeyRef) and keys bound to a
// non-task value with no dependencies. Substitutions run in topological
// order so a key that itself depends on another inlined key sees the
// already-substituted form. Inlined keys are NOT removed from the returned
// graph; run Cull afterwards to drop them.
//
// Grounded on spec.md §4.5 / original_source's optimization.py:inline.
func Inline(g graph.Graph, keys []graph.Key, inlineConstants bool, deps *graph.DepSet) (graph.Graph, error) {
	if deps == nil {
		deps = graph.AllDependencySets(g)
	}

	keySet := graph.NewKeySet(keys...)

	if inlineConstants {
		g.Each(func(k graph.Key, v graph.Value) {
			if isAlias(g, v) {
				keySet.Add(k)
				return
			}
			d, _ := deps.Get(k)
			if d.Len() == 0 && !graph.IsTask(v) {
				keySet.Add(k)
			}
		})
	}

	// Restrict the subgraph to the keys actually being inlined, for toposort.
	sub := graph.New()
	for _, k := range keySet.Slice() {
		if v, ok := g.Get(k); ok {
			sub.Set(k, v)
		}
	}
	order, err := topo.Sort(sub, deps)
	if err != nil {
		return graph.Graph{}, err
	}

	keysubs := map[string]graph.Value{}
	out := graph.New()
	for _, key := range order {
		val, ok := g.Get(key)
		if !ok {
			continue
		}
		d, _ := deps.Get(key)
		for _, dep := range d.Slice() {
			if !keySet.Contains(dep) {
				continue
			}
			replace, ok := keysubs[dep.CanonicalString()]
			if !ok {
				replace, _ = g.Get(dep)
			}
			val = graph.Subs(val, dep, replace)
		}
		keysubs[key.CanonicalString()] = val
		out.Set(key, val)
	}

	g.Each(func(key graph.Key, val graph.Value) {
		if _, done := keysubs[key.CanonicalString()]; done {
			return
		}
		d, _ := deps.Get(key)
		for _, dep := range d.Slice() {
			if !keySet.Contains(dep) {
				continue
			}
			if replace, ok := keysubs[dep.CanonicalString()]; ok {
				val = graph.Subs(val, dep, replace)
			}
		}
		out.Set(key, val)
	})

	return out, nil
}

// isAlias reports whether v is a bare key reference (an alias binding).
func isAlias(g graph.Graph, v graph.Value) bool {
	ref, ok := v.(graph.KeyRef)
	return ok && g.Has(ref.K)
}
