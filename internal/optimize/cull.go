package optimize

import "taskopt/internal/graph"

// Cull returns a new graph containing exactly the transitive closure of
// keys under the dependency relation, plus the list-form dependency map
// for every surviving key (multiplicity preserved, since FuseLinear and
// Fuse both need list length to decide fusibility).
//
// Grounded on spec.md §4.4 / original_source's optimization.py:cull.
func Cull(g graph.Graph, keys ...graph.Key) (graph.Graph, *graph.DepList, error) {
	for _, k := range keys {
		if !g.Has(k) {
			return graph.Graph{}, nil, graph.MissingKeyf("cull: %s is not a key in the graph", k)
		}
	}

	seen := graph.NewKeySet()
	deps := graph.NewDepList()
	out := graph.New()

	work := make([]graph.Key, 0, len(keys))
	for _, k := range keys {
		if !seen.Contains(k) {
			seen.Add(k)
			work = append(work, k)
		}
	}

	for len(work) > 0 {
		var next []graph.Key
		for _, k := range work {
			depList, err := graph.DependencyListOfKey(g, k)
			if err != nil {
				return graph.Graph{}, nil, err
			}
			v, _ := g.Get(k)
			out.Set(k, v)
			deps.Set(k, depList)
			for _, d := range depList {
				if !seen.Contains(d) {
					seen.Add(d)
					next = append(next, d)
				}
			}
		}
		work = next
	}

	return out, deps, nil
}
