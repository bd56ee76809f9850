package optimize

import (
	"taskopt/internal/eval"
	"taskopt/internal/graph"
)

// SubgraphCallable packages a small subgraph as a single callable: calling
// it runs the packaged graph to completion against Dsk, out, with Inkeys
// bound (in order) to the call's arguments.
//
// Grounded on spec.md §4.8 / original_source's optimization.py:SubgraphCallable.
type SubgraphCallable struct {
	Dsk    graph.Graph
	Outkey graph.Key
	Inkeys []graph.Key
	Name   string
}

// NewSubgraphCallable returns a SubgraphCallable with the default name
// "subgraph_callable", mirroring the Python constructor's default.
func NewSubgraphCallable(dsk graph.Graph, outkey graph.Key, inkeys []graph.Key) SubgraphCallable {
	return SubgraphCallable{Dsk: dsk, Outkey: outkey, Inkeys: inkeys, Name: "subgraph_callable"}
}

// Identity is the Go analogue of __eq__/__hash__, which compare on
// (name, outkey, set(inkeys)) — the packaged subgraph's own contents are
// deliberately excluded, matching the Python source.
func (s SubgraphCallable) Identity() string {
	set := graph.NewKeySet(s.Inkeys...)
	id := "subgraph:" + s.Name + "\x1f" + s.Outkey.CanonicalString()
	for _, k := range set.SortedSlice() {
		id += "\x1f" + k.CanonicalString()
	}
	return id
}

// Call runs Dsk with Inkeys bound to args, in order, and returns Outkey's
// result.
func (s SubgraphCallable) Call(args []any) (any, error) {
	if len(args) != len(s.Inkeys) {
		return nil, graph.ArityMismatchf("expected %d args, got %d", len(s.Inkeys), len(args))
	}
	cache := eval.NewMemCache()
	for i, k := range s.Inkeys {
		cache.Set(k.CanonicalString(), args[i])
	}
	results, err := eval.Get(s.Dsk, []graph.Key{s.Outkey}, cache, nil)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// inplaceFuseSubgraphs is Fuse's subroutine for fuse_subgraphs: it locates
// every remaining maximal linear chain (independent of the reduction
// heuristic's width/height budget) and collapses each one with >= 2 tasks
// into a single SubgraphCallable node, mutating out/depsSet/fusedTrees.
//
// Grounded on spec.md §4.8 / original_source's
// optimization.py:_inplace_fuse_subgraphs.
func inplaceFuseSubgraphs(out graph.Graph, keys graph.KeySet, haveKeys bool, depsSet *graph.DepSet, fusedTrees map[string][]graph.Key, renameKeys bool) {
	chains := buildSubgraphChains(out, depsSet, keys, haveKeys)

	for _, chain := range chains {
		subgraph := graph.New()
		for _, k := range chain {
			v, _ := out.Get(k)
			subgraph.Set(k, v)
		}
		outkey := chain[0]
		tailDeps, _ := depsSet.Get(chain[len(chain)-1])
		depsSet.Set(outkey, tailDeps)

		for _, k := range chain[1:] {
			depsSet.Delete(k)
			out.Delete(k)
		}

		inkeys := tailDeps.SortedSlice()
		args := make([]graph.Value, len(inkeys))
		for i, k := range inkeys {
			args[i] = graph.KeyRef{K: k}
		}
		out.Set(outkey, graph.Task{Fn: NewSubgraphCallable(subgraph, outkey, inkeys), Args: args})

		if renameKeys {
			var chain2 []graph.Key
			for _, k := range chain {
				if sub, ok := fusedTrees[k.CanonicalString()]; ok {
					delete(fusedTrees, k.CanonicalString())
					chain2 = append(chain2, sub...)
				} else {
					chain2 = append(chain2, k)
				}
			}
			fusedTrees[outkey.CanonicalString()] = chain2
		}
	}
}

// buildSubgraphChains is _inplace_fuse_subgraphs' chain-location pass:
// structurally the same single-parent/single-child partition as
// buildLinearChains, but driven off the already-mutated graph/depsSet pair
// Fuse's reduction pass leaves behind, and dropping any chain with fewer
// than two executable tasks (a chain of bare aliases/literals gains nothing
// from being wrapped in a SubgraphCallable).
func buildSubgraphChains(out graph.Graph, depsSet *graph.DepSet, keys graph.KeySet, haveKeys bool) [][]graph.Key {
	child2parent := map[string]graph.Key{}
	keyByCS := map[string]graph.Key{}
	unfusible := graph.NewKeySet()

	for _, parent := range out.Keys() {
		keyByCS[parent.CanonicalString()] = parent
		deps, _ := depsSet.Get(parent)
		hasManyChildren := deps.Len() > 1
		for _, child := range deps.Slice() {
			keyByCS[child.CanonicalString()] = child
			cs := child.CanonicalString()
			switch {
			case haveKeys && keys.Contains(child):
				unfusible.Add(child)
			default:
				if _, ok := child2parent[cs]; ok {
					delete(child2parent, cs)
					unfusible.Add(child)
				} else if hasManyChildren {
					unfusible.Add(child)
				} else if !unfusible.Contains(child) {
					child2parent[cs] = parent
				}
			}
		}
	}

	parent2child := map[string]graph.Key{}
	for cs, parent := range child2parent {
		parent2child[parent.CanonicalString()] = keyByCS[cs]
	}

	var chains [][]graph.Key
	for len(child2parent) > 0 {
		var childCS string
		var parent0 graph.Key
		for k, v := range child2parent {
			childCS, parent0 = k, v
			break
		}
		child0 := keyByCS[childCS]
		delete(child2parent, childCS)

		chain := []graph.Key{child0, parent0}
		parent := parent0
		for {
			pcs := parent.CanonicalString()
			next, ok := child2parent[pcs]
			if !ok {
				break
			}
			delete(child2parent, pcs)
			delete(parent2child, next.CanonicalString())
			parent = next
			chain = append(chain, parent)
		}
		reverseKeySlice(chain)

		child := child0
		for {
			ccs := child.CanonicalString()
			next, ok := parent2child[ccs]
			if !ok {
				break
			}
			delete(parent2child, ccs)
			delete(child2parent, next.CanonicalString())
			child = next
			chain = append(chain, child)
		}

		ntasks := 0
		for _, k := range chain {
			v, ok := out.Get(k)
			if ok && graph.IsTask(v) {
				ntasks++
			}
		}
		if ntasks > 1 {
			chains = append(chains, chain)
		}
	}
	return chains
}
