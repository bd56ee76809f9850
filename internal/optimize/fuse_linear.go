package optimize

import "taskopt/internal/graph"

// FuseLinear collapses every maximal linear chain of single-dependency,
// single-dependent keys into one task, substituting each child's value into
// its parent repeatedly. A node is unfusible if it is explicitly protected
// via opts.Keys, is reached by more than one parent, or is itself the
// dependency of a node with more than one dependency.
//
// Grounded on spec.md §4.6 / original_source's optimization.py:fuse_linear.
func FuseLinear(g graph.Graph, opts LinearOptions) (graph.Graph, *graph.DepSet, error) {
	protected := graph.NewKeySet(opts.Keys...)
	protectedGiven := len(opts.Keys) > 0

	deps := opts.Dependencies
	if deps == nil {
		deps = graph.AllDependencyLists(g)
	}

	chains := buildLinearChains(g, deps, protected)

	// Chain construction needs list-form dependencies (multiplicity matters
	// for hasManyChildren); the substitution/aliasing below needs set-form,
	// matching the Python source's `dependencies = {k: set(v) ...}` switch.
	depSets := deps.ToSet()

	renamer := opts.Rename
	if renamer == nil && !opts.DisableRename {
		renamer = defaultLinearRenamer
	}

	out := g.Clone()
	fused := graph.NewKeySet()
	aliases := graph.NewKeySet()
	aliasTarget := map[string]graph.Key{}

	for _, chain := range chains {
		var newKey graph.Key
		isRenamed := false
		if renamer != nil {
			if k, ok := renamer(chain); ok {
				newKey = disambiguate(out, k)
				isRenamed = true
			}
		}

		child := chain[len(chain)-1]
		val, _ := out.Get(child)
		rest := chain[:len(chain)-1]
		for i := len(rest) - 1; i >= 0; i-- {
			parent := rest[i]
			childSet, _ := depSets.Get(child)
			parentSet, _ := depSets.Get(parent)
			parentSet = parentSet.Union(childSet)
			parentSet.Remove(child)
			depSets.Set(parent, parentSet)
			depSets.Delete(child)

			parentVal, _ := out.Get(parent)
			val = graph.Subs(parentVal, child, val)
			fused.Add(child)
			child = parent
		}
		fused.Add(child)

		// Every chain member except the survivor (chain[0], into which all
		// others were substituted) is dropped from the output graph.
		for _, k := range chain[1:] {
			out.Delete(k)
		}

		if isRenamed {
			childSet, _ := depSets.Get(child)
			out.Set(newKey, val)
			out.Set(child, graph.KeyRef{K: newKey})
			depSets.Set(newKey, childSet)
			depSets.Set(child, graph.NewKeySet(newKey))
			aliases.Add(child)
			aliasTarget[child.CanonicalString()] = newKey
		} else {
			out.Set(child, val)
		}
	}

	if aliases.Len() > 0 {
		for _, key := range out.Keys() {
			if fused.Contains(key) {
				continue
			}
			depSet, ok := depSets.Get(key)
			if !ok {
				continue
			}
			changed := false
			for _, d := range depSet.Slice() {
				if !aliases.Contains(d) {
					continue
				}
				newKey := aliasTarget[d.CanonicalString()]
				depSet.Remove(d)
				depSet.Add(newKey)
				changed = true
				v, _ := out.Get(key)
				out.Set(key, graph.Subs(v, d, graph.KeyRef{K: newKey}))
			}
			if changed {
				depSets.Set(key, depSet)
			}
		}
		if protectedGiven {
			for _, alias := range aliases.Slice() {
				if !protected.Contains(alias) {
					out.Delete(alias)
					depSets.Delete(alias)
				}
			}
		}
	}

	return out, depSets, nil
}

// buildLinearChains partitions the graph's single-parent/single-child edges
// into maximal chains. Each chain is ordered [downstream-terminal, ...,
// upstream-root]: chain[0] is the key that ends up as the alias after
// renaming, chain[len-1] is the topmost producer with no further reducible
// ancestor.
func buildLinearChains(g graph.Graph, deps *graph.DepList, protected graph.KeySet) [][]graph.Key {
	child2parent := map[string]graph.Key{}
	keyByCS := map[string]graph.Key{}
	unfusible := graph.NewKeySet()

	for _, parent := range g.Keys() {
		keyByCS[parent.CanonicalString()] = parent
		dl, _ := deps.Get(parent)
		hasManyChildren := len(dl) > 1
		for _, child := range dl {
			keyByCS[child.CanonicalString()] = child
			cs := child.CanonicalString()
			switch {
			case protected.Contains(child):
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
		chains = append(chains, chain)
	}
	return chains
}

func reverseKeySlice(ks []graph.Key) {
	for i, j := 0, len(ks)-1; i < j; i, j = i+1, j-1 {
		ks[i], ks[j] = ks[j], ks[i]
	}
}
