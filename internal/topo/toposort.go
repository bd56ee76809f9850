package topo

import "taskopt/internal/graph"

// Sort returns a deterministic-per-traversal topological ordering of every
// key in g: each key is emitted only after all of its dependencies. If deps
// is nil, dependencies are computed from g via graph.AllDependencySets.
//
// Sort returns a *CycleError (wrapping ErrCycleDetected) if g contains a
// cycle reachable from any of its keys.
func Sort(g graph.Graph, deps *graph.DepSet) ([]graph.Key, error) {
	if deps == nil {
		deps = graph.AllDependencySets(g)
	}
	ordered, cycle := traverse(g.Keys(), deps, false)
	if len(cycle) > 0 {
		return nil, cycleError(cycle)
	}
	return ordered, nil
}

// GetCycle returns a cycle reachable from keys (restricted to dependencies
// recorded in deps), or nil if no cycle is reachable. If deps is nil,
// dependencies are computed from g via graph.AllDependencySets.
func GetCycle(g graph.Graph, keys []graph.Key, deps *graph.DepSet) []graph.Key {
	if deps == nil {
		deps = graph.AllDependencySets(g)
	}
	_, cycle := traverse(keys, deps, true)
	return cycle
}

// IsDAG reports whether the subgraph reachable from keys is acyclic.
func IsDAG(g graph.Graph, keys []graph.Key, deps *graph.DepSet) bool {
	return len(GetCycle(g, keys, deps)) == 0
}

// traverse runs an iterative depth-first walk seeded at each of keys,
// maintaining an explicit stack of "nodes" in place of recursion. seen holds
// keys currently on some active stack (gray); completed holds keys whose
// entire subtree has been emitted (black). Encountering a seen-but-not-
// completed key closes a cycle, which is reconstructed by unwinding the
// stack down to that key.
//
// When collectCycle is false, ordered accumulates the topological order and
// traversal stops at the first cycle found. When collectCycle is true,
// ordered is never populated; traverse only hunts for one cycle.
func traverse(keys []graph.Key, deps *graph.DepSet, collectCycle bool) (ordered []graph.Key, cycle []graph.Key) {
	completed := graph.NewKeySet()
	seen := graph.NewKeySet()

	for _, start := range keys {
		if completed.Contains(start) {
			continue
		}

		stack := []graph.Key{start}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			if completed.Contains(cur) {
				stack = stack[:len(stack)-1]
				continue
			}
			seen.Add(cur)

			curDeps, _ := deps.Get(cur)
			var pending []graph.Key
			cycleFound := false
			for _, next := range curDeps.Slice() {
				if completed.Contains(next) {
					continue
				}
				if seen.Contains(next) {
					cycle = unwind(stack, next)
					cycleFound = true
					break
				}
				pending = append(pending, next)
			}
			if cycleFound {
				return nil, cycle
			}

			if len(pending) > 0 {
				stack = append(stack, pending...)
				continue
			}

			if !collectCycle {
				ordered = append(ordered, cur)
			}
			completed.Add(cur)
			seen.Remove(cur)
			stack = stack[:len(stack)-1]
		}
	}
	return ordered, nil
}

// unwind pops stack down to (and including) target, returning the enclosed
// path from target up to the top of the stack: [target, ..., top-of-stack].
func unwind(stack []graph.Key, target graph.Key) []graph.Key {
	var path []graph.Key
	i := len(stack) - 1
	for !stack[i].Equal(target) {
		path = append(path, stack[i])
		i--
	}
	path = append(path, target)
	reverseKeys(path)
	return path
}

func reverseKeys(ks []graph.Key) {
	for i, j := 0, len(ks)-1; i < j; i, j = i+1, j-1 {
		ks[i], ks[j] = ks[j], ks[i]
	}
}
