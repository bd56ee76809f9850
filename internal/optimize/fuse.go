package optimize

import (
	"go.uber.org/zap"

	"taskopt/internal/graph"
	"taskopt/internal/logging"
)

// fuseInfo is one frame of the info stack: a not-yet-committed candidate
// for fusion into its eventual parent, carrying the running height/width/
// node-count/fudge metrics the accept/reject heuristic below needs.
type fuseInfo struct {
	key       graph.Key
	val       graph.Value
	fusedKeys []graph.Key // nil when renaming is disabled
	height    int
	width     int
	numNodes  int
	fudge     int
	edges     graph.KeySet
}

func renamedSingle(renameKeys bool, k graph.Key) []graph.Key {
	if !renameKeys {
		return nil
	}
	return []graph.Key{k}
}

// reducibleEligible mirrors fuse's `type(v) is tuple or isinstance(v,
// (Number, str))` filter: only Task values and Literal values whose payload
// is a number, bool or string can participate in a reduction (an opaque
// Literal payload, a KeyRef alias or a List can't be folded via Subs in a
// way that preserves its meaning).
func reducibleEligible(v graph.Value) bool {
	switch t := v.(type) {
	case graph.Task:
		return true
	case graph.Literal:
		switch t.X.(type) {
		case string, bool, int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64, uintptr,
			float32, float64, complex64, complex128:
			return true
		}
		return false
	default:
		return false
	}
}

// Fuse collapses reduction regions — subgraphs with at most one dependent
// per node — into single tasks, trading parallelism for coarser, cheaper-
// to-schedule granularity. ave_width (opts.AveWidth) is the key tuning
// knob; the other thresholds default from it when unset.
//
// Grounded on spec.md §4.7 / original_source's optimization.py:fuse.
func Fuse(g graph.Graph, opts FuseOptions) (graph.Graph, *graph.DepSet, error) {
	resolved := opts.resolve()

	listDeps := opts.Dependencies
	if listDeps == nil {
		listDeps = graph.AllDependencyLists(g)
	}

	keyByCS := map[string]graph.Key{}
	for _, k := range g.Keys() {
		keyByCS[k.CanonicalString()] = k
	}

	rdeps := map[string][]graph.Key{}
	depsSet := graph.NewDepSet()
	for _, k := range listDeps.Keys() {
		vals, _ := listDeps.Get(k)
		for _, v := range vals {
			cs := v.CanonicalString()
			rdeps[cs] = append(rdeps[cs], k)
		}
		depsSet.Set(k, graph.NewKeySet(vals...))
	}

	if resolved.aveWidth == 0 || resolved.maxHeight == 0 {
		return g.Clone(), depsSet, nil
	}

	renamer := opts.Rename
	if renamer == nil && !opts.DisableRename {
		maxLen := opts.MaxFusedKeyLength
		if maxLen == 0 {
			maxLen = 120
		}
		renamer = func(chain []graph.Key) (graph.Key, bool) {
			return defaultReductionRenamer(chain, maxLen)
		}
	}
	renameKeys := renamer != nil

	reducible := graph.NewKeySet()
	for cs, dependents := range rdeps {
		if len(dependents) == 1 {
			reducible.Add(keyByCS[cs])
		}
	}
	for _, k := range opts.Keys {
		reducible.Remove(k)
	}
	g.Each(func(k graph.Key, v graph.Value) {
		if !reducibleEligible(v) {
			reducible.Remove(k)
		}
	})

	fuseSubgraphsPossible := false
	for _, dependents := range rdeps {
		seen := map[string]struct{}{}
		for _, d := range dependents {
			seen[d.CanonicalString()] = struct{}{}
		}
		if len(seen) == 1 {
			fuseSubgraphsPossible = true
			break
		}
	}
	if reducible.Len() == 0 && (!opts.FuseSubgraphs || !fuseSubgraphsPossible) {
		return g.Clone(), depsSet, nil
	}

	out := g.Clone()
	fusedTrees := map[string][]graph.Key{}

	for reducible.Len() > 0 {
		parent, _ := reducible.Pop()
		reducible.Add(parent)
		for reducible.Contains(parent) {
			parent = rdeps[parent.CanonicalString()][0]
		}

		childrenStack := []graph.Key{parent}
		parentDeps, _ := depsSet.Get(parent)
		childrenStack = append(childrenStack, reducible.Intersect(parentDeps).Slice()...)

		var infoStack []fuseInfo

		for {
			child := childrenStack[len(childrenStack)-1]
			if !child.Equal(parent) {
				childDeps, _ := depsSet.Get(child)
				children := reducible.Intersect(childDeps)
				for children.Len() > 0 {
					childrenStack = append(childrenStack, children.Slice()...)
					parent = child
					child = childrenStack[len(childrenStack)-1]
					childDeps, _ = depsSet.Get(child)
					children = reducible.Intersect(childDeps)
				}
				childrenStack = childrenStack[:len(childrenStack)-1]

				val, _ := out.Get(child)
				cd, _ := depsSet.Get(child)
				infoStack = append(infoStack, fuseInfo{
					key: child, val: val, fusedKeys: renamedSingle(renameKeys, child),
					height: 1, width: 1, numNodes: 1, fudge: 0,
					edges: cd.Diff(reducible),
				})
				continue
			}

			childrenStack = childrenStack[:len(childrenStack)-1]
			depsParent, _ := depsSet.Get(parent)
			edges := depsParent.Diff(reducible)
			children := depsParent.Diff(edges)
			numChildren := children.Len()

			var stop bool
			if numChildren == 1 {
				stop = fuseOneChild(out, depsSet, reducible, fusedTrees, &infoStack, len(childrenStack), parent, depsParent, edges, renameKeys, resolved)
			} else {
				stop = fuseManyChildren(out, depsSet, reducible, fusedTrees, &infoStack, len(childrenStack), parent, depsParent, edges, children, numChildren, renameKeys, resolved)
			}
			if stop {
				break
			}
			parent = rdeps[parent.CanonicalString()][0]
		}
	}

	if opts.FuseSubgraphs {
		inplaceFuseSubgraphs(out, graph.NewKeySet(opts.Keys...), len(opts.Keys) > 0, depsSet, fusedTrees, renameKeys)
	}

	if renameKeys {
		for rootCS, fusedKeys := range fusedTrees {
			rootKey, ok := keyByCS[rootCS]
			if !ok {
				continue
			}
			alias, ok := renamer(fusedKeys)
			if !ok {
				continue
			}
			alias = disambiguate(out, alias)
			rootVal, ok := out.Get(rootKey)
			if !ok {
				continue
			}
			logging.Get().Debug("fuse: renamed fused region",
				zap.String("root", rootKey.String()), zap.String("alias", alias.String()))
			out.Set(alias, rootVal)
			out.Set(rootKey, graph.KeyRef{K: alias})
			rootDeps, _ := depsSet.Get(rootKey)
			depsSet.Set(alias, rootDeps)
			depsSet.Set(rootKey, graph.NewKeySet(alias))
		}
	}

	return out, depsSet, nil
}

// fuseOneChild handles the `num_children == 1` branch of fuse's traversal:
// try to substitute the single popped child into parent, subject to the
// ave_width/max_depth_new_edges acceptance test. Returns true when the
// caller's enclosing loop should stop (this island's traversal is done).
func fuseOneChild(
	out graph.Graph, depsSet *graph.DepSet, reducible graph.KeySet,
	fusedTrees map[string][]graph.Key, infoStackP *[]fuseInfo, childrenStackLen int,
	parent graph.Key, depsParent graph.KeySet, edges graph.KeySet, renameKeys bool, r resolved,
) bool {
	infoStack := *infoStackP
	info := infoStack[len(infoStack)-1]
	infoStack = infoStack[:len(infoStack)-1]
	*infoStackP = infoStack

	childKey, childTask, childKeys := info.key, info.val, info.fusedKeys
	height, width, numNodes, fudge, childrenEdges := info.height, info.width, info.numNodes, info.fudge, info.edges
	numChildrenEdges := childrenEdges.Len()

	if fudge > numChildrenEdges-1 && numChildrenEdges-1 >= 0 {
		fudge = numChildrenEdges - 1
	}
	edges = edges.Union(childrenEdges)
	noNewEdges := edges.Len() == numChildrenEdges
	if !noNewEdges {
		fudge++
	}

	if float64(numNodes+fudge)/float64(height) <= r.aveWidth && (noNewEdges || float64(height) < r.maxDepthNewEdges) {
		parentVal, _ := out.Get(parent)
		val := graph.Subs(parentVal, childKey, childTask)
		depsParent.Remove(childKey)
		poppedChildDeps, _ := depsSet.Get(childKey)
		depsSet.Delete(childKey)
		depsParent = depsParent.Union(poppedChildDeps)
		depsSet.Set(parent, depsParent)
		out.Delete(childKey)
		reducible.Remove(childKey)
		if renameKeys {
			childKeys = append(childKeys, parent)
			fusedTrees[parent.CanonicalString()] = childKeys
			delete(fusedTrees, childKey.CanonicalString())
		}

		if childrenStackLen > 0 {
			newHeight, newNumNodes := height, numNodes
			if !noNewEdges {
				newHeight, newNumNodes = height+1, numNodes+1
			}
			*infoStackP = append(infoStack, fuseInfo{
				key: parent, val: val, fusedKeys: childKeys,
				height: newHeight, width: width, numNodes: newNumNodes, fudge: fudge, edges: edges,
			})
			return false
		}
		logging.Get().Debug("fuse: accepted single-child merge",
			zap.String("child", childKey.String()), zap.String("parent", parent.String()))
		out.Set(parent, val)
		return true
	}

	logging.Get().Debug("fuse: rejected single-child merge",
		zap.String("child", childKey.String()), zap.String("parent", parent.String()))
	out.Set(childKey, childTask)
	reducible.Remove(childKey)
	if childrenStackLen > 0 {
		if fudge > int(r.aveWidth-1) {
			fudge = int(r.aveWidth - 1)
		}
		parentVal, _ := out.Get(parent)
		*infoStackP = append(infoStack, fuseInfo{
			key: parent, val: parentVal, fusedKeys: renamedSingle(renameKeys, parent),
			height: 1, width: width, numNodes: 1, fudge: fudge, edges: edges,
		})
		return false
	}
	return true
}

// fuseManyChildren handles fuse's `num_children > 1` branch: aggregate the
// popped children's metrics and accept the merge only if it stays within
// both the width and height budgets.
func fuseManyChildren(
	out graph.Graph, depsSet *graph.DepSet, reducible graph.KeySet,
	fusedTrees map[string][]graph.Key, infoStackP *[]fuseInfo, childrenStackLen int,
	parent graph.Key, depsParent graph.KeySet, edges graph.KeySet, children graph.KeySet, numChildren int,
	renameKeys bool, r resolved,
) bool {
	infoStack := *infoStackP
	childrenInfo := append([]fuseInfo(nil), infoStack[len(infoStack)-numChildren:]...)
	infoStack = infoStack[:len(infoStack)-numChildren]
	*infoStackP = infoStack

	var childKeysAgg []graph.Key
	height, width, numSingleNodes, numNodes, fudge := 1, 0, 0, 0, 0
	childrenEdges := graph.NewKeySet()
	maxNumEdges := 0
	for _, ci := range childrenInfo {
		if ci.height == 1 {
			numSingleNodes++
		} else if ci.height > height {
			height = ci.height
		}
		width += ci.width
		numNodes += ci.numNodes
		fudge += ci.fudge
		if ci.edges.Len() > maxNumEdges {
			maxNumEdges = ci.edges.Len()
		}
		childrenEdges = childrenEdges.Union(ci.edges)
	}
	numChildrenEdges := childrenEdges.Len()
	extra := numChildrenEdges - maxNumEdges
	if extra < 0 {
		extra = 0
	}
	addl := numChildren - 1
	if extra < addl {
		addl = extra
	}
	fudge += addl

	if fudge > numChildrenEdges-1 && numChildrenEdges-1 >= 0 {
		fudge = numChildrenEdges - 1
	}
	edges = edges.Union(childrenEdges)
	noNewEdges := edges.Len() == numChildrenEdges
	if !noNewEdges {
		fudge++
	}

	isWidth := float64(numSingleNodes) <= r.aveWidth && float64(width) <= r.maxWidth
	isHeight := float64(height) <= r.maxHeight && (noNewEdges || float64(height) < r.maxDepthNewEdges)

	if float64(numNodes+fudge)/float64(height) <= r.aveWidth && isWidth && isHeight {
		parentVal, _ := out.Get(parent)
		val := parentVal
		childrenDeps := graph.NewKeySet()
		for _, ci := range childrenInfo {
			val = graph.Subs(val, ci.key, ci.val)
			out.Delete(ci.key)
			cd, _ := depsSet.Get(ci.key)
			depsSet.Delete(ci.key)
			childrenDeps = childrenDeps.Union(cd)
			reducible.Remove(ci.key)
			if renameKeys {
				delete(fusedTrees, ci.key.CanonicalString())
				childKeysAgg = append(childKeysAgg, ci.fusedKeys...)
			}
		}
		depsParent = depsParent.Diff(children)
		depsParent = depsParent.Union(childrenDeps)
		depsSet.Set(parent, depsParent)

		if renameKeys {
			childKeysAgg = append(childKeysAgg, parent)
			fusedTrees[parent.CanonicalString()] = childKeysAgg
		}

		if childrenStackLen > 0 {
			*infoStackP = append(infoStack, fuseInfo{
				key: parent, val: val, fusedKeys: childKeysAgg,
				height: height + 1, width: width, numNodes: numNodes + 1, fudge: fudge, edges: edges,
			})
			return false
		}
		logging.Get().Debug("fuse: accepted multi-child merge",
			zap.String("parent", parent.String()), zap.Int("numChildren", numChildren))
		out.Set(parent, val)
		return true
	}

	logging.Get().Debug("fuse: rejected multi-child merge",
		zap.String("parent", parent.String()), zap.Int("numChildren", numChildren))
	for _, ci := range childrenInfo {
		out.Set(ci.key, ci.val)
		reducible.Remove(ci.key)
	}
	if childrenStackLen > 0 {
		if float64(width) > r.maxWidth {
			width = int(r.maxWidth)
		}
		if fudge > int(r.aveWidth-1) {
			fudge = int(r.aveWidth - 1)
		}
		parentVal, _ := out.Get(parent)
		*infoStackP = append(infoStack, fuseInfo{
			key: parent, val: parentVal, fusedKeys: renamedSingle(renameKeys, parent),
			height: 1, width: width, numNodes: 1, fudge: fudge, edges: edges,
		})
		return false
	}
	return true
}
