package optimize

import "taskopt/internal/graph"

// FunctionsOf collects, by identity, every callable contained anywhere
// inside a nested task value (walking lists and nested task arguments),
// unwrapping partial-application wrappers via graph.UnwrapPartial.
//
// Grounded on spec.md §4.10 / §4.5 / original_source's
// optimization.py:functions_of + unwrap_partial.
func FunctionsOf(v graph.Value) map[string]graph.Callable {
	out := map[string]graph.Callable{}
	work := []graph.Value{v}
	for len(work) > 0 {
		var next []graph.Value
		for _, item := range work {
			switch t := item.(type) {
			case graph.Task:
				if t.Fn != nil {
					fn := graph.UnwrapPartial(t.Fn)
					out[fn.Identity()] = fn
				}
				next = append(next, t.Args...)
			case graph.List:
				next = append(next, t.Items...)
			}
		}
		work = next
	}
	return out
}

// InlineFunctions finds every key whose value is a task, all of whose
// nested callables belong to fastFunctions, that has at least one
// dependent and is not itself a protected output, inlines those keys via
// Inline, then deletes them.
//
// Grounded on spec.md §4.5 / original_source's optimization.py:inline_functions.
func InlineFunctions(g graph.Graph, output []graph.Key, fastFunctions []graph.Callable, inlineConstants bool, deps *graph.DepSet) (graph.Graph, error) {
	if len(fastFunctions) == 0 {
		return g.Clone(), nil
	}

	outputSet := graph.NewKeySet(output...)
	fast := map[string]struct{}{}
	for _, c := range fastFunctions {
		fast[graph.UnwrapPartial(c).Identity()] = struct{}{}
	}

	if deps == nil {
		deps = graph.AllDependencySets(g)
	}
	dependents := graph.ReverseDict(deps)

	var keys []graph.Key
	g.Each(func(k graph.Key, v graph.Value) {
		if !graph.IsTask(v) || outputSet.Contains(k) {
			return
		}
		dep, _ := dependents.Get(k)
		if dep.Len() == 0 {
			return
		}
		if inlinable(v, fast) {
			keys = append(keys, k)
		}
	})

	if len(keys) == 0 {
		return g.Clone(), nil
	}

	out, err := Inline(g, keys, inlineConstants, deps)
	if err != nil {
		return graph.Graph{}, err
	}
	for _, k := range keys {
		out.Delete(k)
	}
	return out, nil
}

func inlinable(v graph.Value, fast map[string]struct{}) bool {
	for _, fn := range FunctionsOf(v) {
		if _, ok := fast[fn.Identity()]; !ok {
			return false
		}
	}
	return true
}
