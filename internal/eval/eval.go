package eval

import (
	"fmt"

	"taskopt/internal/graph"
	"taskopt/internal/topo"
)

// Get computes the results of out (in the given order) by executing g's
// tasks against cache, computing any missing dependency along the way. If
// cache is nil, a fresh MemCache is used. If order is nil, a topological
// order over g is computed with topo.Sort.
//
// Grounded on original_source/.../task.py:get and its helper _execute_task.
func Get(g graph.Graph, out []graph.Key, cache Cache, order []graph.Key) ([]any, error) {
	for _, k := range out {
		if !g.Has(k) {
			return nil, graph.MissingKeyf("%s is not a key in the graph", k)
		}
	}
	if cache == nil {
		cache = NewMemCache()
	}
	if order == nil {
		sorted, err := topo.Sort(g, nil)
		if err != nil {
			return nil, err
		}
		order = sorted
	}

	for _, key := range order {
		v, ok := g.Get(key)
		if !ok {
			continue
		}
		result, err := execute(v, cache)
		if err != nil {
			return nil, fmt.Errorf("executing %s: %w", key, err)
		}
		cache.Set(key.CanonicalString(), result)
	}

	results := make([]any, len(out))
	for i, key := range out {
		v, ok := cache.Get(key.CanonicalString())
		if !ok {
			return nil, graph.MissingKeyf("%s was never computed", key)
		}
		results[i] = v
	}
	return results, nil
}

// execute is the Go analogue of _execute_task: literals pass through,
// key references resolve against cache, lists recurse element-wise, and
// tasks resolve their arguments before calling Fn.
func execute(v graph.Value, cache Cache) (any, error) {
	switch t := v.(type) {
	case graph.Literal:
		return t.X, nil
	case graph.KeyRef:
		val, ok := cache.Get(t.K.CanonicalString())
		if !ok {
			return nil, graph.MissingKeyf("missing dependency result for %s", t.K)
		}
		return val, nil
	case graph.List:
		out := make([]any, len(t.Items))
		for i, item := range t.Items {
			r, err := execute(item, cache)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case graph.Task:
		if t.Fn == nil {
			return nil, graph.InvalidArgumentf("cannot execute a task with no callable")
		}
		args := make([]any, len(t.Args))
		for i, a := range t.Args {
			r, err := execute(a, cache)
			if err != nil {
				return nil, err
			}
			args[i] = r
		}
		return t.Fn.Call(args)
	default:
		return nil, graph.InvalidArgumentf("unknown value variant %T", v)
	}
}
