package topo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"taskopt/internal/graph"
	"taskopt/internal/topo"
)

func indexOf(t *testing.T, ordered []graph.Key, key graph.Key) int {
	t.Helper()
	for i, k := range ordered {
		if k.Equal(key) {
			return i
		}
	}
	t.Fatalf("key %s not found in ordering", key)
	return -1
}

func TestSort_LinearChain(t *testing.T) {
	nop := graph.Func{Name: "nop", Fn: nil}
	g := graph.New()
	x, y, z := graph.NewKey("x"), graph.NewKey("y"), graph.NewKey("z")
	g.Set(x, graph.Literal{X: 1})
	g.Set(y, graph.Task{Fn: nop, Args: []graph.Value{graph.KeyRef{K: x}}})
	g.Set(z, graph.Task{Fn: nop, Args: []graph.Value{graph.KeyRef{K: y}}})

	ordered, err := topo.Sort(g, nil)
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	require.Less(t, indexOf(t, ordered, x), indexOf(t, ordered, y))
	require.Less(t, indexOf(t, ordered, y), indexOf(t, ordered, z))
}

func TestSort_DiamondDependency(t *testing.T) {
	nop := graph.Func{Name: "nop", Fn: nil}
	g := graph.New()
	x, y1, y2, z := graph.NewKey("x"), graph.NewKey("y1"), graph.NewKey("y2"), graph.NewKey("z")
	g.Set(x, graph.Literal{X: 1})
	g.Set(y1, graph.Task{Fn: nop, Args: []graph.Value{graph.KeyRef{K: x}}})
	g.Set(y2, graph.Task{Fn: nop, Args: []graph.Value{graph.KeyRef{K: x}}})
	g.Set(z, graph.Task{Fn: nop, Args: []graph.Value{graph.KeyRef{K: y1}, graph.KeyRef{K: y2}}})

	ordered, err := topo.Sort(g, nil)
	require.NoError(t, err)
	require.Len(t, ordered, 4)
	require.Less(t, indexOf(t, ordered, x), indexOf(t, ordered, y1))
	require.Less(t, indexOf(t, ordered, x), indexOf(t, ordered, y2))
	require.Less(t, indexOf(t, ordered, y1), indexOf(t, ordered, z))
	require.Less(t, indexOf(t, ordered, y2), indexOf(t, ordered, z))
}

func TestSort_DetectsCycle(t *testing.T) {
	nop := graph.Func{Name: "nop", Fn: nil}
	g := graph.New()
	a, b := graph.NewKey("a"), graph.NewKey("b")
	g.Set(a, graph.Task{Fn: nop, Args: []graph.Value{graph.KeyRef{K: b}}})
	g.Set(b, graph.Task{Fn: nop, Args: []graph.Value{graph.KeyRef{K: a}}})

	_, err := topo.Sort(g, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, topo.ErrCycleDetected)
}

func TestGetCycle_ReturnsNilForDAG(t *testing.T) {
	nop := graph.Func{Name: "nop", Fn: nil}
	g := graph.New()
	x, y := graph.NewKey("x"), graph.NewKey("y")
	g.Set(x, graph.Literal{X: 1})
	g.Set(y, graph.Task{Fn: nop, Args: []graph.Value{graph.KeyRef{K: x}}})

	cycle := topo.GetCycle(g, g.Keys(), nil)
	require.Empty(t, cycle)
	require.True(t, topo.IsDAG(g, g.Keys(), nil))
}

func TestGetCycle_ReturnsSelfLoop(t *testing.T) {
	nop := graph.Func{Name: "nop", Fn: nil}
	g := graph.New()
	a := graph.NewKey("a")
	g.Set(a, graph.Task{Fn: nop, Args: []graph.Value{graph.KeyRef{K: a}}})

	cycle := topo.GetCycle(g, []graph.Key{a}, nil)
	require.Equal(t, []graph.Key{a}, cycle)
	require.False(t, topo.IsDAG(g, []graph.Key{a}, nil))
}

func TestGetCycle_ReturnsThreeNodeCycleInOrder(t *testing.T) {
	nop := graph.Func{Name: "nop", Fn: nil}
	g := graph.New()
	a, b, c := graph.NewKey("a"), graph.NewKey("b"), graph.NewKey("c")
	g.Set(a, graph.Task{Fn: nop, Args: []graph.Value{graph.KeyRef{K: b}}})
	g.Set(b, graph.Task{Fn: nop, Args: []graph.Value{graph.KeyRef{K: c}}})
	g.Set(c, graph.Task{Fn: nop, Args: []graph.Value{graph.KeyRef{K: a}}})

	cycle := topo.GetCycle(g, []graph.Key{a}, nil)
	require.Len(t, cycle, 3)
	// The cycle must be a rotation of a -> b -> c -> a, starting wherever the
	// traversal first re-encountered a seen node.
	start := indexOf(t, cycle, a)
	require.Equal(t, b.String(), cycle[(start+1)%3].String())
	require.Equal(t, c.String(), cycle[(start+2)%3].String())
}

func TestSort_DisjointComponentsBothOrdered(t *testing.T) {
	nop := graph.Func{Name: "nop", Fn: nil}
	g := graph.New()
	a, b := graph.NewKey("a"), graph.NewKey("b")
	c, d := graph.NewKey("c"), graph.NewKey("d")
	g.Set(a, graph.Literal{X: 1})
	g.Set(b, graph.Task{Fn: nop, Args: []graph.Value{graph.KeyRef{K: a}}})
	g.Set(c, graph.Literal{X: 2})
	g.Set(d, graph.Task{Fn: nop, Args: []graph.Value{graph.KeyRef{K: c}}})

	ordered, err := topo.Sort(g, nil)
	require.NoError(t, err)
	require.Len(t, ordered, 4)
	require.Less(t, indexOf(t, ordered, a), indexOf(t, ordered, b))
	require.Less(t, indexOf(t, ordered, c), indexOf(t, ordered, d))
}
