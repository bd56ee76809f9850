package eval_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"taskopt/internal/eval"
	"taskopt/internal/graph"
)

func addInc() (graph.Callable, graph.Callable) {
	add := graph.Func{Name: "add", Fn: func(a []any) (any, error) { return a[0].(int) + a[1].(int), nil }}
	inc := graph.Func{Name: "inc", Fn: func(a []any) (any, error) { return a[0].(int) + 1, nil }}
	return add, inc
}

func TestGet_LinearChain(t *testing.T) {
	_, inc := addInc()
	g := graph.New()
	x, y := graph.NewKey("x"), graph.NewKey("y")
	g.Set(x, graph.Literal{X: 1})
	g.Set(y, graph.Task{Fn: inc, Args: []graph.Value{graph.KeyRef{K: x}}})

	results, err := eval.Get(g, []graph.Key{y}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []any{2}, results)
}

func TestGet_NestedTaskArgs(t *testing.T) {
	add, inc := addInc()
	g := graph.New()
	x := graph.NewKey("x")
	g.Set(x, graph.Literal{X: 1})
	a := graph.NewKey("a")
	g.Set(a, graph.Task{Fn: add, Args: []graph.Value{
		graph.Task{Fn: inc, Args: []graph.Value{graph.KeyRef{K: x}}},
		graph.Literal{X: 1},
	}})

	results, err := eval.Get(g, []graph.Key{a}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []any{3}, results)
}

func TestGet_ListOfKeys(t *testing.T) {
	_, inc := addInc()
	g := graph.New()
	x, y := graph.NewKey("x"), graph.NewKey("y")
	g.Set(x, graph.Literal{X: 1})
	g.Set(y, graph.Task{Fn: inc, Args: []graph.Value{graph.KeyRef{K: x}}})

	results, err := eval.Get(g, []graph.Key{x, y}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []any{1, 2}, results)
}

func TestGet_MissingOutputKeyErrors(t *testing.T) {
	g := graph.New()
	g.Set(graph.NewKey("x"), graph.Literal{X: 1})

	_, err := eval.Get(g, []graph.Key{graph.NewKey("missing")}, nil, nil)
	require.Error(t, err)
}

func TestGet_PopulatesSuppliedCache(t *testing.T) {
	calls := 0
	inc := graph.Func{Name: "inc", Fn: func(a []any) (any, error) {
		calls++
		return a[0].(int) + 1, nil
	}}
	g := graph.New()
	x, y := graph.NewKey("x"), graph.NewKey("y")
	g.Set(x, graph.Literal{X: 1})
	g.Set(y, graph.Task{Fn: inc, Args: []graph.Value{graph.KeyRef{K: x}}})

	cache := eval.NewMemCache()
	_, err := eval.Get(g, []graph.Key{y}, cache, nil)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	v, ok := cache.Get(y.CanonicalString())
	require.True(t, ok)
	require.Equal(t, 2, v)
}
