package optimize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"taskopt/internal/eval"
	"taskopt/internal/graph"
	"taskopt/internal/optimize"
)

func incFn() graph.Callable {
	return graph.Func{Name: "inc", Fn: func(a []any) (any, error) { return a[0].(int) + 1, nil }}
}

func linearChain(t *testing.T) (graph.Graph, graph.Key, graph.Key, graph.Key) {
	t.Helper()
	inc := incFn()
	g := graph.New()
	a, b, c := graph.NewKey("a"), graph.NewKey("b"), graph.NewKey("c")
	g.Set(a, graph.Literal{X: 1})
	g.Set(b, graph.Task{Fn: inc, Args: []graph.Value{graph.KeyRef{K: a}}})
	g.Set(c, graph.Task{Fn: inc, Args: []graph.Value{graph.KeyRef{K: b}}})
	return g, a, b, c
}

func TestFuseLinear_NoProtectedKeysFusesAndRetainsAlias(t *testing.T) {
	g, _, _, c := linearChain(t)

	out, _, err := optimize.FuseLinear(g, optimize.LinearOptions{})
	require.NoError(t, err)

	fusedKey := graph.NewKey("a-b-c")
	require.True(t, out.Has(fusedKey), "expected fused key a-b-c")
	require.True(t, out.Has(c), "alias for c must be retained when no keys are protected")

	v, ok := out.Get(c)
	require.True(t, ok)
	ref, ok := v.(graph.KeyRef)
	require.True(t, ok, "c must be rewritten to an alias")
	require.True(t, ref.K.Equal(fusedKey))

	results, err := eval.Get(out, []graph.Key{c}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []any{3}, results)
}

func TestFuseLinear_ProtectedInteriorKeyKeptAsAliasAndDownstreamRewritten(t *testing.T) {
	g, a, b, c := linearChain(t)

	out, _, err := optimize.FuseLinear(g, optimize.LinearOptions{Keys: []graph.Key{b}})
	require.NoError(t, err)

	fusedKey := graph.NewKey("a-b")
	require.True(t, out.Has(fusedKey), "expected fused key a-b")
	require.True(t, out.Has(b), "protected key b must remain addressable")
	require.False(t, out.Has(a), "a must be absorbed into the fused key")

	bv, _ := out.Get(b)
	ref, ok := bv.(graph.KeyRef)
	require.True(t, ok)
	require.True(t, ref.K.Equal(fusedKey))

	cv, _ := out.Get(c)
	task, ok := cv.(graph.Task)
	require.True(t, ok)
	argRef, ok := task.Args[0].(graph.KeyRef)
	require.True(t, ok, "c's dependency on b should be rewritten past the alias")
	require.True(t, argRef.K.Equal(fusedKey))

	results, err := eval.Get(out, []graph.Key{c}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []any{3}, results)
}

func TestFuseLinear_ExplicitKeysDropsUnprotectedAlias(t *testing.T) {
	inc := incFn()
	g := graph.New()
	a, b := graph.NewKey("a"), graph.NewKey("b")
	g.Set(a, graph.Literal{X: 1})
	g.Set(b, graph.Task{Fn: inc, Args: []graph.Value{graph.KeyRef{K: a}}})

	p, q := graph.NewKey("p"), graph.NewKey("q")
	g.Set(p, graph.Literal{X: 10})
	g.Set(q, graph.Task{Fn: inc, Args: []graph.Value{graph.KeyRef{K: p}}})

	out, _, err := optimize.FuseLinear(g, optimize.LinearOptions{Keys: []graph.Key{b}})
	require.NoError(t, err)

	require.True(t, out.Has(b), "b is explicitly protected and must be retained")
	require.False(t, out.Has(q), "q is not in the protected set and must be dropped once keys is non-nil")
	require.True(t, out.Has(graph.NewKey("a-b")))
	require.True(t, out.Has(graph.NewKey("p-q")))
}

func TestFuseLinear_DisableRenameFusesInPlace(t *testing.T) {
	g, a, b, c := linearChain(t)

	out, _, err := optimize.FuseLinear(g, optimize.LinearOptions{DisableRename: true})
	require.NoError(t, err)

	require.False(t, out.Has(a))
	require.False(t, out.Has(b))
	require.True(t, out.Has(c))

	results, err := eval.Get(out, []graph.Key{c}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []any{3}, results)
}

func TestFuseLinear_FullyProtectedGraphIsUnchanged(t *testing.T) {
	g, a, b, c := linearChain(t)

	out, _, err := optimize.FuseLinear(g, optimize.LinearOptions{Keys: []graph.Key{a, b, c}})
	require.NoError(t, err)

	av, ok := out.Get(a)
	require.True(t, ok)
	require.Equal(t, graph.Literal{X: 1}, av)

	bv, ok := out.Get(b)
	require.True(t, ok)
	task, ok := bv.(graph.Task)
	require.True(t, ok)
	ref, ok := task.Args[0].(graph.KeyRef)
	require.True(t, ok)
	require.True(t, ref.K.Equal(a))
}

func TestFuseLinear_RenamedKeyCollisionIsDisambiguated(t *testing.T) {
	g, _, _, c := linearChain(t)
	collider := graph.NewKey("a-b-c")
	g.Set(collider, graph.Literal{X: 99})

	out, _, err := optimize.FuseLinear(g, optimize.LinearOptions{})
	require.NoError(t, err)

	require.True(t, out.Has(collider))
	v, _ := out.Get(collider)
	require.Equal(t, graph.Literal{X: 99}, v, "the pre-existing unrelated key must survive untouched")

	var fusedKey graph.Key
	found := false
	for _, k := range out.Keys() {
		if k.Equal(collider) || k.Equal(c) {
			continue
		}
		if strings.HasPrefix(k.BaseName(), "a-b-c-") {
			fusedKey = k
			found = true
		}
	}
	require.True(t, found, "expected a disambiguated fused key distinct from the colliding name")

	cv, _ := out.Get(c)
	ref, ok := cv.(graph.KeyRef)
	require.True(t, ok)
	require.True(t, ref.K.Equal(fusedKey))

	results, err := eval.Get(out, []graph.Key{c}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []any{3}, results)
}
