package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"taskopt/internal/graph"
	"taskopt/internal/optimize"
)

func TestFunctionsOf_CollectsNestedCallablesByIdentity(t *testing.T) {
	add := graph.Func{Name: "add", Fn: func(a []any) (any, error) { return a[0].(int) + a[1].(int), nil }}
	inc := incFn()
	v := graph.Task{Fn: add, Args: []graph.Value{
		graph.Task{Fn: inc, Args: []graph.Value{graph.Literal{X: 1}}},
		graph.List{Items: []graph.Value{graph.Task{Fn: inc, Args: []graph.Value{graph.Literal{X: 2}}}}},
	}}

	fns := optimize.FunctionsOf(v)
	require.Len(t, fns, 2)
	require.Contains(t, fns, "add")
	require.Contains(t, fns, "inc")
}

func TestInlineFunctions_InlinesFastTaskThenDeletesIt(t *testing.T) {
	g, a, b, c := linearChain(t)

	out, err := optimize.InlineFunctions(g, nil, []graph.Callable{incFn()}, false, nil)
	require.NoError(t, err)

	require.True(t, out.Has(a))
	require.False(t, out.Has(b), "b's task is built entirely from fast functions and has a dependent, so it is inlined away")

	cv, ok := out.Get(c)
	require.True(t, ok)
	cTask, ok := cv.(graph.Task)
	require.True(t, ok)
	nested, ok := cTask.Args[0].(graph.Task)
	require.True(t, ok, "c now embeds b's former task directly")
	ref, ok := nested.Args[0].(graph.KeyRef)
	require.True(t, ok)
	require.True(t, ref.K.Equal(a))
}

func TestInlineFunctions_LeavesSlowTaskInPlace(t *testing.T) {
	g, _, b, _ := linearChain(t)

	slow := graph.Func{Name: "slow", Fn: func(a []any) (any, error) { return a[0], nil }}
	out, err := optimize.InlineFunctions(g, nil, []graph.Callable{slow}, false, nil)
	require.NoError(t, err)

	require.True(t, out.Has(b), "inc is not in the fast-functions set, so nothing qualifies for inlining")
}

func TestInlineFunctions_ProtectedOutputIsNeverInlined(t *testing.T) {
	g, a, b, c := linearChain(t)

	out, err := optimize.InlineFunctions(g, []graph.Key{b}, []graph.Callable{incFn()}, false, nil)
	require.NoError(t, err)

	require.True(t, out.Has(a))
	require.True(t, out.Has(b), "an explicit output key is never inlined away even if it qualifies")
	require.True(t, out.Has(c))
}

func TestInlineFunctions_NoFastFunctionsReturnsIndependentClone(t *testing.T) {
	g, _, b, _ := linearChain(t)

	out, err := optimize.InlineFunctions(g, nil, nil, false, nil)
	require.NoError(t, err)

	out.Delete(b)
	require.True(t, g.Has(b), "the no-fast-functions early return must clone, not alias, the caller's graph")
}

func TestInlineFunctions_NoQualifyingKeysReturnsIndependentClone(t *testing.T) {
	g, _, b, _ := linearChain(t)

	slow := graph.Func{Name: "slow", Fn: func(a []any) (any, error) { return a[0], nil }}
	out, err := optimize.InlineFunctions(g, nil, []graph.Callable{slow}, false, nil)
	require.NoError(t, err)

	out.Delete(b)
	require.True(t, g.Has(b), "the no-qualifying-keys early return must clone, not alias, the caller's graph")
}
