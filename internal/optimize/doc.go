// Package optimize rewrites a graph.Graph into a semantically equivalent,
// structurally smaller graph: cull drops unreachable keys, inline and
// inline_functions substitute cheap producers into their consumers, and
// fuse_linear/fuse collapse chains and reduction trees of single-consumer
// tasks into composite tasks. fuse can optionally package a fused region
// behind a SubgraphCallable instead of inlining it outright.
//
// Every operation takes an immutable graph.Graph and returns a new one;
// callers compose them (typically cull -> inline -> fuse).
package optimize
