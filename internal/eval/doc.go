// Package eval provides a minimal, in-memory evaluator for graph.Graph — the
// reduced "run a task graph" primitive spec.md §4.1 needs for SubgraphCallable
// to actually be callable, and that optimizer tests use to assert rewritten
// graphs still compute the same answers as their originals.
//
// This is deliberately not a scheduler: no parallelism, no retries, no
// persistent/disk cache. It topologically sorts the whole graph (not only the
// requested outputs' dependency closure), executes each key's value exactly
// once against an in-memory cache, and returns results in input order.
package eval
