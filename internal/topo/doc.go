// Package topo provides an iterative, Tarjan-style depth-first topological
// sort over a graph.Graph, along with cycle detection built on the same
// traversal.
package topo
