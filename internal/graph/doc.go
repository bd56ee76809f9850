// Package graph defines the data model for a task graph: keys, values, the
// graph itself, and the minimal walking primitives (task recognition,
// substitution, dependency extraction) the optimizer packages build on.
//
// A graph is a mapping from Key to Value. A Value is one of four tagged
// variants: Literal, KeyRef, List, or Task. Keys are either plain strings or
// tuples whose first element is a string base name; both are modeled by the
// single Key type rather than relying on ambient interface{} polymorphism.
package graph
