// Package phase enumerates the safe phases of a signal-controlled junction.
//
// # Overview
//
// A safe phase is a set of connections that may show a permissive (green)
// signal at the same time without any pair of them being foes. Given a
// [conflict.Matrix], [Enumerate] returns every safe phase reachable by
// level-wise extension:
//
//  1. every singleton {i}
//  2. every compatible pair {i, j}, i < j
//  3. every phase P ∪ {c} where P is a phase of the previous level and c is in
//     P's frontier, the set of connections compatible with all of P
//
// Growth stops once every phase of the current level has an empty frontier.
// Because each level is built only from the previous one, every phase of size
// k+1 in the output has all of its size-k subsets in the output as well.
//
// # Representation
//
// Phases and frontiers are bitsets over connection indices. Candidates of the
// next level are deduplicated by their canonical bitset key, so a set reached
// along several growth paths ({0,1}+2 and {0,2}+1) is kept once.
//
// # Output
//
// [Result.Phases] lists phases as ascending index slices, grouped by size
// (singletons first) and ordered lexicographically within a size. The order
// is deterministic for a given matrix.
//
// # Diagnostics
//
// Declaring a junction type other than [TypeTrafficLight] with [WithJunction]
// does not stop the enumeration; the mismatch is reported as a [Diagnostic]
// on the result. Nothing is logged.
//
// # Concurrency
//
// Enumerate is a pure function of its inputs and allocates only call-local
// state. It is safe to enumerate different junctions concurrently.
package phase
