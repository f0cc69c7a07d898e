// Package query filters, sorts, and annotates a built trace.
//
// A View is the derived, rebuildable projection of one wire.Trace: a sort
// permutation, the visible subset passing the active FilterSpec, per-row
// inter-arrival time deltas, and the delta distribution summary used to rank
// surprising gaps. A View is rebuilt wholesale on every filter or sort
// change, never patched incrementally; rebuilds are serialized internally so
// callers may share a View across goroutines.
//
// Filtering is conjunctive: an event matches iff it satisfies every
// non-empty criterion, and within a criterion holding a set of values it
// need only match one member. An optional Where expression
// (expr-lang) is evaluated on top of the structural criteria.
package query
