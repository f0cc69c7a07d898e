// Package trace builds a wire.Trace from a Wayland debug log.
//
// The Builder drives the line grammar over the whole input, resolves every
// acting object through a per-parse identity registry, and processes object
// lifecycle side effects ("new id" arguments and delete_id calls). Parsing is
// strictly sequential: registry state must reflect every prior line before
// the next line is resolved.
//
// A parse has exactly one terminal outcome: a complete Trace, or a single
// *ParseError wrapping the first registry failure with its 1-based line
// number. There is no partial-trace return — one misresolved id would
// silently corrupt all subsequent resolutions on its connection.
package trace
