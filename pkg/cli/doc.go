// Package cli implements the waytrace command-line interface.
//
// The CLI is a thin consumer of pkg/trace and pkg/query: it opens a log,
// builds the trace, applies a filter and sort, and prints the resulting
// view. Commands:
//
//	waytrace view <log>      print the filtered, sorted event table
//	waytrace stats <log>     summarize the trace and rank surprising gaps
//	waytrace objects <log>   report object lifetimes and generations
//	waytrace version         print build information
package cli
