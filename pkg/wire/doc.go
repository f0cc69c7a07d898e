// Package wire defines the data model for a parsed Wayland wire-protocol
// trace: directions, object references, events, and the trace itself.
//
// Key types:
//
//   - Direction: which way a message travelled (to or from the compositor)
//   - ObjectRef: a (class, instance, generation) triple identifying one
//     logical protocol object at a point in time
//   - Event: one fully resolved log line
//   - Trace: the complete ordered event sequence produced from one log
//
// Everything in this package is a plain value type. A Trace is built once by
// pkg/trace and is read-only afterwards; consumers such as pkg/query hold
// references into it and never mutate it.
package wire
