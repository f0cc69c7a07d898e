package wire

import "fmt"

// Event captures one resolved protocol message from the log. Events are
// immutable once the trace is built.
type Event struct {
	// Time is the message timestamp in microseconds since the log epoch.
	Time int64 `json:"time"`

	// Direction is the message direction (to or from the compositor).
	Direction Direction `json:"direction"`

	// Connection is the connection tag, or "" for untagged logs.
	Connection string `json:"connection,omitempty"`

	// Queue is the event-queue label, or "" when the log carries none.
	Queue string `json:"queue,omitempty"`

	// Object is the acting object, resolved through the identity registry.
	Object ObjectRef `json:"object"`

	// Method is the request or event name.
	Method string `json:"method"`

	// Arguments are the raw argument strings, split on ", ". The split is
	// syntactic only; nested structures containing that substring are not
	// escaped by the log format.
	Arguments []string `json:"arguments"`

	// Created lists objects brought to life by "new id" arguments.
	Created []ObjectRef `json:"created,omitempty"`

	// Destroyed lists objects retired by this message (delete_id).
	Destroyed []ObjectRef `json:"destroyed,omitempty"`
}

// FormatTime renders a microsecond timestamp (or delta) as s'mmm.uuu,
// the notation used in the trace views.
func FormatTime(t int64) string {
	neg := ""
	if t < 0 {
		neg = "-"
		t = -t
	}
	return fmt.Sprintf("%s%d'%03d.%03d", neg, t/1000/1000, t/1000%1000, t%1000)
}
