package wire

// Trace is the complete ordered sequence of events produced from one log.
// Events are in file order; line order is assumed (not verified) to be time
// order. A Trace is read-only after construction.
type Trace struct {
	// ID uniquely identifies this parse, for log correlation.
	ID string `json:"id"`

	// Events holds every resolved message, in file order.
	Events []*Event `json:"events"`

	// Skipped counts candidate lines that matched the outer line skeleton
	// but failed detailed capture and were dropped.
	Skipped int `json:"skipped"`
}

// Len returns the number of events.
func (t *Trace) Len() int {
	return len(t.Events)
}
