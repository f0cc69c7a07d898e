package query

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/waytrace/waytrace/pkg/wire"
)

// SortKey selects the column a view is ordered by.
type SortKey int

// Sort keys, one per event column.
const (
	SortTime SortKey = iota
	SortConnection
	SortQueue
	SortDirection
	SortObject
	SortMethod
	SortArguments
	SortTimeDelta
)

// String returns the key's column name.
func (k SortKey) String() string {
	switch k {
	case SortTime:
		return "time"
	case SortConnection:
		return "connection"
	case SortQueue:
		return "queue"
	case SortDirection:
		return "direction"
	case SortObject:
		return "object"
	case SortMethod:
		return "method"
	case SortArguments:
		return "arguments"
	case SortTimeDelta:
		return "delta"
	default:
		return fmt.Sprintf("SortKey(%d)", int(k))
	}
}

// ParseSortKey parses a column name into a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(s) {
	case "time", "":
		return SortTime, nil
	case "connection":
		return SortConnection, nil
	case "queue":
		return SortQueue, nil
	case "direction":
		return SortDirection, nil
	case "object":
		return SortObject, nil
	case "method":
		return SortMethod, nil
	case "arguments":
		return SortArguments, nil
	case "delta", "timedelta":
		return SortTimeDelta, nil
	default:
		return SortTime, fmt.Errorf("unknown sort key %q", s)
	}
}

// SortOrder is the sort direction.
type SortOrder int

// Sort orders.
const (
	Ascending SortOrder = iota
	Descending
)

// compare orders two events under key. The delta key reads the deltas of the
// previous visible set through prevDelta, so re-sorting a filtered view does
// not recompute them against the new order first.
func (v *View) compare(key SortKey, a, b *wire.Event) int {
	switch key {
	case SortTime:
		return cmp.Compare(a.Time, b.Time)
	case SortConnection:
		return strings.Compare(a.Connection, b.Connection)
	case SortQueue:
		return strings.Compare(a.Queue, b.Queue)
	case SortDirection:
		return cmp.Compare(a.Direction, b.Direction)
	case SortObject:
		return a.Object.Compare(b.Object)
	case SortMethod:
		return strings.Compare(a.Method, b.Method)
	case SortArguments:
		return strings.Compare(strings.Join(a.Arguments, ", "), strings.Join(b.Arguments, ", "))
	case SortTimeDelta:
		return cmp.Compare(v.prevDelta(a), v.prevDelta(b))
	default:
		return 0
	}
}

// prevDelta returns the event's time delta in the current (pre-sort) visible
// set, or 0 when the event is not visible.
func (v *View) prevDelta(e *wire.Event) int64 {
	row, ok := v.index[e]
	if !ok || row >= len(v.deltas) {
		return 0
	}
	return v.deltas[row]
}
