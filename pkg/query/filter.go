package query

import (
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/waytrace/waytrace/pkg/wire"
)

// FilterSpec is a conjunctive match specification: an event matches iff it
// satisfies every non-empty criterion (AND across fields, OR within a
// field's value set). The zero value matches everything.
type FilterSpec struct {
	// Direction constrains the message direction. DirectionAny (the zero
	// value) means no constraint.
	Direction wire.Direction `json:"direction,omitempty" yaml:"direction,omitempty"`

	// TimeMin and TimeMax bound the timestamp in microseconds. Zero means
	// unbounded on that side; each bound is consulted independently.
	TimeMin int64 `json:"timeMin,omitempty" yaml:"timeMin,omitempty"`
	TimeMax int64 `json:"timeMax,omitempty" yaml:"timeMax,omitempty"`

	// Connections, Queues, Classes, Methods match the respective event
	// field against a set of acceptable values.
	Connections []string `json:"connections,omitempty" yaml:"connections,omitempty"`
	Queues      []string `json:"queues,omitempty" yaml:"queues,omitempty"`
	Classes     []string `json:"classes,omitempty" yaml:"classes,omitempty"`
	Methods     []string `json:"methods,omitempty" yaml:"methods,omitempty"`

	// Instances matches the acting object's numeric id.
	Instances []uint32 `json:"instances,omitempty" yaml:"instances,omitempty"`

	// Arguments matches if any event argument contains any of these
	// substrings.
	Arguments []string `json:"arguments,omitempty" yaml:"arguments,omitempty"`

	// CreatedClasses and DestroyedClasses match if any handle in the
	// event's created/destroyed list has a class in the set.
	CreatedClasses   []string `json:"createdClasses,omitempty" yaml:"createdClasses,omitempty"`
	DestroyedClasses []string `json:"destroyedClasses,omitempty" yaml:"destroyedClasses,omitempty"`

	// Where is an optional expr-lang boolean expression evaluated against
	// the event on top of the structural criteria. See ExprEnv for the
	// available variables.
	Where string `json:"where,omitempty" yaml:"where,omitempty"`
}

// IsEmpty reports whether the spec constrains nothing, i.e. matches every
// event.
func (f *FilterSpec) IsEmpty() bool {
	return f == nil ||
		(f.Direction == wire.DirectionAny &&
			f.TimeMin == 0 &&
			f.TimeMax == 0 &&
			len(f.Connections) == 0 &&
			len(f.Queues) == 0 &&
			len(f.Classes) == 0 &&
			len(f.Instances) == 0 &&
			len(f.Methods) == 0 &&
			len(f.Arguments) == 0 &&
			len(f.CreatedClasses) == 0 &&
			len(f.DestroyedClasses) == 0 &&
			f.Where == "")
}

// Match evaluates the structural criteria against one event. The Where
// expression is not consulted here; the View evaluates it separately with a
// compiled program.
func (f *FilterSpec) Match(e *wire.Event) bool {
	if e == nil {
		return false
	}
	if f.Direction == wire.DirectionFromPeer || f.Direction == wire.DirectionToPeer {
		if f.Direction != e.Direction {
			return false
		}
	}
	if f.TimeMin != 0 && e.Time < f.TimeMin {
		return false
	}
	if f.TimeMax != 0 && e.Time > f.TimeMax {
		return false
	}
	if len(f.Connections) != 0 && !slices.Contains(f.Connections, e.Connection) {
		return false
	}
	if len(f.Queues) != 0 && !slices.Contains(f.Queues, e.Queue) {
		return false
	}
	if len(f.Classes) != 0 && !slices.Contains(f.Classes, e.Object.Class) {
		return false
	}
	if len(f.Instances) != 0 && !slices.Contains(f.Instances, e.Object.Instance) {
		return false
	}
	if len(f.Methods) != 0 && !slices.Contains(f.Methods, e.Method) {
		return false
	}
	if len(f.Arguments) != 0 && !matchArguments(f.Arguments, e.Arguments) {
		return false
	}
	if len(f.CreatedClasses) != 0 && !matchClasses(f.CreatedClasses, e.Created) {
		return false
	}
	if len(f.DestroyedClasses) != 0 && !matchClasses(f.DestroyedClasses, e.Destroyed) {
		return false
	}
	return true
}

func matchArguments(wanted, args []string) bool {
	for _, arg := range args {
		for _, w := range wanted {
			if strings.Contains(arg, w) {
				return true
			}
		}
	}
	return false
}

func matchClasses(wanted []string, refs []wire.ObjectRef) bool {
	for _, o := range refs {
		if slices.Contains(wanted, o.Class) {
			return true
		}
	}
	return false
}

// ExprEnv builds the variable environment a Where expression sees for one
// event.
//
//	time        int64    timestamp in microseconds
//	direction   string   "to-peer" / "from-peer" / "unknown"
//	connection  string
//	queue       string
//	class       string   acting object's class
//	instance    int      acting object's numeric id
//	generation  int      acting object's generation
//	method      string
//	arguments   []string
//	created     []string classes brought to life by this event
//	destroyed   []string classes retired by this event
func ExprEnv(e *wire.Event) map[string]any {
	created := make([]string, len(e.Created))
	for i, o := range e.Created {
		created[i] = o.Class
	}
	destroyed := make([]string, len(e.Destroyed))
	for i, o := range e.Destroyed {
		destroyed[i] = o.Class
	}
	return map[string]any{
		"time":       e.Time,
		"direction":  e.Direction.String(),
		"connection": e.Connection,
		"queue":      e.Queue,
		"class":      e.Object.Class,
		"instance":   int(e.Object.Instance),
		"generation": int(e.Object.Generation),
		"method":     e.Method,
		"arguments":  e.Arguments,
		"created":    created,
		"destroyed":  destroyed,
	}
}

// matchWith applies the structural criteria plus an optional compiled Where
// program.
func matchWith(f *FilterSpec, program *vm.Program, e *wire.Event) (bool, error) {
	if !f.Match(e) {
		return false, nil
	}
	if program == nil {
		return true, nil
	}
	out, err := expr.Run(program, ExprEnv(e))
	if err != nil {
		return false, err
	}
	ok, _ := out.(bool)
	return ok, nil
}
