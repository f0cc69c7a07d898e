package query

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"golang.org/x/sync/errgroup"

	"github.com/waytrace/waytrace/pkg/logging"
	"github.com/waytrace/waytrace/pkg/wire"
)

// Row is the read-only projection of one visible event plus its computed
// inter-arrival delta.
type Row struct {
	Event     *wire.Event
	TimeDelta int64
}

// View is the filtered, sorted, delta-annotated projection of a Trace.
// All methods are safe for concurrent use; rebuilds are serialized so that
// only one filter/sort change is in flight at a time.
type View struct {
	mu  sync.Mutex
	log *slog.Logger

	trace  *wire.Trace
	filter *FilterSpec
	// program is the compiled Where expression of the active filter, nil
	// when the filter has none.
	program      *vm.Program
	programCache map[string]*vm.Program

	sorted  []*wire.Event
	visible []*wire.Event
	index   map[*wire.Event]int // event -> row in visible
	deltas  []int64

	smallest int64 // summary over |deltas|
	median   int64
	biggest  int64

	key   SortKey
	order SortOrder
}

// ViewOption configures a View.
type ViewOption func(*View)

// WithViewLogger sets the diagnostic logger.
func WithViewLogger(log *slog.Logger) ViewOption {
	return func(v *View) { v.log = log }
}

// NewView creates the initial projection of a trace: unfiltered, in file
// order. The view borrows the trace for its lifetime and never mutates it.
func NewView(t *wire.Trace, opts ...ViewOption) *View {
	v := &View{
		log:          logging.Nop(),
		trace:        t,
		programCache: make(map[string]*vm.Program),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.sorted = append([]*wire.Event(nil), t.Events...)
	v.visible = v.sorted
	v.rebuildIndex()
	v.recalcDeltas()
	return v
}

// SetFilter replaces the active filter and rebuilds the visible set. A nil
// or empty spec clears all filters. The view keeps the spec; callers must
// not mutate it afterwards. An error is returned only for a Where expression
// that fails to compile or evaluate; the view is left unchanged in that
// case.
func (v *View) SetFilter(spec *FilterSpec) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if spec.IsEmpty() {
		v.filter = nil
		v.program = nil
		v.visible = v.sorted
		v.rebuildIndex()
		v.recalcDeltas()
		return nil
	}

	program, err := v.compileWhere(spec.Where)
	if err != nil {
		return err
	}
	visible, err := filterEvents(spec, program, v.sorted)
	if err != nil {
		return err
	}

	v.filter = spec
	v.program = program
	v.visible = visible
	v.rebuildIndex()
	v.recalcDeltas()
	v.log.Debug("filter applied", "visible", len(v.visible), "total", len(v.sorted))
	return nil
}

// Sort reorders the view by key. The sort runs over the full trace; when a
// filter is active the previous visible membership is kept and only its
// order changes, so sorting never re-widens a filtered view. Ties keep
// original trace order.
func (v *View) Sort(key SortKey, order SortOrder) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.key, v.order = key, order
	v.sorted = append([]*wire.Event(nil), v.trace.Events...)
	sort.SliceStable(v.sorted, func(i, j int) bool {
		a, b := v.sorted[i], v.sorted[j]
		if order == Descending {
			a, b = b, a
		}
		return v.compare(key, a, b) < 0
	})

	if v.filter != nil {
		visible := make([]*wire.Event, 0, len(v.visible))
		for _, e := range v.sorted {
			if _, ok := v.index[e]; ok {
				visible = append(visible, e)
			}
		}
		v.visible = visible
	} else {
		v.visible = v.sorted
	}
	v.rebuildIndex()
	v.recalcDeltas()
}

// Len returns the number of visible rows.
func (v *View) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.visible)
}

// Row returns the visible row at i with its time delta.
func (v *View) Row(i int) Row {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Row{Event: v.visible[i], TimeDelta: v.deltas[i]}
}

// EventAt returns the underlying immutable event for row i, e.g. to
// pre-populate a new FilterSpec from its fields.
func (v *View) EventAt(i int) *wire.Event {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible[i]
}

// DeltaStats returns the (smallest, median, biggest) absolute time delta over
// the visible rows. The median is the value at rank len/2 of the
// abs-ordered deltas; for even-sized inputs that is the upper of the two
// middle values.
func (v *View) DeltaStats() (smallest, median, biggest int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.smallest, v.median, v.biggest
}

// DeltaScore places row i's absolute delta in the visible distribution on a
// log scale: 0.5 at the median, rising to 1.0 at the biggest delta. Used to
// rank surprising gaps.
func (v *View) DeltaScore(i int) float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	diff := abs64(v.deltas[i]) - v.median
	switch {
	case diff < 0:
		return 0.5 * math.Log(float64(-diff+1)) / math.Log(float64(v.median-v.smallest+1))
	case diff > 0:
		return 0.5 + 0.5*math.Log(float64(diff+1))/math.Log(float64(v.biggest-v.median+1))
	default:
		return 0.5
	}
}

// compileWhere compiles a Where expression, reusing previously compiled
// programs.
func (v *View) compileWhere(where string) (*vm.Program, error) {
	if where == "" {
		return nil, nil
	}
	if p, ok := v.programCache[where]; ok {
		return p, nil
	}
	p, err := expr.Compile(where, expr.Env(ExprEnv(&wire.Event{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", where, err)
	}
	v.programCache[where] = p
	return p, nil
}

// filterEvents evaluates the spec over events in parallel chunks, keeping
// input order.
func filterEvents(spec *FilterSpec, program *vm.Program, events []*wire.Event) ([]*wire.Event, error) {
	matched := make([]bool, len(events))

	chunk := (len(events) + runtime.NumCPU() - 1) / runtime.NumCPU()
	if chunk < 256 {
		chunk = 256
	}
	var g errgroup.Group
	for lo := 0; lo < len(events); lo += chunk {
		lo := lo
		hi := min(lo+chunk, len(events))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				ok, err := matchWith(spec, program, events[i])
				if err != nil {
					return err
				}
				matched[i] = ok
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	visible := make([]*wire.Event, 0, len(events))
	for i, ok := range matched {
		if ok {
			visible = append(visible, events[i])
		}
	}
	return visible, nil
}

func (v *View) rebuildIndex() {
	v.index = make(map[*wire.Event]int, len(v.visible))
	for i, e := range v.visible {
		v.index[e] = i
	}
}

// recalcDeltas recomputes per-row deltas against the immediately preceding
// visible row (row 0 gets 0) and the summary triple over their absolute
// values.
func (v *View) recalcDeltas() {
	v.deltas = make([]int64, len(v.visible))
	v.smallest, v.median, v.biggest = 0, 0, 0
	if len(v.visible) == 0 {
		return
	}

	v.smallest = math.MaxInt64
	last := v.visible[0].Time
	for i, e := range v.visible {
		delta := e.Time - last
		v.deltas[i] = delta
		a := abs64(delta)
		if a < v.smallest {
			v.smallest = a
		}
		if a > v.biggest {
			v.biggest = a
		}
		last = e.Time
	}

	byAbs := append([]int64(nil), v.deltas...)
	sort.Slice(byAbs, func(i, j int) bool { return abs64(byAbs[i]) < abs64(byAbs[j]) })
	v.median = abs64(byAbs[len(byAbs)/2])
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
