package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/waytrace/waytrace/pkg/config"
	"github.com/waytrace/waytrace/pkg/query"
	"github.com/waytrace/waytrace/pkg/wire"
)

// filterFlags collects the per-command filter options shared by view and
// stats.
type filterFlags struct {
	file        string
	direction   string
	timeMin     int64
	timeMax     int64
	connections []string
	queues      []string
	classes     []string
	instances   []uint
	methods     []string
	arguments   []string
	created     []string
	destroyed   []string
	where       string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.file, "filter", "", "Load a filter spec from a YAML or JSON file")
	fl.StringVar(&f.direction, "direction", "", "Match direction (to-peer, from-peer)")
	fl.Int64Var(&f.timeMin, "time-min", 0, "Minimum timestamp in microseconds (0 = unbounded)")
	fl.Int64Var(&f.timeMax, "time-max", 0, "Maximum timestamp in microseconds (0 = unbounded)")
	fl.StringSliceVar(&f.connections, "connection", nil, "Match connection tag (repeatable)")
	fl.StringSliceVar(&f.queues, "queue", nil, "Match queue label (repeatable)")
	fl.StringSliceVar(&f.classes, "class", nil, "Match acting object class (repeatable)")
	fl.UintSliceVar(&f.instances, "instance", nil, "Match acting object id (repeatable)")
	fl.StringSliceVar(&f.methods, "method", nil, "Match method name (repeatable)")
	fl.StringSliceVar(&f.arguments, "arg", nil, "Match argument substring (repeatable)")
	fl.StringSliceVar(&f.created, "created", nil, "Match class of a created object (repeatable)")
	fl.StringSliceVar(&f.destroyed, "destroyed", nil, "Match class of a destroyed object (repeatable)")
	fl.StringVar(&f.where, "where", "", `Expression filter, e.g. 'method == "commit" and instance > 10'`)
}

// spec merges the filter file (when given) with the individual flags; flags
// win over file fields they name.
func (f *filterFlags) spec() (*query.FilterSpec, error) {
	spec := &query.FilterSpec{}
	if f.file != "" {
		loaded, err := config.LoadFilter(f.file)
		if err != nil {
			return nil, err
		}
		spec = loaded
	}

	if f.direction != "" {
		var d wire.Direction
		if err := d.UnmarshalText([]byte(f.direction)); err != nil {
			return nil, err
		}
		if d == wire.DirectionUnknown {
			return nil, fmt.Errorf("unknown direction %q", f.direction)
		}
		spec.Direction = d
	}
	if f.timeMin != 0 {
		spec.TimeMin = f.timeMin
	}
	if f.timeMax != 0 {
		spec.TimeMax = f.timeMax
	}
	if len(f.connections) != 0 {
		spec.Connections = f.connections
	}
	if len(f.queues) != 0 {
		spec.Queues = f.queues
	}
	if len(f.classes) != 0 {
		spec.Classes = f.classes
	}
	if len(f.instances) != 0 {
		spec.Instances = make([]uint32, len(f.instances))
		for i, n := range f.instances {
			spec.Instances[i] = uint32(n)
		}
	}
	if len(f.methods) != 0 {
		spec.Methods = f.methods
	}
	if len(f.arguments) != 0 {
		spec.Arguments = f.arguments
	}
	if len(f.created) != 0 {
		spec.CreatedClasses = f.created
	}
	if len(f.destroyed) != 0 {
		spec.DestroyedClasses = f.destroyed
	}
	if f.where != "" {
		spec.Where = f.where
	}
	return spec, nil
}
