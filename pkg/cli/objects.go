package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/waytrace/waytrace/pkg/trace"
	"github.com/waytrace/waytrace/pkg/wire"
)

var objectsClasses []string

// lifetime is one object incarnation: when it appeared and, if a delete_id
// was seen, when it went away.
type lifetime struct {
	Connection  string         `json:"connection,omitempty"`
	Object      wire.ObjectRef `json:"object"`
	CreatedAt   int64          `json:"createdAt"`
	DestroyedAt *int64         `json:"destroyedAt,omitempty"`
}

var objectsCmd = &cobra.Command{
	Use:   "objects <log-file>",
	Short: "Report object lifetimes and id reuse across a debug log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()

		t, err := trace.NewBuilder(trace.WithLogger(log)).Parse(f)
		if err != nil {
			return err
		}

		lifetimes := collectLifetimes(t, objectsClasses)

		if jsonOutput {
			data, _ := json.MarshalIndent(lifetimes, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CONN\tOBJECT\tCREATED\tDESTROYED")
		for _, lt := range lifetimes {
			destroyed := "-"
			if lt.DestroyedAt != nil {
				destroyed = wire.FormatTime(*lt.DestroyedAt)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				lt.Connection, lt.Object, wire.FormatTime(lt.CreatedAt), destroyed)
		}
		w.Flush()
		return nil
	},
}

// collectLifetimes walks the trace's created/destroyed lists and pairs each
// incarnation with its delete_id, if any. Results are ordered by (class,
// instance, generation).
func collectLifetimes(t *wire.Trace, classes []string) []lifetime {
	type key struct {
		connection string
		object     wire.ObjectRef
	}
	born := make(map[key]*lifetime)
	var out []*lifetime

	for _, e := range t.Events {
		for _, o := range e.Created {
			lt := &lifetime{Connection: e.Connection, Object: o, CreatedAt: e.Time}
			born[key{e.Connection, o}] = lt
			out = append(out, lt)
		}
		for _, o := range e.Destroyed {
			if lt, ok := born[key{e.Connection, o}]; ok {
				at := e.Time
				lt.DestroyedAt = &at
			}
		}
	}

	filtered := make([]lifetime, 0, len(out))
	for _, lt := range out {
		if len(classes) != 0 && !containsString(classes, lt.Object.Class) {
			continue
		}
		filtered = append(filtered, *lt)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Connection != filtered[j].Connection {
			return filtered[i].Connection < filtered[j].Connection
		}
		return filtered[i].Object.Compare(filtered[j].Object) < 0
	})
	return filtered
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func init() {
	objectsCmd.Flags().StringSliceVar(&objectsClasses, "class", nil, "Only report these classes (repeatable)")
	rootCmd.AddCommand(objectsCmd)
}
