package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/waytrace/waytrace/pkg/query"
	"github.com/waytrace/waytrace/pkg/trace"
	"github.com/waytrace/waytrace/pkg/util"
	"github.com/waytrace/waytrace/pkg/wire"
)

var (
	viewFilter  filterFlags
	viewSortKey string
	viewDesc    bool
	viewLimit   int
	viewWide    bool
)

var viewCmd = &cobra.Command{
	Use:   "view <log-file>",
	Short: "Print the filtered, sorted event table of a debug log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()

		spec, err := viewFilter.spec()
		if err != nil {
			return err
		}
		key, err := query.ParseSortKey(viewSortKey)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()

		t, err := trace.NewBuilder(trace.WithLogger(log)).Parse(f)
		if err != nil {
			return err
		}

		v := query.NewView(t, query.WithViewLogger(log))
		order := query.Ascending
		if viewDesc {
			order = query.Descending
		}
		v.Sort(key, order)
		if err := v.SetFilter(spec); err != nil {
			return err
		}

		n := v.Len()
		if viewLimit > 0 && viewLimit < n {
			n = viewLimit
		}

		if jsonOutput {
			rows := make([]viewRow, n)
			for i := 0; i < n; i++ {
				r := v.Row(i)
				rows[i] = viewRow{Event: r.Event, TimeDelta: r.TimeDelta}
			}
			data, _ := json.MarshalIndent(rows, "", "  ")
			fmt.Println(string(data))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tCONN\tQUEUE\tDIR\tOBJECT\tMETHOD\tARGUMENTS\tDELTA")
		for i := 0; i < n; i++ {
			r := v.Row(i)
			e := r.Event
			args := strings.Join(e.Arguments, ", ")
			if !viewWide {
				args = util.Truncate(args, 0)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				wire.FormatTime(e.Time), e.Connection, e.Queue, dirMark(e.Direction),
				e.Object, e.Method, args,
				wire.FormatTime(r.TimeDelta))
		}
		w.Flush()
		if n < v.Len() {
			fmt.Printf("(%d of %d rows)\n", n, v.Len())
		}
		return nil
	},
}

// viewRow is the JSON projection of one visible row.
type viewRow struct {
	Event     *wire.Event `json:"event"`
	TimeDelta int64       `json:"timeDelta"`
}

func dirMark(d wire.Direction) string {
	switch d {
	case wire.DirectionToPeer:
		return "->"
	case wire.DirectionFromPeer:
		return "<-"
	default:
		return "?"
	}
}

func init() {
	viewFilter.register(viewCmd)
	viewCmd.Flags().StringVar(&viewSortKey, "sort", "time", "Sort column (time, connection, queue, direction, object, method, arguments, delta)")
	viewCmd.Flags().BoolVar(&viewDesc, "desc", false, "Sort descending")
	viewCmd.Flags().IntVarP(&viewLimit, "limit", "n", 0, "Maximum rows to print (0 = all)")
	viewCmd.Flags().BoolVar(&viewWide, "wide", false, "Do not truncate long argument lists")
	rootCmd.AddCommand(viewCmd)
}
